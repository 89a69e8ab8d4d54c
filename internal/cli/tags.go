package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"notedeck/internal/markup"
	"notedeck/internal/model"
)

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Hashtag commands",
	}
	cmd.AddCommand(newTagsListCmd(app))
	cmd.AddCommand(newTagsNotesCmd(app))
	return cmd
}

func newTagsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every hashtag used in note bodies, with usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			counts := map[string]int{}
			for _, n := range w.AllNotes() {
				for _, tag := range markup.Hashtags(n.Text) {
					counts[tag]++
				}
			}
			tags := make([]string, 0, len(counts))
			for tag := range counts {
				tags = append(tags, tag)
			}
			sort.Strings(tags)

			table := uitable.New()
			table.AddRow("TAG", "NOTES")
			for _, tag := range tags {
				table.AddRow("#"+tag, fmt.Sprintf("%d", counts[tag]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newTagsNotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <tag>",
		Short: "List the notes carrying a hashtag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			want := strings.TrimPrefix(args[0], "#")
			var matched []*model.Note
			for _, n := range w.AllNotes() {
				for _, tag := range markup.Hashtags(n.Text) {
					if tag == want {
						matched = append(matched, n)
						break
					}
				}
			}
			printNotes(cmd, app, matched)
			return nil
		},
	}
}
