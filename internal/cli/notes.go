package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"notedeck/internal/markup"
	"notedeck/internal/model"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Note commands",
	}

	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesShowCmd(app))
	cmd.AddCommand(newNotesSetTitleCmd(app))
	cmd.AddCommand(newNotesSetTextCmd(app))
	cmd.AddCommand(newNotesSetValueCmd(app))
	cmd.AddCommand(newNotesMoveCmd(app))
	cmd.AddCommand(newNotesReorderCmd(app))
	cmd.AddCommand(newNotesToggleCmd(app))
	cmd.AddCommand(newNotesCrossCmd(app))
	cmd.AddCommand(newNotesColorCmd(app))
	cmd.AddCommand(newNotesAttachCmd(app))
	cmd.AddCommand(newNotesDetachCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))

	return cmd
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var folderID string
	var text string
	var colorFlag string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			n, err := w.AddNote(ctx, folderID, args[0], text)
			if err != nil {
				return writeErr(cmd, err)
			}
			if c := firstNonEmpty(colorFlag, app.DefaultColor); c != "" {
				n.Color = c
				if err := w.UpdateNote(ctx, n); err != nil {
					return writeErr(cmd, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", model.RootFolderID, "Parent folder id")
	cmd.Flags().StringVar(&text, "text", "", "Note body")
	cmd.Flags().StringVar(&colorFlag, "color", "", "Note color (default from config)")
	return cmd
}

func newNotesListCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in a folder (display order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			printNotes(cmd, app, w.Notes(folderID))
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", model.RootFolderID, "Folder id")
	return cmd
}

func newNotesShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <note-id>",
		Short: "Print a note's title and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			n, ok := w.FindNote(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("note not found: %s", args[0]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Title)
			if n.Text != "" {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), n.Text)
			}
			for _, att := range n.Attachments {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s)\n", att.Kind, att.Name, att.ID)
			}
			return nil
		},
	}
	return cmd
}

// editNote is the shared find-mutate-persist flow for the small setters.
func editNote(app *App, cmd *cobra.Command, id string, mutate func(n *model.Note) error) error {
	ctx := cmd.Context()
	w, s, err := loadWorkspace(ctx, cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	n, ok := w.FindNote(id)
	if !ok {
		return writeErr(cmd, fmt.Errorf("note not found: %s", id))
	}
	if err := mutate(n); err != nil {
		return writeErr(cmd, err)
	}
	if err := w.UpdateNote(ctx, n); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func newNotesSetTitleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-title <note-id> <title>",
		Short: "Rename a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				n.Title = args[1]
				return nil
			})
		},
	}
}

func newNotesSetTextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-text <note-id> <text>",
		Short: "Replace a note's body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				n.Text = args[1]
				return nil
			})
		},
	}
}

func newNotesSetValueCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "set-value <note-id> [value]",
		Short: "Tag a note with a numeric value for calc folders",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				if clear {
					n.CalcNumber = 0
					n.HasCalcNumber = false
					return nil
				}
				if len(args) < 2 {
					return fmt.Errorf("missing value (or pass --clear)")
				}
				v, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid value %q", args[1])
				}
				n.CalcNumber = v
				n.HasCalcNumber = true
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the numeric tag")
	return cmd
}

func newNotesMoveCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <note-id>",
		Short: "Move a note into another folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.MoveNote(ctx, args[0], to); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", model.RootFolderID, "Target folder id (or 'root')")
	return cmd
}

func newNotesReorderCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "reorder <from-index> <to-index>",
		Short: "Move a note to a new position in its folder's listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid index %q", args[0]))
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid index %q", args[1]))
			}

			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.ReorderNotes(ctx, folderID, from, to); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", model.RootFolderID, "Folder id")
	return cmd
}

func newNotesToggleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <note-id> <checkbox-index>",
		Short: "Flip a checkbox in the note's body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid checkbox index %q", args[1]))
			}
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				text, err := markup.ToggleCheckbox(n.Text, idx)
				if err != nil {
					return err
				}
				n.Text = text
				return nil
			})
		},
	}
	return cmd
}

func newNotesCrossCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cross <note-id>",
		Short: "Toggle a note's crossed-out state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				n.CrossedOut = !n.CrossedOut
				return nil
			})
		},
	}
}

func newNotesColorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "color <note-id> <color>",
		Short: "Set a note's color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				n.Color = args[1]
				return nil
			})
		},
	}
}

func newNotesAttachCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "attach <note-id> <file>",
		Short: "Attach a file's bytes to a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			blobs, err := attachments(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			return editNote(app, cmd, args[0], func(n *model.Note) error {
				att, err := blobs.Put(model.AttachmentKind(kind), filepath.Base(args[1]), data)
				if err != nil {
					return err
				}
				n.Attachments = append(n.Attachments, att)
				fmt.Fprintln(cmd.OutOrStdout(), att.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(model.AttachmentFile), "Attachment kind (image|file|voice)")
	return cmd
}

func newNotesDetachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <note-id> <attachment-id>",
		Short: "Remove an attachment from a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs, err := attachments(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return editNote(app, cmd, args[0], func(n *model.Note) error {
				kept := n.Attachments[:0]
				found := false
				for _, att := range n.Attachments {
					if att.ID == args[1] {
						found = true
						continue
					}
					kept = append(kept, att)
				}
				if !found {
					return fmt.Errorf("attachment not found: %s", args[1])
				}
				n.Attachments = kept
				return blobs.Delete(args[1])
			})
		},
	}
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.DeleteNote(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}
