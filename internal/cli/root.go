package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notedeck/internal/config"
	"notedeck/internal/engine"
	"notedeck/internal/store"
)

type App struct {
	DataDir string
	NoColor bool

	// DefaultColor is resolved from config; applied to new notes and folders
	// when no --color is given.
	DefaultColor string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "notedeck",
		Short:        "Local-first note and folder organizer",
		SilenceUsage: true,
		Example: `  # Create a folder and a note inside it
  notedeck folders create "Groceries"
  notedeck notes create --folder <folder-id> "milk"

  # Scriptable listings
  notedeck folders list
  notedeck notes list --folder <folder-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", envOr("NOTEDECK_DATA_DIR", ""),
		"Path to the data directory (default: from config / ~/.notedeck)")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newFoldersCmd(app))
	cmd.AddCommand(newTagsCmd(app))

	return cmd
}

// newInitCmd creates the data directory, a starter config file, and the
// database schema, so later commands start from a ready workspace.
func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, config file and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := config.WriteDefault()
			if err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := resolveConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := store.Open(cmd.Context(), cfg.DataDir)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "config:", cfgPath)
			fmt.Fprintln(cmd.OutOrStdout(), "data:", cfg.DataDir)
			return nil
		},
	}
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(app *App) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if app.DataDir != "" {
		cfg.DataDir = app.DataDir
	}
	return cfg, nil
}

// loadWorkspace opens the store under the resolved data dir and hydrates the
// engine with it. Transient engine notices go to stderr.
func loadWorkspace(ctx context.Context, cmd *cobra.Command, app *App) (*engine.Workspace, *store.Store, error) {
	cfg, err := resolveConfig(app)
	if err != nil {
		return nil, nil, err
	}
	if app.DefaultColor == "" {
		app.DefaultColor = cfg.DefaultColor
	}

	s, err := store.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	notes, folders, err := s.LoadAll(ctx)
	if err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("load workspace: %w", err)
	}

	w := engine.New(s, engine.WithNotifier(engine.NotifierFunc(func(msg string) {
		fmt.Fprintln(cmd.ErrOrStderr(), "notice:", msg)
	})))
	w.Load(notes, folders)
	return w, s, nil
}

// attachments opens the blob store alongside the database.
func attachments(app *App) (*store.Attachments, error) {
	cfg, err := resolveConfig(app)
	if err != nil {
		return nil, err
	}
	return store.OpenAttachments(cfg.DataDir), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
