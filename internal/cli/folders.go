package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"notedeck/internal/engine"
	"notedeck/internal/model"
)

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Folder commands",
	}

	cmd.AddCommand(newFoldersCreateCmd(app))
	cmd.AddCommand(newFoldersListCmd(app))
	cmd.AddCommand(newFoldersSharedCmd(app))
	cmd.AddCommand(newFoldersOpenCmd(app))
	cmd.AddCommand(newFoldersRenameCmd(app))
	cmd.AddCommand(newFoldersColorCmd(app))
	cmd.AddCommand(newFoldersCrossCmd(app))
	cmd.AddCommand(newFoldersMoveCmd(app))
	cmd.AddCommand(newFoldersReorderCmd(app))
	cmd.AddCommand(newFoldersSetMethodCmd(app))
	cmd.AddCommand(newFoldersRecalcCmd(app))
	cmd.AddCommand(newFoldersGoalCmd(app))
	cmd.AddCommand(newFoldersSetPasswordCmd(app))
	cmd.AddCommand(newFoldersClearPasswordCmd(app))
	cmd.AddCommand(newFoldersShareCmd(app))
	cmd.AddCommand(newFoldersDeleteCmd(app))

	return cmd
}

func newFoldersCreateCmd(app *App) *cobra.Command {
	var parentID string
	var typ string
	var colorFlag string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderType, ok := model.ParseFolderType(typ)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown folder type %q", typ))
			}

			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			f, err := w.AddFolder(ctx, parentID, args[0], folderType)
			if err != nil {
				return writeErr(cmd, err)
			}
			if c := firstNonEmpty(colorFlag, app.DefaultColor); c != "" {
				f.Color = c
				if err := w.UpdateFolder(ctx, f); err != nil {
					return writeErr(cmd, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", model.RootFolderID, "Parent folder id")
	cmd.Flags().StringVar(&typ, "type", string(model.FolderTypeStandard), "Folder type (standard|organizer|mindmap|calc)")
	cmd.Flags().StringVar(&colorFlag, "color", "", "Folder color (default from config)")
	return cmd
}

func newFoldersListCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subfolders of a folder (display order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			printFolders(cmd, app, w.Subfolders(parentID))
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", model.RootFolderID, "Parent folder id")
	return cmd
}

func newFoldersSharedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shared",
		Short: "List shared folders (sorted by name)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			printFolders(cmd, app, w.SharedFolders())
			return nil
		},
	}
}

// newFoldersOpenCmd lists a folder's contents, going through the password
// gate when the folder carries one.
func newFoldersOpenCmd(app *App) *cobra.Command {
	var password string
	var edit bool

	cmd := &cobra.Command{
		Use:     "open <folder-id>",
		Aliases: []string{"unlock"},
		Short:   "List a folder's contents, unlocking it if password protected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			intent := engine.IntentView
			if edit {
				intent = engine.IntentEdit
			}
			show := func() {
				printFolders(cmd, app, w.Subfolders(args[0]))
				printNotes(cmd, app, w.Notes(args[0]))
			}

			locked, err := w.Open(args[0], intent, show)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !locked {
				return nil
			}

			pass, err := resolvePassword(password, fmt.Sprintf("Password (%s): ", intent))
			if err != nil {
				w.CancelUnlock()
				return writeErr(cmd, err)
			}
			if err := w.Unlock(pass); err != nil {
				w.CancelUnlock()
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Folder password (prompted when omitted)")
	cmd.Flags().BoolVar(&edit, "edit", false, "Open with edit intent instead of view")
	return cmd
}

// editFolder is the shared find-mutate-persist flow for the small setters.
func editFolder(app *App, cmd *cobra.Command, id string, mutate func(f *model.Folder) error) error {
	ctx := cmd.Context()
	w, s, err := loadWorkspace(ctx, cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	f, ok := w.FindFolder(id)
	if !ok {
		return writeErr(cmd, fmt.Errorf("folder not found: %s", id))
	}
	if err := mutate(f); err != nil {
		return writeErr(cmd, err)
	}
	if err := w.UpdateFolder(ctx, f); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func newFoldersRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder-id> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFolder(app, cmd, args[0], func(f *model.Folder) error {
				f.Name = args[1]
				return nil
			})
		},
	}
}

func newFoldersColorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "color <folder-id> <color>",
		Short: "Set a folder's color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFolder(app, cmd, args[0], func(f *model.Folder) error {
				f.Color = args[1]
				return nil
			})
		},
	}
}

func newFoldersCrossCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cross <folder-id>",
		Short: "Toggle a folder's crossed-out state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFolder(app, cmd, args[0], func(f *model.Folder) error {
				f.CrossedOut = !f.CrossedOut
				return nil
			})
		},
	}
}

func newFoldersMoveCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <folder-id>",
		Short: "Move a folder under another folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.MoveFolder(ctx, args[0], to); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", model.RootFolderID, "Target folder id (or 'root')")
	return cmd
}

func newFoldersReorderCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "reorder <from-index> <to-index>",
		Short: "Move a folder to a new position in its parent's listing",
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

			if err := w.ReorderFolders(ctx, parentID, from, to); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", model.RootFolderID, "Parent folder id")
	return cmd
}

func newFoldersSetMethodCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-method <folder-id> <method>",
		Short: "Set a calc folder's method (sum, average, percentage[:param], goal[:target])",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := model.ParseCalcMethod(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.SetCalcMethod(ctx, args[0], method); err != nil {
				return writeErr(cmd, err)
			}
			f, _ := w.FindFolder(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), folderValue(f))
			return nil
		},
	}
	return cmd
}

func newFoldersRecalcCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc <folder-id>",
		Short: "Recompute a calc folder's value and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			v, err := w.Recompute(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", v)
			return nil
		},
	}
}

func newFoldersGoalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "goal <folder-id>",
		Short: "Show a goal folder's progress toward its target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			value, target, ok := w.GoalProgress(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("folder %s has no goal method", args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f / %.2f\n", value, target)
			return nil
		},
	}
}

func newFoldersSetPasswordCmd(app *App) *cobra.Command {
	var current string
	var password string

	cmd := &cobra.Command{
		Use:   "set-password <folder-id>",
		Short: "Set or change a folder's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			old := current
			if f, ok := w.FindFolder(args[0]); ok && f.PasswordHash != "" {
				old, err = resolvePassword(current, "Current password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			pass, err := resolvePassword(password, "New password: ")
			if err != nil {
				return writeErr(cmd, err)
			}

			if err := w.SetPassword(ctx, args[0], old, pass); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password (prompted when omitted)")
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	return cmd
}

func newFoldersClearPasswordCmd(app *App) *cobra.Command {
	var current string

	cmd := &cobra.Command{
		Use:   "clear-password <folder-id>",
		Short: "Remove a folder's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			pass, err := resolvePassword(current, "Current password: ")
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := w.ClearPassword(ctx, args[0], pass); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password (prompted when omitted)")
	return cmd
}

func newFoldersShareCmd(app *App) *cobra.Command {
	var with []string

	cmd := &cobra.Command{
		Use:   "share <folder-id>",
		Short: "Replace a folder's collaborator list (--with none to unshare)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			ids := with
			if len(ids) == 1 && ids[0] == "none" {
				ids = nil
			}
			if err := w.SetCollaborators(ctx, args[0], ids); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&with, "with", nil, "Collaborator ids (repeat or comma-separate)")
	return cmd
}

func newFoldersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder and its direct notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, s, err := loadWorkspace(ctx, cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := w.DeleteFolder(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}
