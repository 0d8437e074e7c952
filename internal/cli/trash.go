package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/trash"
)

// ErrNeedsConfirm is returned by destructive commands run without --yes.
var ErrNeedsConfirm = errors.New("refusing to delete without --yes")

func newTrashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and manage the recycle bin",
	}
	cmd.AddCommand(newTrashListCmd())
	cmd.AddCommand(newTrashDeleteCmd())
	cmd.AddCommand(newTrashRestoreCmd())
	cmd.AddCommand(newTrashPurgeCmd())
	cmd.AddCommand(newTrashEmptyCmd())
	return cmd
}

func newTrashListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deleted records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				items := a.Trash.List()
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("trash is empty"))
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{it.ID, it.Type, it.Name, it.OriginalID, it.DeletedAt})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Trash ID", "Type", "Name", "Original", "Deleted"}, rows))
				return nil
			})
		},
	}
}

func newTrashDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Move any record to the recycle bin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrNeedsConfirm
			}
			entity, err := domain.ParseEntity(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				item, err := a.Trash.SoftDelete(cmd.Context(), entity, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "moved %s to trash as %s\n", item.Name, item.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newTrashRestoreCmd() *cobra.Command {
	var onConflict string
	cmd := &cobra.Command{
		Use:   "restore <trash-id>",
		Short: "Put a deleted record back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := trash.ParseConflictPolicy(onConflict)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				id, err := a.Trash.Restore(cmd.Context(), args[0], policy)
				var conflict *trash.RestoreConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("%w (retry with --on-conflict overwrite or rename)", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored as %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&onConflict, "on-conflict", "reject", "reject, overwrite or rename")
	return cmd
}

func newTrashPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <trash-id>",
		Short: "Delete one trash entry for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrNeedsConfirm
			}
			return withApp(cmd, func(a *app.App) error {
				if err := a.Trash.Purge(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm permanent deletion")
	return cmd
}

func newTrashEmptyCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Delete every trash entry for good",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrNeedsConfirm
			}
			return withApp(cmd, func(a *app.App) error {
				n, err := a.Trash.EmptyAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm permanent deletion")
	return cmd
}
