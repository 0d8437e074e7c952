package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/internal/app"
	"medcore/m/internal/remote"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and replay unsynced writes",
	}
	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncFlushCmd())
	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List writes waiting for the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				outbox := a.Adapter.Outbox()
				if outbox == nil {
					fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("outbox disabled"))
					return nil
				}
				pending, err := outbox.Pending()
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), pending)
				}
				rows := make([][]string, 0, len(pending))
				for _, e := range pending {
					rows = append(rows, []string{string(e.Entity), e.ID, string(e.Op), e.QueuedAt, fmt.Sprint(e.Attempts)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Collection", "ID", "Op", "Queued", "Attempts"}, rows))
				return nil
			})
		},
	}
}

func newSyncFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Send queued writes to the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				res, err := a.Adapter.Flush(cmd.Context())
				if errors.Is(err, remote.ErrOffline) {
					return fmt.Errorf("remote unreachable, %d writes still queued", res.Pending)
				}
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %d, failed %d, pending %d\n", res.Sent, res.Failed, res.Pending)
				return nil
			})
		},
	}
}
