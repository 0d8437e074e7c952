package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/internal/app"
)

func newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice numbering",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Print the invoice id the next bill would get",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.Ledger.NextInvoiceID())
				return nil
			})
		},
	})
	return cmd
}
