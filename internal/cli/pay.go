package cli

import (
	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/reconcile"
)

func newPayCmd() *cobra.Command {
	var (
		amount float64
		waiver float64
		method string
		note   string
		settle bool
	)
	cmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Collect a payment or waiver against a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := reconcile.PaymentOptions{Method: domain.PaymentMethod(method), Note: note}
			return withApp(cmd, func(a *app.App) error {
				var (
					bill domain.Bill
					err  error
				)
				if settle {
					bill, err = a.Payments.Settle(cmd.Context(), args[0], opts)
				} else {
					bill, err = a.Payments.ApplyPayment(cmd.Context(), args[0], amount, waiver, opts)
				}
				if err != nil {
					return err
				}
				return printBill(cmd, a, bill)
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount received")
	cmd.Flags().Float64Var(&waiver, "waiver", 0, "additional discount granted")
	cmd.Flags().StringVar(&method, "method", "", "payment method (default Cash)")
	cmd.Flags().StringVar(&note, "note", "", "payment note")
	cmd.Flags().BoolVar(&settle, "settle", false, "collect the full due amount")
	cmd.MarkFlagsMutuallyExclusive("settle", "amount")
	return cmd
}
