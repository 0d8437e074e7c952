package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/commission"
)

func newCommissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commission",
		Short: "Referral commission reports",
	}
	cmd.AddCommand(newCommissionReportCmd())
	return cmd
}

func newCommissionReportCmd() *cobra.Command {
	var f commission.Filter
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize referral commissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch f.Settled {
			case "", "paid", "due":
			default:
				return fmt.Errorf("--settled must be paid or due, got %q", f.Settled)
			}
			return withApp(cmd, func(a *app.App) error {
				rep := a.Commissions.Report(f)
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), rep)
				}
				symbol := a.Hospital.Get().CurrencySymbol
				rows := make([][]string, 0, len(rep.Lines))
				for _, l := range rep.Lines {
					rows = append(rows, []string{
						domain.DateKey(l.Date), l.BillID, l.ProfessionalName, string(l.Basis),
						money(symbol, l.BillNet), money(symbol, l.Amount), renderStatus(l.BillStatus),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Date", "Invoice", "Professional", "Basis", "Bill net", "Commission", "Bill"}, rows))
				fmt.Fprintf(out, "Total %s  Settled %s  Pending %s\n",
					money(symbol, rep.Total), money(symbol, rep.Settled), money(symbol, rep.Pending))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.ProfessionalID, "professional", "", "professional id")
	cmd.Flags().StringVar(&f.From, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.To, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Settled, "settled", "", "paid or due")
	return cmd
}
