package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/internal/app"
	"medcore/m/internal/ledger"
)

func newExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and list counter expenses",
	}
	cmd.AddCommand(newExpenseAddCmd())
	cmd.AddCommand(newExpenseListCmd())
	return cmd
}

func newExpenseAddCmd() *cobra.Command {
	var in ledger.ExpenseInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record money paid out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				e, err := a.Ledger.AddExpense(cmd.Context(), in)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), e)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s\n", e.ID, money(a.Hospital.Get().CurrencySymbol, e.Amount))
				return nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Description, "description", "", "what the money was spent on")
	fl.Float64Var(&in.Amount, "amount", 0, "amount paid out")
	fl.StringVar(&in.Category, "category", "General", "expense category")
	fl.StringVar(&in.Date, "date", "", "day of the expense (YYYY-MM-DD), defaults to today")
	fl.StringVar(&in.RecordedBy, "by", "", "staff member recording the expense")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpenseListCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				items := a.Ledger.Expenses(from, to)
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				symbol := a.Hospital.Get().CurrencySymbol
				rows := make([][]string, 0, len(items))
				for _, e := range items {
					rows = append(rows, []string{e.ID, e.Date, e.Category, e.Description, money(symbol, e.Amount)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Date", "Category", "Description", "Amount"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Collections, receivables and expenses for a day or range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				s, err := a.Ledger.Summary(from, to)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSummary(s, a.Hospital.Get().CurrencySymbol))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD), defaults to --from")
	return cmd
}
