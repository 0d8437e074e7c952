package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/internal/app"
	"medcore/m/internal/hospital"
)

func newHospitalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospital",
		Short: "Show or replace the facility profile",
	}
	cmd.AddCommand(newHospitalShowCmd())
	cmd.AddCommand(newHospitalApplyCmd())
	return cmd
}

func newHospitalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				cfg := a.Hospital.Get()
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), cfg)
				}
				n := a.Hospital.Numbering()
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, [][]string{
					{"Name", cfg.Name},
					{"Address", cfg.Address},
					{"Phone", cfg.Phone},
					{"Currency", cfg.CurrencySymbol},
					{"Invoice prefix", n.Prefix},
					{"Invoice date part", string(n.DatePart)},
					{"Invoice padding", fmt.Sprint(n.Padding)},
					{"Next invoice", a.Ledger.NextInvoiceID()},
				}))
				return nil
			})
		},
	}
}

func newHospitalApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <profile.yaml>",
		Short: "Replace the stored profile with a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := hospital.LoadProfile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				if err := a.Hospital.Apply(profile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s, next invoice %s\n", profile.Name, a.Ledger.NextInvoiceID())
				return nil
			})
		},
	}
}
