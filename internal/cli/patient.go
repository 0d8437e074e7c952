package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/internal/app"
	"medcore/m/internal/registry"
)

func newPatientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Register and list patients",
	}
	cmd.AddCommand(newPatientAddCmd())
	cmd.AddCommand(newPatientListCmd())
	return cmd
}

func newPatientAddCmd() *cobra.Command {
	var in registry.PatientInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				p, err := a.Registry.AddPatient(cmd.Context(), in)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s %s\n", p.ID, p.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "patient name")
	cmd.Flags().IntVar(&in.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&in.Sex, "sex", "", "Male, Female or Other")
	cmd.Flags().StringVar(&in.Mobile, "mobile", "", "mobile number")
	cmd.Flags().StringVar(&in.Address, "address", "", "postal address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPatientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				patients := a.Registry.Patients()
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), patients)
				}
				rows := make([][]string, 0, len(patients))
				for _, p := range patients {
					rows = append(rows, []string{p.ID, p.Name, fmt.Sprint(p.Age), p.Sex, p.Mobile})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Age", "Sex", "Mobile"}, rows))
				return nil
			})
		},
	}
}
