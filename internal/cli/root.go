// Package cli is the medcore command line.
package cli

import (
	"github.com/spf13/cobra"

	"medcore/m/internal/app"
	"medcore/m/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "medcore",
		Short:         "Clinic billing ledger with offline-first sync",
		Long:          "medcore records bills, payments and referral commissions in a local cache and mirrors them to a remote record server when one is reachable.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("json", false, "print machine readable JSON")

	cmd.AddCommand(newBillCmd())
	cmd.AddCommand(newPayCmd())
	cmd.AddCommand(newInvoiceCmd())
	cmd.AddCommand(newPatientCmd())
	cmd.AddCommand(newProfessionalCmd())
	cmd.AddCommand(newExpenseCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newHospitalCmd())
	cmd.AddCommand(newCommissionCmd())
	cmd.AddCommand(newTrashCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newRecordsCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// withApp builds the component graph from the environment, runs fn and
// waits for background sync before returning.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context(), config.Load(), app.Options{})
	if err != nil {
		return err
	}
	runErr := fn(a)
	closeErr := a.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
