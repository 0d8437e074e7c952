package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/registry"
)

func newProfessionalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "professional",
		Aliases: []string{"pro"},
		Short:   "Manage referring professionals and their fee policy",
	}
	cmd.AddCommand(newProfessionalAddCmd())
	cmd.AddCommand(newProfessionalListCmd())
	cmd.AddCommand(newProfessionalCommissionCmd())
	return cmd
}

func newProfessionalAddCmd() *cobra.Command {
	var in registry.ProfessionalInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a doctor or referral agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				p, err := a.Registry.AddProfessional(cmd.Context(), in)
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
	fl := cmd.Flags()
	fl.StringVar(&in.Name, "name", "", "full name")
	fl.StringVar(&in.Degree, "degree", "", "degree or title")
	fl.StringVar(&in.Category, "category", "Out", "Hospital or Out")
	fl.StringVar(&in.OutType, "out-type", "", "Doctor, Pharmacist or Field Refer")
	fl.StringVar(&in.Phone, "phone", "", "contact number")
	fl.BoolVar(&in.CommissionEnabled, "commission", false, "pay referral commission")
	fl.Float64Var(&in.CommissionRate, "rate", 0, "flat commission percentage of the net bill")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProfessionalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List professionals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				pros := a.Registry.Professionals()
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), pros)
				}
				rows := make([][]string, 0, len(pros))
				for _, p := range pros {
					policy := dimStyle.Render("off")
					if p.CommissionEnabled {
						policy = fmt.Sprintf("%g%%", p.CommissionRate)
					}
					rows = append(rows, []string{p.ID, p.Name, p.Degree, p.Category, policy})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Degree", "Category", "Commission"}, rows))
				return nil
			})
		},
	}
}

func newProfessionalCommissionCmd() *cobra.Command {
	var (
		enabled bool
		rate    float64
	)
	cmd := &cobra.Command{
		Use:   "commission <professional-id>",
		Short: "Change the referral fee policy of a professional",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				current, err := findProfessional(a, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("enabled") {
					enabled = current.CommissionEnabled
				}
				if !cmd.Flags().Changed("rate") {
					rate = current.CommissionRate
				}
				p, err := a.Registry.SetCommission(cmd.Context(), args[0], enabled, rate)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s commission enabled=%t rate=%g%%\n", p.ID, p.CommissionEnabled, p.CommissionRate)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", false, "pay referral commission")
	cmd.Flags().Float64Var(&rate, "rate", 0, "flat commission percentage of the net bill")
	return cmd
}

func findProfessional(a *app.App, id string) (domain.Professional, error) {
	p, ok := a.Repos.Professionals.Get(id)
	if !ok {
		return p, fmt.Errorf("%w: %s", registry.ErrProfessionalNotFound, id)
	}
	return p, nil
}
