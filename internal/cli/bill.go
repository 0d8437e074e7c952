package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/ledger"
)

type billFlags struct {
	file       string
	patientID  string
	walkInName string
	walkInAge  int
	walkInSex  string
	walkInTel  string
	billType   string
	referrer   string
	consultant string
	items      []string
	custom     []string
	discount   float64
	paid       float64
	method     string
	author     string
}

func (f *billFlags) register(cmd *cobra.Command, create bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.file, "from-file", "", "read the bill input as JSON from a file")
	fl.StringVar(&f.patientID, "patient", "", "registered patient id")
	fl.StringVar(&f.walkInName, "walk-in", "", "walk-in patient name")
	fl.IntVar(&f.walkInAge, "age", 0, "walk-in patient age")
	fl.StringVar(&f.walkInSex, "sex", "", "walk-in patient sex (Male, Female, Other)")
	fl.StringVar(&f.walkInTel, "mobile", "", "walk-in patient mobile")
	fl.StringVar(&f.billType, "type", "", "invoice type")
	fl.StringVar(&f.referrer, "referrer", "", "referring professional id")
	fl.StringVar(&f.consultant, "consultant", "", "consultant professional id")
	fl.StringArrayVar(&f.items, "item", nil, "catalog item as SERVICE_ID[:QTY], repeatable")
	fl.StringArrayVar(&f.custom, "custom", nil, "custom item as NAME=PRICE[:QTY], repeatable")
	fl.Float64Var(&f.discount, "discount", 0, "cumulative discount")
	fl.StringVar(&f.method, "method", "", "payment method")
	fl.StringVar(&f.author, "author", "", "username recorded on the bill")
	if create {
		fl.Float64Var(&f.paid, "paid", 0, "amount paid at the counter")
	}
}

// input builds the ledger input. base carries the current bill on update.
func (f *billFlags) input(cmd *cobra.Command, base *ledger.BillInput) (ledger.BillInput, error) {
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return ledger.BillInput{}, err
		}
		var in ledger.BillInput
		if err := json.Unmarshal(data, &in); err != nil {
			return ledger.BillInput{}, fmt.Errorf("decode %s: %w", f.file, err)
		}
		return in, nil
	}

	var in ledger.BillInput
	if base != nil {
		in = *base
	}
	changed := cmd.Flags().Changed
	if changed("patient") {
		in.PatientID, in.WalkIn = f.patientID, nil
	}
	if changed("walk-in") {
		in.PatientID = ""
		in.WalkIn = &ledger.WalkIn{Name: f.walkInName, Age: f.walkInAge, Sex: f.walkInSex, Mobile: f.walkInTel}
	}
	if changed("type") {
		in.Type = domain.InvoiceType(f.billType)
	}
	if changed("referrer") {
		in.ReferringProfessionalID = f.referrer
	}
	if changed("consultant") {
		in.ConsultingProfessionalID = f.consultant
	}
	if changed("discount") {
		in.Discount = f.discount
	}
	if changed("method") {
		in.PaymentMethod = domain.PaymentMethod(f.method)
	}
	if changed("author") {
		in.AuthorUsername = f.author
	}
	if changed("paid") {
		in.InitialPayment = f.paid
	}
	for _, spec := range f.items {
		item, err := parseCatalogItem(spec)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, item)
	}
	for _, spec := range f.custom {
		item, err := parseCustomItem(spec)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, item)
	}
	return in, nil
}

func parseQty(s string) (float64, error) {
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

// parseCatalogItem reads SERVICE_ID[:QTY].
func parseCatalogItem(spec string) (ledger.ItemInput, error) {
	id, qty, found := strings.Cut(spec, ":")
	item := ledger.ItemInput{ServiceID: strings.TrimSpace(id), Quantity: 1}
	if item.ServiceID == "" {
		return item, fmt.Errorf("invalid item %q", spec)
	}
	if found {
		q, err := parseQty(qty)
		if err != nil {
			return item, err
		}
		item.Quantity = q
	}
	return item, nil
}

// parseCustomItem reads NAME=PRICE[:QTY].
func parseCustomItem(spec string) (ledger.ItemInput, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return ledger.ItemInput{}, fmt.Errorf("invalid custom item %q, want NAME=PRICE[:QTY]", spec)
	}
	priceStr, qty, found := strings.Cut(rest, ":")
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return ledger.ItemInput{}, fmt.Errorf("invalid price in %q", spec)
	}
	item := ledger.ItemInput{Name: strings.TrimSpace(name), UnitPrice: &price, Quantity: 1}
	if found {
		q, err := parseQty(qty)
		if err != nil {
			return item, err
		}
		item.Quantity = q
	}
	return item, nil
}

// inputFromBill turns a stored bill back into an editable input, pinning the
// item prices so a catalog change does not alter the bill.
func inputFromBill(b domain.Bill) ledger.BillInput {
	in := ledger.BillInput{
		Type:                     b.Type,
		PatientID:                b.PatientID,
		ReferringProfessionalID:  b.ReferringProfessionalID,
		ReferringManual:          b.ReferringManual,
		ConsultingProfessionalID: b.ConsultingProfessionalID,
		ConsultingManual:         b.ConsultingManual,
		Discount:                 b.Discount,
		PaymentMethod:            b.PaymentMethod,
		AuthorUsername:           b.AuthorUsername,
		AuthorName:               b.AuthorName,
	}
	if b.IsWalkIn() {
		in.WalkIn = &ledger.WalkIn{Name: b.WalkInName, Age: b.WalkInAge, Sex: b.WalkInSex, Mobile: b.WalkInMobile}
	}
	for _, it := range b.Items {
		price, rate := it.UnitPrice, it.CommissionRate
		in.Items = append(in.Items, ledger.ItemInput{
			ServiceID:      it.ServiceID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      &price,
			CommissionRate: &rate,
		})
	}
	return in
}

func printBill(cmd *cobra.Command, a *app.App, b domain.Bill) error {
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), b)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderBill(b, a.Hospital.Get().CurrencySymbol))
	return nil
}

func newBillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Create, edit and inspect bills",
	}
	cmd.AddCommand(newBillCreateCmd())
	cmd.AddCommand(newBillUpdateCmd())
	cmd.AddCommand(newBillShowCmd())
	cmd.AddCommand(newBillListCmd())
	cmd.AddCommand(newBillOutstandingCmd())
	cmd.AddCommand(newBillDeleteCmd())
	return cmd
}

func newBillCreateCmd() *cobra.Command {
	var f billFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new bill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd, nil)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				bill, err := a.Ledger.CreateBill(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printBill(cmd, a, bill)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newBillUpdateCmd() *cobra.Command {
	var (
		f          billFlags
		clearItems bool
	)
	cmd := &cobra.Command{
		Use:   "update <invoice-id>",
		Short: "Edit the items, patient, referral or discount of a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				current, err := a.Ledger.Get(args[0])
				if err != nil {
					return err
				}
				base := inputFromBill(current)
				if clearItems {
					base.Items = nil
				}
				in, err := f.input(cmd, &base)
				if err != nil {
					return err
				}
				bill, err := a.Ledger.UpdateBill(cmd.Context(), args[0], in)
				if err != nil {
					return err
				}
				return printBill(cmd, a, bill)
			})
		},
	}
	f.register(cmd, false)
	cmd.Flags().BoolVar(&clearItems, "replace-items", false, "drop the current items before adding --item/--custom")
	return cmd
}

func newBillShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Print one bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				bill, err := a.Ledger.Get(args[0])
				if err != nil {
					return err
				}
				return printBill(cmd, a, bill)
			})
		},
	}
}

func printBills(cmd *cobra.Command, a *app.App, bills []domain.Bill) error {
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), bills)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderBills(bills, a.Hospital.Get().CurrencySymbol))
	return nil
}

func newBillListCmd() *cobra.Command {
	var f ledger.ListFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = domain.BillStatus(status)
			return withApp(cmd, func(a *app.App) error {
				return printBills(cmd, a, a.Ledger.List(f))
			})
		},
	}
	cmd.Flags().StringVar(&f.From, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.To, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "paid, partial or due")
	cmd.Flags().StringVar(&f.PatientID, "patient", "", "registered patient id")
	cmd.Flags().StringVar(&f.Search, "search", "", "match invoice id or walk-in name")
	return cmd
}

func newBillOutstandingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding",
		Short: "List bills with money still due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				return printBills(cmd, a, a.Ledger.Outstanding())
			})
		},
	}
}

func newBillDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <invoice-id>",
		Short: "Move a bill to the recycle bin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrNeedsConfirm
			}
			return withApp(cmd, func(a *app.App) error {
				item, err := a.Trash.SoftDelete(cmd.Context(), domain.EntityBills, args[0])
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return writeJSON(cmd.OutOrStdout(), item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "moved %s to trash as %s\n", args[0], item.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
