package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"medcore/m/domain"
	"medcore/m/internal/ledger"
)

var (
	accent  = lipgloss.Color("#0EA5E9") // sky
	dim     = lipgloss.Color("#6B7280") // muted gray
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	statusStyles = map[domain.BillStatus]lipgloss.Style{
		domain.StatusPaid:    lipgloss.NewStyle().Foreground(success).Bold(true),
		domain.StatusPartial: lipgloss.NewStyle().Foreground(warning).Bold(true),
		domain.StatusDue:     lipgloss.NewStyle().Foreground(danger).Bold(true),
	}
)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func renderStatus(s domain.BillStatus) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func money(symbol string, v float64) string {
	return fmt.Sprintf("%s %.2f", symbol, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func patientLabel(b domain.Bill) string {
	if b.IsWalkIn() {
		return b.WalkInName + dimStyle.Render(" (walk-in)")
	}
	return b.PatientID
}

func renderBill(b domain.Bill, symbol string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Invoice "+b.ID) + "  " + renderStatus(b.Status) + "\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%s  %s  %s", domain.DateKey(b.Date), b.Type, patientLabel(b))) + "\n\n")

	rows := make([][]string, 0, len(b.Items))
	for _, it := range b.Items {
		rows = append(rows, []string{it.Name, fmt.Sprintf("%g", it.Quantity), money(symbol, it.UnitPrice), money(symbol, it.LineTotal)})
	}
	sb.WriteString(renderTable([]string{"Item", "Qty", "Price", "Total"}, rows))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total %s  Discount %s  Paid %s  Due %s\n",
		money(symbol, b.TotalAmount), money(symbol, b.Discount), money(symbol, b.PaidAmount), money(symbol, b.DueAmount)))

	if len(b.Payments) > 0 {
		rows = rows[:0]
		for _, p := range b.Payments {
			rows = append(rows, []string{domain.DateKey(p.Date), money(symbol, p.Amount), string(p.Method), p.Note})
		}
		sb.WriteString("\n" + renderTable([]string{"Date", "Amount", "Method", "Note"}, rows) + "\n")
	}
	return sb.String()
}

func renderBills(bills []domain.Bill, symbol string) string {
	if len(bills) == 0 {
		return dimStyle.Render("no bills") + "\n"
	}
	rows := make([][]string, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []string{
			b.ID, domain.DateKey(b.Date), patientLabel(b),
			money(symbol, b.TotalAmount), money(symbol, b.PaidAmount), money(symbol, b.DueAmount),
			renderStatus(b.Status),
		})
	}
	return renderTable([]string{"Invoice", "Date", "Patient", "Total", "Paid", "Due", "Status"}, rows) + "\n"
}

func renderSummary(s ledger.Summary, symbol string) string {
	var sb strings.Builder
	period := s.From
	if s.To != s.From {
		period += " to " + s.To
	}
	sb.WriteString(titleStyle.Render("Summary "+period) + dimStyle.Render(fmt.Sprintf("  %d bills", s.Bills)) + "\n")
	sb.WriteString(renderTable([]string{"", "Amount"}, [][]string{
		{"Advance collection", money(symbol, s.AdvanceCollection)},
		{"Due collection", money(symbol, s.DueCollection)},
		{"Total collection", money(symbol, s.TotalCollection)},
		{"Receivables", money(symbol, s.Receivables)},
		{"Expenses", money(symbol, s.Expenses)},
		{"Cash balance", money(symbol, s.CashBalance)},
	}))
	sb.WriteString("\n")
	if len(s.Items) > 0 {
		rows := make([][]string, 0, len(s.Items))
		for _, it := range s.Items {
			rows = append(rows, []string{it.Name, fmt.Sprintf("%g", it.Quantity)})
		}
		sb.WriteString(renderTable([]string{"Item", "Qty"}, rows) + "\n")
	}
	return sb.String()
}
