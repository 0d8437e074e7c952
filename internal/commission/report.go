package commission

import (
	"sort"

	"medcore/m/domain"
	"medcore/m/internal/repository"
)

// Filter narrows a commission report. Zero values match everything.
type Filter struct {
	ProfessionalID string
	From, To       string
	// Settled: "paid" keeps rows of settled bills, "due" rows of open bills.
	Settled string
}

type Line struct {
	domain.Commission
	ProfessionalName string            `json:"professionalName"`
	BillNet          float64           `json:"billNet"`
	BillStatus       domain.BillStatus `json:"billStatus"`
}

type Report struct {
	Lines   []Line  `json:"lines"`
	Total   float64 `json:"total"`
	Settled float64 `json:"settled"`
	Pending float64 `json:"pending"`
}

// BuildReport joins commissions with their bills and professionals, newest first.
func BuildReport(repos *repository.Set, f Filter) Report {
	var rep Report
	for _, c := range repos.Commissions.All() {
		if f.ProfessionalID != "" && c.ProfessionalID != f.ProfessionalID {
			continue
		}
		if !domain.InRange(c.Date, f.From, f.To) {
			continue
		}
		line := Line{Commission: c, ProfessionalName: "Deleted Professional", BillStatus: domain.StatusDue}
		if pro, ok := repos.Professionals.Get(c.ProfessionalID); ok {
			line.ProfessionalName = pro.Name
		}
		if bill, ok := repos.Bills.Get(c.BillID); ok {
			line.BillNet = bill.NetAmount()
			line.BillStatus = bill.Status
		}
		switch f.Settled {
		case "paid":
			if line.BillStatus != domain.StatusPaid {
				continue
			}
		case "due":
			if line.BillStatus == domain.StatusPaid {
				continue
			}
		}
		rep.Lines = append(rep.Lines, line)
		rep.Total += c.Amount
		if line.BillStatus == domain.StatusPaid {
			rep.Settled += c.Amount
		} else {
			rep.Pending += c.Amount
		}
	}
	sort.SliceStable(rep.Lines, func(i, j int) bool { return rep.Lines[i].Date > rep.Lines[j].Date })
	rep.Total = domain.Round2(rep.Total)
	rep.Settled = domain.Round2(rep.Settled)
	rep.Pending = domain.Round2(rep.Pending)
	return rep
}

func (e *Engine) Report(f Filter) Report { return BuildReport(e.repos, f) }

// ForProfessional totals the commissions of one professional between two dates.
func (e *Engine) ForProfessional(professionalID, from, to string) Report {
	return BuildReport(e.repos, Filter{ProfessionalID: professionalID, From: from, To: to})
}
