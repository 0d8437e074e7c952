// Package invoiceid derives the next human readable bill number from the
// existing bills. It reserves nothing: two callers reading the same bills get
// the same answer.
package invoiceid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"medcore/m/domain"
)

// DatePart selects the clock-derived middle segment.
type DatePart string

const (
	DateNone     DatePart = ""
	DateYYYYMM   DatePart = "YYYYMM"
	DateYYYYMMDD DatePart = "YYYYMMDD"
	DateYYMM     DatePart = "YYMM"
	DateYYMMDD   DatePart = "YYMMDD"
)

const (
	DefaultSeparator = "-"
	DefaultPadding   = 4
)

type Config struct {
	Prefix    string
	DatePart  DatePart
	Padding   int
	Separator string
}

// FromHospital reads the numbering settings stored with the facility config.
func FromHospital(h domain.HospitalConfig) Config {
	return Config{
		Prefix:    h.InvoiceIDPrefix,
		DatePart:  DatePart(h.InvoiceIDDateFormat),
		Padding:   h.InvoiceIDPadding,
		Separator: h.InvoiceIDSeparator,
	}
}

func (c Config) separator() string {
	if c.Separator == "" {
		return DefaultSeparator
	}
	return c.Separator
}

func (c Config) padding() int {
	if c.Padding <= 0 {
		return DefaultPadding
	}
	return c.Padding
}

// Format renders the date segment for t. Unknown formats render nothing.
func (d DatePart) Format(t time.Time) string {
	switch d {
	case DateYYYYMM:
		return t.Format("200601")
	case DateYYYYMMDD:
		return t.Format("20060102")
	case DateYYMM:
		return t.Format("0601")
	case DateYYMMDD:
		return t.Format("060102")
	default:
		return ""
	}
}

// Next returns the identifier following the highest sequence found in ids.
// The sequence is global: it does not restart when the date segment changes.
func Next(ids []string, cfg Config, now time.Time) string {
	sep := cfg.separator()
	max := 0
	for _, id := range ids {
		if n, ok := Sequence(id, sep); ok && n > max {
			max = n
		}
	}

	seq := fmt.Sprintf("%0*d", cfg.padding(), max+1)
	parts := make([]string, 0, 3)
	if cfg.Prefix != "" {
		parts = append(parts, cfg.Prefix)
	}
	if date := cfg.DatePart.Format(now); date != "" {
		parts = append(parts, date)
	}
	parts = append(parts, seq)
	return strings.Join(parts, sep)
}

// Sequence parses the leading digits of the last separator-delimited segment.
func Sequence(id, sep string) (int, bool) {
	last := id
	if i := strings.LastIndex(id, sep); i >= 0 {
		last = id[i+len(sep):]
	}
	last = strings.TrimLeftFunc(last, unicode.IsSpace)
	end := 0
	if end < len(last) && (last[0] == '+' || last[0] == '-') {
		end++
	}
	start := end
	for end < len(last) && last[end] >= '0' && last[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(last[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextNumbered produces PREFIX-<n> ids such as P-1001 for patients. Numbering
// starts above floor.
func NextNumbered(ids []string, prefix string, floor int) string {
	max := floor
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%d", prefix, max+1)
}
