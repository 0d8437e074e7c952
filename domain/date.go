package domain

import "time"

// DateKey returns the YYYY-MM-DD prefix of a stored timestamp.
func DateKey(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// Timestamp formats t the way records store dates.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// InRange reports whether ts falls within [from, to] by calendar day. Empty
// bounds are open.
func InRange(ts, from, to string) bool {
	day := DateKey(ts)
	if from != "" && day < DateKey(from) {
		return false
	}
	if to != "" && day > DateKey(to) {
		return false
	}
	return true
}
