package calendar

import (
	"fmt"
	"strings"
)

// Period is the recurrence interval of an obligation.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParsePeriod accepts the four known periods case-insensitively. An empty
// string means monthly.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Monthly, nil
	}
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// Advance returns the date one period after d. Unknown periods advance monthly.
func Advance(d Date, p Period) Date {
	switch p {
	case Daily:
		return d.AddDays(1)
	case Weekly:
		return d.AddDays(7)
	case Yearly:
		return d.AddMonths(12)
	default:
		return d.AddMonths(1)
	}
}
