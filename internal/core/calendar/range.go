package calendar

import (
	"fmt"
	"time"
)

// Range is an inclusive span of days.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func (r Range) Contains(d Date) bool {
	return d.Between(r.Start, r.End)
}

// Preset names accepted by RangeFor.
const (
	PresetToday = "today"
	PresetWeek  = "week"
	PresetMonth = "month"
	PresetYear  = "year"
)

// StartOfWeek uses Sunday as the first day of the week.
func StartOfWeek(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

func StartOfMonth(d Date) Date {
	return New(d.Year(), d.Month(), 1)
}

func EndOfMonth(d Date) Date {
	return StartOfMonth(d).AddMonths(1).AddDays(-1)
}

func StartOfYear(d Date) Date {
	return New(d.Year(), time.January, 1)
}

func MonthRange(d Date) Range {
	return Range{Start: StartOfMonth(d), End: EndOfMonth(d)}
}

func EndOfWeek(d Date) Date {
	return StartOfWeek(d).AddDays(6)
}

func EndOfYear(d Date) Date {
	return New(d.Year(), time.December, 31)
}

// RangeFor resolves a preset to the whole period containing today, so
// entries dated later in the period still fall inside it.
func RangeFor(preset string, today Date) (Range, error) {
	switch preset {
	case PresetToday:
		return Range{Start: today, End: today}, nil
	case PresetWeek:
		return Range{Start: StartOfWeek(today), End: EndOfWeek(today)}, nil
	case PresetMonth:
		return MonthRange(today), nil
	case PresetYear:
		return Range{Start: StartOfYear(today), End: EndOfYear(today)}, nil
	}
	return Range{}, fmt.Errorf("unknown range %q", preset)
}

// Bounds is an optional inclusive span; a nil side is open.
type Bounds struct {
	From *Date
	To   *Date
}

// ResolveBounds reads the start/end/range query parameters shared by the
// list endpoints. Explicit dates win over a preset.
func ResolveBounds(preset, from, to string, today Date) (Bounds, error) {
	var b Bounds
	if from != "" || to != "" {
		if from != "" {
			d, err := Parse(from)
			if err != nil {
				return Bounds{}, err
			}
			b.From = &d
		}
		if to != "" {
			d, err := Parse(to)
			if err != nil {
				return Bounds{}, err
			}
			b.To = &d
		}
		if b.From != nil && b.To != nil && b.From.After(*b.To) {
			return Bounds{}, fmt.Errorf("start %s is after end %s", b.From, b.To)
		}
		return b, nil
	}

	if preset == "" || preset == "all" {
		return b, nil
	}
	r, err := RangeFor(preset, today)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{From: &r.Start, To: &r.End}, nil
}

// Contains reports whether d falls inside b.
func (b Bounds) Contains(d Date) bool {
	if b.From != nil && d.Before(*b.From) {
		return false
	}
	if b.To != nil && d.After(*b.To) {
		return false
	}
	return true
}
