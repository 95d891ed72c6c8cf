package models

// SelectorKind identifies the active variant of a DateSelector.
type SelectorKind int

const (
	// SelectAll returns the full series.
	SelectAll SelectorKind = iota
	// SelectRange keeps observations within inclusive bounds.
	SelectRange
	// SelectDates returns one row per requested date.
	SelectDates
)

func (k SelectorKind) String() string {
	switch k {
	case SelectRange:
		return "range"
	case SelectDates:
		return "dates"
	default:
		return "all"
	}
}

// DateSelector chooses which part of a series a request returns. Explicit
// dates and range bounds are separate variants, so a selector holding both
// cannot be built.
type DateSelector struct {
	kind  SelectorKind
	dates []Date
	start *Date
	end   *Date
}

// AllDates selects the full series.
func AllDates() DateSelector { return DateSelector{kind: SelectAll} }

// Range selects observations with start <= date <= end. Either bound may be
// nil; with both nil the selector is equivalent to AllDates.
func Range(start, end *Date) DateSelector {
	if start == nil && end == nil {
		return AllDates()
	}
	return DateSelector{kind: SelectRange, start: cloneDate(start), end: cloneDate(end)}
}

// ExplicitDates selects exactly the given dates, in the given order.
func ExplicitDates(dates []Date) DateSelector {
	cp := make([]Date, len(dates))
	copy(cp, dates)
	return DateSelector{kind: SelectDates, dates: cp}
}

func (s DateSelector) Kind() SelectorKind { return s.kind }

// Dates returns a copy of the requested dates for SelectDates, nil otherwise.
func (s DateSelector) Dates() []Date {
	if s.kind != SelectDates {
		return nil
	}
	cp := make([]Date, len(s.dates))
	copy(cp, s.dates)
	return cp
}

// Bounds returns the range bounds for SelectRange, nil otherwise.
func (s DateSelector) Bounds() (start, end *Date) {
	if s.kind != SelectRange {
		return nil, nil
	}
	return cloneDate(s.start), cloneDate(s.end)
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
