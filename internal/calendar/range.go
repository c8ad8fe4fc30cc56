package calendar

import "fmt"

// Range is an inclusive span of dates. Start is never after End.
type Range struct {
	Start Date
	End   Date
}

// NewRange rejects spans whose end precedes their start.
func NewRange(start, end Date) (Range, error) {
	if end.Before(start) {
		return Range{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange builds a Range from two YYYY-MM-DD strings.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

func DayRange(d Date) Range { return Range{Start: d, End: d} }

// WeekRange returns the Monday..Sunday week containing ref.
func WeekRange(ref Date) Range {
	start := ref.AddDays(1 - ref.ISOWeekday())
	return Range{Start: start, End: start.AddDays(6)}
}

func MonthRange(ym YearMonth) Range {
	return Range{Start: ym.First(), End: ym.Last()}
}

// Len is the number of dates in r.
func (r Range) Len() int { return r.Start.DaysUntil(r.End) + 1 }

func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Enumerate lists every date of r in ascending order, both ends included.
func Enumerate(r Range) []Date {
	if r.End.Before(r.Start) {
		return nil
	}
	out := make([]Date, 0, r.Len())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
