package calendar

import (
	"errors"
	"testing"
	"time"
)

// ============================================================
// Dates
// ============================================================

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("got %s", d)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "2023-02-29", "24-1-1"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestAddDaysAcrossYear(t *testing.T) {
	d := MustParseDate("2023-12-31").AddDays(1)
	if d.String() != "2024-01-01" {
		t.Fatalf("got %s", d)
	}
}

func TestISOWeekday(t *testing.T) {
	if got := MustParseDate("2024-06-09").ISOWeekday(); got != 7 {
		t.Fatalf("sunday should be 7, got %d", got)
	}
	if got := MustParseDate("2024-06-10").ISOWeekday(); got != 1 {
		t.Fatalf("monday should be 1, got %d", got)
	}
}

func TestFromTimeIgnoresDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// The night the clocks go forward.
	tm := time.Date(2024, 3, 31, 1, 30, 0, 0, loc)
	d := FromTime(tm)
	if d.String() != "2024-03-31" {
		t.Fatalf("got %s", d)
	}
	if d.AddDays(1).String() != "2024-04-01" {
		t.Fatalf("got %s", d.AddDays(1))
	}
}

func TestYearMonthLast(t *testing.T) {
	cases := map[string]int{"2024-02": 29, "2023-02": 28, "2024-04": 30, "2024-12": 31}
	for s, want := range cases {
		ym, err := ParseYearMonth(s)
		if err != nil {
			t.Fatal(err)
		}
		if ym.Days() != want {
			t.Fatalf("%s: expected %d days, got %d", s, want, ym.Days())
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2025-01-05")); err != nil {
		t.Fatal(err)
	}
	if d != NewDate(2025, time.January, 5) {
		t.Fatalf("got %+v", d)
	}
}

// ============================================================
// Ranges
// ============================================================

func TestWeekRangeAlwaysSevenMondayStarted(t *testing.T) {
	start := MustParseDate("2023-12-20")
	for i := 0; i < 60; i++ {
		ref := start.AddDays(i)
		r := WeekRange(ref)
		days := Enumerate(r)
		if len(days) != 7 {
			t.Fatalf("%s: expected 7 days, got %d", ref, len(days))
		}
		if days[0].Weekday() != time.Monday {
			t.Fatalf("%s: week starts on %s", ref, days[0].Weekday())
		}
		if !r.Contains(ref) {
			t.Fatalf("%s not inside %s", ref, r)
		}
		for j := 1; j < len(days); j++ {
			if !days[j-1].Before(days[j]) {
				t.Fatalf("not strictly ascending: %v", days)
			}
		}
	}
}

func TestWeekRangeSunday(t *testing.T) {
	r := WeekRange(MustParseDate("2024-06-09"))
	if r.Start.String() != "2024-06-03" || r.End.String() != "2024-06-09" {
		t.Fatalf("got %s", r)
	}
}

func TestWeekRangeAcrossYearBoundary(t *testing.T) {
	r := WeekRange(MustParseDate("2025-01-01"))
	if r.Start.String() != "2024-12-30" || r.End.String() != "2025-01-05" {
		t.Fatalf("got %s", r)
	}
}

func TestMonthRangeDayCount(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		ym := YearMonth{Year: 2024, Month: m}
		days := Enumerate(MonthRange(ym))
		if len(days) != ym.Days() {
			t.Fatalf("%s: expected %d days, got %d", ym, ym.Days(), len(days))
		}
		if days[0].Day != 1 {
			t.Fatalf("%s: first day is %d", ym, days[0].Day)
		}
		if days[len(days)-1] != ym.Last() {
			t.Fatalf("%s: last day mismatch", ym)
		}
	}
}

func TestNewRangeRejectsInverted(t *testing.T) {
	_, err := NewRange(MustParseDate("2024-01-02"), MustParseDate("2024-01-01"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDayRange(t *testing.T) {
	d := MustParseDate("2024-05-05")
	days := Enumerate(DayRange(d))
	if len(days) != 1 || days[0] != d {
		t.Fatalf("got %v", days)
	}
}

// ============================================================
// Navigation
// ============================================================

func TestNextWeekRefusesFuture(t *testing.T) {
	today := MustParseDate("2024-06-12") // Wednesday
	cur := MustParseDate("2024-06-10")
	if _, ok := NextWeek(cur, today); ok {
		t.Fatal("should not advance past the current week")
	}
	prev := PrevWeek(cur)
	next, ok := NextWeek(prev, today)
	if !ok {
		t.Fatal("should advance back to the current week")
	}
	if WeekRange(next).Start != WeekRange(today).Start {
		t.Fatalf("got %s", next)
	}
}

func TestNextMonthRefusesFuture(t *testing.T) {
	today := MustParseDate("2024-06-12")
	cur := today.YearMonth()
	if _, ok := NextMonth(cur, today); ok {
		t.Fatal("should not advance past the current month")
	}
	prev := PrevMonth(cur)
	if prev.String() != "2024-05" {
		t.Fatalf("got %s", prev)
	}
	if next, ok := NextMonth(prev, today); !ok || next != cur {
		t.Fatalf("got %s %v", next, ok)
	}
}

func TestShiftMonthAcrossYear(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.January}
	if got := ShiftMonth(ym, -1).String(); got != "2023-12" {
		t.Fatalf("got %s", got)
	}
	if got := ShiftMonth(ym, 12).String(); got != "2025-01" {
		t.Fatalf("got %s", got)
	}
}
