package calendar

// ShiftWeek moves a week cursor by delta weeks.
func ShiftWeek(cursor Date, delta int) Date {
	return cursor.AddDays(7 * delta)
}

func ShiftMonth(cursor YearMonth, delta int) YearMonth {
	return cursor.AddMonths(delta)
}

// CanAdvanceWeek reports whether the week after cursor's week starts no
// later than the week containing today.
func CanAdvanceWeek(cursor, today Date) bool {
	next := WeekRange(ShiftWeek(cursor, 1)).Start
	return !next.After(WeekRange(today).Start)
}

func CanAdvanceMonth(cursor YearMonth, today Date) bool {
	return cursor.AddMonths(1).Compare(today.YearMonth()) <= 0
}

// NextWeek advances the cursor one week unless that would pass the current
// week, in which case the cursor is returned unchanged with ok false.
func NextWeek(cursor, today Date) (Date, bool) {
	if !CanAdvanceWeek(cursor, today) {
		return cursor, false
	}
	return ShiftWeek(cursor, 1), true
}

func NextMonth(cursor YearMonth, today Date) (YearMonth, bool) {
	if !CanAdvanceMonth(cursor, today) {
		return cursor, false
	}
	return cursor.AddMonths(1), true
}

func PrevWeek(cursor Date) Date { return ShiftWeek(cursor, -1) }

func PrevMonth(cursor YearMonth) YearMonth { return cursor.AddMonths(-1) }
