// Package calendar provides the calendar capability used by tariff scheduling and
// bid-profile lookups: the local time zone, public holidays and weekday naming.
package calendar

import "time"

// Calendar is injected into the tariff scheduler and the capacity engine so they
// can be exercised with synthetic calendars.
type Calendar interface {
	// Location is the local zone tariffs and bid profiles are defined in.
	Location() *time.Location
	// IsHoliday reports whether the local date of t is a public holiday.
	IsHoliday(t time.Time) bool
	// WeekdayName is the bid-profile column name for the local weekday of t.
	WeekdayName(t time.Time) string
	// WeekdayNames lists the column names Monday first.
	WeekdayNames() [7]string
}

// IsWeekendOrHoliday returns true on Saturdays, Sundays and public holidays (local date).
func IsWeekendOrHoliday(c Calendar, t time.Time) bool {
	t = t.In(c.Location())
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return c.IsHoliday(t)
}

// IsSummer is true for local months April through September.
func IsSummer(c Calendar, t time.Time) bool {
	m := t.In(c.Location()).Month()
	return m >= time.April && m <= time.September
}

// mondayIndex maps time.Weekday onto a Monday-first index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
