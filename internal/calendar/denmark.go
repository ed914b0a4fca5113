package calendar

import (
	"sync"
	"time"
)

// DanishWeekdays are the bid-profile column names, Monday first.
var DanishWeekdays = [7]string{"Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag", "Søndag"}

// Denmark is the Danish public-holiday calendar in Europe/Copenhagen.
type Denmark struct {
	loc *time.Location

	mu    sync.Mutex
	years map[int]map[time.Time]bool
}

// NewDenmark loads Europe/Copenhagen. It fails only when the zone database is missing.
func NewDenmark() (*Denmark, error) {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return nil, err
	}
	return &Denmark{loc: loc, years: map[int]map[time.Time]bool{}}, nil
}

func (d *Denmark) Location() *time.Location { return d.loc }

func (d *Denmark) WeekdayNames() [7]string { return DanishWeekdays }

func (d *Denmark) WeekdayName(t time.Time) string {
	return DanishWeekdays[mondayIndex(t.In(d.loc).Weekday())]
}

func (d *Denmark) IsHoliday(t time.Time) bool {
	t = t.In(d.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.years[t.Year()]
	if !ok {
		set = map[time.Time]bool{}
		for _, h := range DanishHolidays(t.Year()) {
			set[h] = true
		}
		d.years[t.Year()] = set
	}
	return set[day]
}

// DanishHolidays returns the public holidays of a year as UTC midnights.
// Great Prayer Day was abolished from 2024.
func DanishHolidays(year int) []time.Time {
	easter := Easter(year)
	out := []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		easter.AddDate(0, 0, -3), // Maundy Thursday
		easter.AddDate(0, 0, -2), // Good Friday
		easter,
		easter.AddDate(0, 0, 1), // Easter Monday
	}
	if year <= 2023 {
		out = append(out, easter.AddDate(0, 0, 26))
	}
	out = append(out,
		easter.AddDate(0, 0, 39), // Ascension
		easter.AddDate(0, 0, 49), // Whit Sunday
		easter.AddDate(0, 0, 50), // Whit Monday
		time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 26, 0, 0, 0, 0, time.UTC),
	)
	return out
}

// Easter returns Gregorian Easter Sunday (anonymous Gregorian computus).
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
