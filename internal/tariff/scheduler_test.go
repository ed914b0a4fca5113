package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrr-backtest/internal/model"
)

// fixedCalendar is a UTC calendar with an explicit holiday set.
type fixedCalendar struct {
	holidays map[string]bool
}

func (c fixedCalendar) Location() *time.Location { return time.UTC }

func (c fixedCalendar) IsHoliday(t time.Time) bool {
	return c.holidays[t.Format(time.DateOnly)]
}

func (c fixedCalendar) WeekdayName(t time.Time) string { return t.Weekday().String() }

func (c fixedCalendar) WeekdayNames() [7]string {
	return [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

var rates = model.TariffRates{Low: 10, High: 20, Peak: 40, Grid: 120}

func TestSchedulerPatterns(t *testing.T) {
	cal := fixedCalendar{holidays: map[string]bool{"2025-06-05": true}}

	tests := []struct {
		name     string
		category model.Category
		day      time.Time
		counts   map[Band]int
		samples  map[int]Band
	}{
		{
			name:     "flat ignores season and weekday",
			category: model.CategoryFlat,
			day:      time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC), // summer Sunday
			counts:   map[Band]int{Low: 6, High: 14, Peak: 4},
			samples:  map[int]Band{0: Low, 5: Low, 6: High, 16: High, 17: Peak, 20: Peak, 21: High, 23: High},
		},
		{
			name:     "summer weekend all low",
			category: model.CategoryTiered,
			day:      time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
			counts:   map[Band]int{Low: 24},
			samples:  map[int]Band{0: Low, 12: Low, 23: Low},
		},
		{
			name:     "summer holiday all low",
			category: model.CategoryTiered,
			day:      time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), // Thursday
			counts:   map[Band]int{Low: 24},
		},
		{
			name:     "summer weekday",
			category: model.CategoryTiered,
			day:      time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
			counts:   map[Band]int{Low: 6, High: 18},
			samples:  map[int]Band{5: Low, 6: High, 23: High},
		},
		{
			name:     "winter weekend",
			category: model.CategoryTiered,
			day:      time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
			counts:   map[Band]int{Low: 6, High: 18},
			samples:  map[int]Band{5: Low, 6: High, 20: High},
		},
		{
			name:     "winter weekday",
			category: model.CategoryTiered,
			day:      time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
			counts:   map[Band]int{Low: 6, Peak: 15, High: 3},
			samples:  map[int]Band{5: Low, 6: Peak, 20: Peak, 21: High, 23: High},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(cal, tt.category, rates)
			p := s.Pattern(tt.day)
			assert.Equal(t, tt.counts, p.Counts())
			for h, want := range tt.samples {
				assert.Equal(t, want, s.Band(tt.day.Add(time.Duration(h)*time.Hour)), "hour %d", h)
			}
		})
	}
}

func TestSchedulerPartitionsEveryDay(t *testing.T) {
	cal := fixedCalendar{}
	allowed := []map[Band]int{
		{Low: 6, High: 14, Peak: 4},
		{Low: 6, Peak: 15, High: 3},
		{Low: 6, High: 18},
		{Low: 24},
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, category := range []model.Category{model.CategoryFlat, model.CategoryTiered} {
		s := NewScheduler(cal, category, rates)
		for d := 0; d < 365; d++ {
			day := start.AddDate(0, 0, d)
			counts := map[Band]int{}
			for h := 0; h < 24; h++ {
				counts[s.Band(day.Add(time.Duration(h)*time.Hour))]++
			}
			total := 0
			for _, n := range counts {
				total += n
			}
			require.Equal(t, 24, total)
			assert.Contains(t, allowed, counts, "%s %s", category, day.Format(time.DateOnly))
		}
	}
}

func TestSchedulerRate(t *testing.T) {
	s := NewScheduler(fixedCalendar{}, model.CategoryFlat, rates)
	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10.0, s.Rate(day.Add(2*time.Hour)))
	assert.Equal(t, 20.0, s.Rate(day.Add(8*time.Hour)))
	assert.Equal(t, 40.0, s.Rate(day.Add(18*time.Hour)))
	assert.Equal(t, 20.0, s.Rate(day.Add(22*time.Hour)))
}
