// Package tariff maps local hours to tariff rates and composes the consumption price.
package tariff

import (
	"time"

	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/model"
)

// Band is a tariff bucket.
type Band int

const (
	Low Band = iota
	High
	Peak
)

func (b Band) String() string {
	switch b {
	case Low:
		return "low"
	case High:
		return "high"
	case Peak:
		return "peak"
	default:
		return "unknown"
	}
}

// DayPattern assigns a band to each local hour 0-23.
type DayPattern [24]Band

type span struct {
	band  Band
	hours int
}

func pattern(spans ...span) DayPattern {
	var p DayPattern
	h := 0
	for _, s := range spans {
		for i := 0; i < s.hours; i++ {
			p[h] = s.band
			h++
		}
	}
	return p
}

var (
	// flatDay: 0-5 low, 6-16 high, 17-20 peak, 21-23 high.
	flatDay = pattern(span{Low, 6}, span{High, 11}, span{Peak, 4}, span{High, 3})
	// winterWeekday: 0-5 low, 6-20 peak, 21-23 high.
	winterWeekday = pattern(span{Low, 6}, span{Peak, 15}, span{High, 3})
	// lowThenHigh: 0-5 low, 6-23 high. Summer weekdays and winter weekends/holidays.
	lowThenHigh = pattern(span{Low, 6}, span{High, 18})
	allLow      = pattern(span{Low, 24})
)

// Counts returns how many hours fall in each band.
func (p DayPattern) Counts() map[Band]int {
	out := map[Band]int{}
	for _, b := range p {
		out[b]++
	}
	return out
}

// Scheduler picks the tariff rate for a local hour. It is pure given its calendar.
type Scheduler struct {
	Calendar calendar.Calendar
	Category model.Category
	Rates    model.TariffRates
}

func NewScheduler(cal calendar.Calendar, category model.Category, rates model.TariffRates) *Scheduler {
	return &Scheduler{Calendar: cal, Category: category, Rates: rates}
}

// Pattern returns the daily pattern that applies on the local date of t.
func (s *Scheduler) Pattern(t time.Time) DayPattern {
	if s.Category != model.CategoryTiered {
		return flatDay
	}
	summer := calendar.IsSummer(s.Calendar, t)
	offDay := calendar.IsWeekendOrHoliday(s.Calendar, t)
	switch {
	case summer && offDay:
		return allLow
	case summer:
		return lowThenHigh
	case offDay:
		return lowThenHigh
	default:
		return winterWeekday
	}
}

// Band returns the band of the local hour containing t.
func (s *Scheduler) Band(t time.Time) Band {
	local := t.In(s.Calendar.Location())
	return s.Pattern(local)[local.Hour()]
}

// Rate returns the tariff rate (DKK/MWh) for the hour containing t.
func (s *Scheduler) Rate(t time.Time) float64 {
	switch s.Band(t) {
	case Peak:
		return s.Rates.Peak
	case High:
		return s.Rates.High
	default:
		return s.Rates.Low
	}
}
