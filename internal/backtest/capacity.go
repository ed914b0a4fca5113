package backtest

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/tariff"
)

// CapacityEngine joins the weekly bid profile to hourly capacity prices.
type CapacityEngine struct {
	cal     calendar.Calendar
	profile *bidprofile.Profile
	reg     model.RegulationConfig
}

func NewCapacityEngine(cal calendar.Calendar, profile *bidprofile.Profile, reg model.RegulationConfig) *CapacityEngine {
	return &CapacityEngine{cal: cal, profile: profile, reg: reg}
}

// Evaluate produces one CapacityRecord per input hour.
//
// An hour is counted when it has a capacity price, a nonzero bid, a price at or
// above the floor when one is set and, with a marginal price M configured, a composite price below M
// (up) or above M (down). Revenue = bid kW / 1000 * capacity price.
func (e *CapacityEngine) Evaluate(records []model.CapacityPriceRecord, prices tariff.PriceIndex) []CapacityRecord {
	out := make([]CapacityRecord, 0, len(records))
	for _, r := range records {
		local := r.HourUTC.In(e.cal.Location())
		row := CapacityRecord{
			HourUTC:   r.HourUTC.UTC(),
			HourLocal: local,
			Interval:  bidprofile.IntervalLabel(local.Hour()),
			Weekday:   e.cal.WeekdayName(local),
			UpPrice:   r.UpPrice,
			DownPrice: r.DownPrice,
			Composite: prices.CompositeAt(r.HourUTC),
		}
		row.BidKW = e.profile.Lookup(row.Interval, row.Weekday)
		row.Gate = e.gate(row.BidKW, r.PriceFor(e.reg.Direction), row.Composite)
		if row.Gate == GateCounted {
			row.Revenue = model.Float(row.BidKW / 1000 * *r.PriceFor(e.reg.Direction))
		}
		out = append(out, row)
	}
	return out
}

func (e *CapacityEngine) gate(bidKW float64, price, composite *float64) Gate {
	if price == nil {
		return GateUnpriced
	}
	if bidKW == 0 {
		return GateNoBid
	}
	if e.reg.CapacityFloor > 0 && *price < e.reg.CapacityFloor {
		return GateBelowFloor
	}
	m := e.reg.MarginalPrice
	if m == nil {
		return GateCounted
	}
	if composite == nil {
		return GateUnpriced
	}
	if e.reg.Direction == model.DirectionDown {
		if *composite > *m {
			return GateCounted
		}
		return GateMarginal
	}
	if *composite < *m {
		return GateCounted
	}
	return GateMarginal
}

// SummarizeCapacity totals the ledger and annualizes over days.
func SummarizeCapacity(rows []CapacityRecord, days int) CapacitySummary {
	var s CapacitySummary
	revenues := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.BidKW > 0 {
			s.HoursBid++
		}
		if r.Gate == GateUnpriced {
			s.HoursUnpriced++
		}
		if r.Revenue == nil {
			continue
		}
		revenues = append(revenues, *r.Revenue)
		s.Total += *r.Revenue
	}
	s.HoursCounted = len(revenues)
	if len(revenues) > 0 {
		s.MeanPerHour = stat.Mean(revenues, nil)
	}
	s.Annualized = Annualize(s.Total, days)
	return s
}

// BidByHour maps each counted hour to its bid volume. Activation samples in hours
// that did not pass capacity gating get no volume.
func BidByHour(rows []CapacityRecord) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(rows))
	for _, r := range rows {
		if r.Gate == GateCounted {
			out[tariff.HourFloor(r.HourUTC)] = r.BidKW
		}
	}
	return out
}
