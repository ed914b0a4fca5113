package backtest

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"afrr-backtest/internal/model"
)

// DaysPerYear is the annualization basis.
const DaysPerYear = 365

// Annualize projects a period total onto a year: total * 365 / days.
// It is undefined for an empty period.
func Annualize(total float64, days int) *float64 {
	if days <= 0 {
		return nil
	}
	return model.Float(total * DaysPerYear / float64(days))
}

// DistinctDays counts the distinct local calendar dates among times.
func DistinctDays(times []time.Time, loc *time.Location) int {
	seen := map[string]struct{}{}
	for _, t := range times {
		seen[t.In(loc).Format(time.DateOnly)] = struct{}{}
	}
	return len(seen)
}

// SamplesPerHour is how many samples of the native interval make one hour.
func SamplesPerHour(interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(time.Hour) / float64(interval)
}

// SummarizeActivation sums per-sample revenue, cost and power and converts the
// rate sums into DKK and MWh. Unpriced samples are left out entirely.
func SummarizeActivation(rows []ActivationRecord, interval time.Duration, days int) ActivationSummary {
	s := ActivationSummary{Samples: len(rows), SamplesPerHour: SamplesPerHour(interval)}
	revenue := make([]float64, 0, len(rows))
	cost := make([]float64, 0, len(rows))
	power := make([]float64, 0, len(rows))
	for _, r := range rows {
		switch r.Eligibility {
		case model.Unpriced:
			s.UnpricedSamples++
			continue
		case model.Eligible:
			s.EligibleSamples++
		}
		revenue = append(revenue, r.Revenue)
		cost = append(cost, r.Cost)
		power = append(power, r.PowerMW)
	}
	if s.SamplesPerHour > 0 {
		s.Revenue = floats.Sum(revenue) / s.SamplesPerHour
		s.Cost = floats.Sum(cost) / s.SamplesPerHour
		s.EnergyMWh = floats.Sum(power) / s.SamplesPerHour
	}
	s.Net = s.Revenue - s.Cost
	s.AnnualizedRevenue = Annualize(s.Revenue, days)
	s.AnnualizedCost = Annualize(s.Cost, days)
	s.AnnualizedNet = Annualize(s.Net, days)
	return s
}
