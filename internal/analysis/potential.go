package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/model"
)

// PriceStats summarizes the distribution of one price series. Missing values are
// counted but never enter the statistics.
type PriceStats struct {
	Count   int
	Missing int

	Min  float64
	Max  float64
	Mean float64
	P05  float64
	P95  float64

	SpreadP95P05 float64
}

func ComputeStats(values []*float64) PriceStats {
	var s PriceStats
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if v == nil || math.IsNaN(*v) {
			s.Missing++
			continue
		}
		vals = append(vals, *v)
	}
	s.Count = len(vals)
	if len(vals) == 0 {
		return s
	}
	sort.Float64s(vals)
	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	s.Mean = stat.Mean(vals, nil)
	s.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	s.SpreadP95P05 = s.P95 - s.P05
	return s
}

// Potential describes the price environment a result was computed in.
type Potential struct {
	Composite  PriceStats
	Capacity   PriceStats
	Activation PriceStats
	// EligibleShare is the fraction of priced samples that passed the activation test.
	EligibleShare float64
}

// ComputePotential gathers price statistics for the configured direction.
func ComputePotential(res *backtest.Result) Potential {
	var p Potential
	if res == nil {
		return p
	}
	dir := res.Params.Regulation.Direction

	composite := make([]*float64, 0, len(res.Prices))
	for _, pp := range res.Prices {
		composite = append(composite, pp.Composite)
	}
	p.Composite = ComputeStats(composite)

	capacity := make([]*float64, 0, len(res.Capacity))
	for _, r := range res.Capacity {
		if dir == model.DirectionDown {
			capacity = append(capacity, r.DownPrice)
		} else {
			capacity = append(capacity, r.UpPrice)
		}
	}
	p.Capacity = ComputeStats(capacity)

	activation := make([]*float64, 0, len(res.Activation))
	for _, r := range res.Activation {
		if dir == model.DirectionDown {
			activation = append(activation, r.DownPrice)
		} else {
			activation = append(activation, r.UpPrice)
		}
	}
	p.Activation = ComputeStats(activation)

	s := res.ActivationSummary
	if priced := s.Samples - s.UnpricedSamples; priced > 0 {
		p.EligibleShare = float64(s.EligibleSamples) / float64(priced)
	}
	return p
}
