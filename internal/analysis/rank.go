package analysis

import (
	"sort"

	"afrr-backtest/internal/backtest"
)

type RankedArea struct {
	Area string
	Days int

	CapacityTotal float64
	ActivationNet float64
	// AnnualizedNet is capacity revenue plus activation net, projected to a year.
	AnnualizedNet *float64

	Potential Potential
}

// RankAreas orders per-area results by annualized net value, highest first.
// Areas without a defined annualization sort last, by name.
func RankAreas(byArea map[string]*backtest.Result) []RankedArea {
	out := make([]RankedArea, 0, len(byArea))
	for area, res := range byArea {
		if res == nil {
			continue
		}
		capTotal := res.CapacitySummary.Total
		actNet := res.ActivationSummary.Net
		out = append(out, RankedArea{
			Area:          area,
			Days:          res.Days,
			CapacityTotal: capTotal,
			ActivationNet: actNet,
			AnnualizedNet: backtest.Annualize(capTotal+actNet, res.Days),
			Potential:     ComputePotential(res),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].AnnualizedNet, out[j].AnnualizedNet
		switch {
		case a != nil && b != nil && *a != *b:
			return *a > *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].Area < out[j].Area
	})
	return out
}
