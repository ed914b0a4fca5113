package tariff

import (
	"time"

	"afrr-backtest/internal/model"
)

// Composite adds tariff and grid charge to a spot price.
// An unpriced hour stays unpriced; it is never treated as free.
func Composite(spot *float64, tariff, grid float64) *float64 {
	if spot == nil {
		return nil
	}
	return model.Float(*spot + tariff + grid)
}

// Compositor turns spot records into consumption prices.
type Compositor struct {
	Scheduler *Scheduler
}

func NewCompositor(s *Scheduler) *Compositor {
	return &Compositor{Scheduler: s}
}

// Compose returns one PricePoint per spot record, in input order.
func (c *Compositor) Compose(spot []model.SpotRecord) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(spot))
	grid := c.Scheduler.Rates.Grid
	for _, r := range spot {
		rate := c.Scheduler.Rate(r.HourUTC)
		local := r.HourLocal
		if local.IsZero() {
			local = r.HourUTC.In(c.Scheduler.Calendar.Location())
		}
		out = append(out, model.PricePoint{
			HourUTC:   r.HourUTC.UTC(),
			HourLocal: local,
			Spot:      r.SpotPrice,
			Tariff:    rate,
			Grid:      grid,
			Composite: Composite(r.SpotPrice, rate, grid),
		})
	}
	return out
}

// PriceIndex looks up price points by their UTC hour.
type PriceIndex map[time.Time]model.PricePoint

func NewPriceIndex(points []model.PricePoint) PriceIndex {
	ix := make(PriceIndex, len(points))
	for _, p := range points {
		ix[HourFloor(p.HourUTC)] = p
	}
	return ix
}

// CompositeAt returns the composite price of the hour enclosing t, or nil
// when that hour has no spot record.
func (ix PriceIndex) CompositeAt(t time.Time) *float64 {
	p, ok := ix[HourFloor(t)]
	if !ok {
		return nil
	}
	return p.Composite
}

// HourFloor truncates t to the start of its UTC hour.
func HourFloor(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
