package backtest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/tariff"
)

// DefaultSampleInterval is the native resolution of the activation dataset.
const DefaultSampleInterval = time.Second

// Params is the immutable configuration of one computation.
type Params struct {
	Area           string
	Range          model.DateRange
	Category       model.Category
	Rates          model.TariffRates
	Regulation     model.RegulationConfig
	SampleInterval time.Duration
}

func (p Params) Validate() error {
	if strings.TrimSpace(p.Area) == "" {
		return fmt.Errorf("%w: price area is required", model.ErrInvalidConfig)
	}
	if err := p.Range.Validate(); err != nil {
		return err
	}
	if _, err := model.ParseCategory(string(p.Category)); err != nil {
		return err
	}
	if p.SampleInterval <= 0 {
		return fmt.Errorf("%w: sample interval must be > 0", model.ErrInvalidConfig)
	}
	return p.Regulation.Validate()
}

// Inputs are the already-fetched series for one computation.
type Inputs struct {
	Activations []model.ActivationSample
	Spot        []model.SpotRecord
	Capacity    []model.CapacityPriceRecord
	// Profile is read once; pass a snapshot if it may be edited concurrently.
	Profile *bidprofile.Profile
}

type Engine struct {
	cal calendar.Calendar
	log zerolog.Logger
}

func New(cal calendar.Calendar, log zerolog.Logger) *Engine {
	return &Engine{cal: cal, log: log}
}

// Run executes tariff scheduling, price composition, capacity gating, activation
// selection, the ramp model and aggregation over the configured area and date range.
func (e *Engine) Run(in Inputs, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if in.Profile == nil {
		return nil, fmt.Errorf("%w: bid profile is required", model.ErrInvalidConfig)
	}
	selector, err := NewSelector(p.Regulation)
	if err != nil {
		return nil, err
	}
	// canonical labels for everything downstream
	p.Regulation.Direction, _ = model.ParseDirection(string(p.Regulation.Direction))
	p.Category, _ = model.ParseCategory(string(p.Category))

	loc := e.cal.Location()
	inRange := func(t time.Time) bool { return p.Range.Contains(t.In(loc)) }

	scheduler := tariff.NewScheduler(e.cal, p.Category, p.Rates)
	prices := tariff.NewCompositor(scheduler).Compose(in.Spot)
	index := tariff.NewPriceIndex(prices)

	capRecords := make([]model.CapacityPriceRecord, 0, len(in.Capacity))
	for _, r := range in.Capacity {
		if inRange(r.HourUTC) && matchesArea(r.Area, p.Area) {
			capRecords = append(capRecords, r)
		}
	}
	sort.SliceStable(capRecords, func(i, j int) bool { return capRecords[i].HourUTC.Before(capRecords[j].HourUTC) })

	samples := make([]model.ActivationSample, 0, len(in.Activations))
	for _, s := range in.Activations {
		if inRange(s.TimeUTC) && matchesArea(s.Area, p.Area) {
			samples = append(samples, s)
		}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].TimeUTC.Before(samples[j].TimeUTC) })

	capacity := NewCapacityEngine(e.cal, in.Profile, p.Regulation).Evaluate(capRecords, index)
	activation := e.activate(samples, selector, BidByHour(capacity), index, p)

	days := e.periodDays(capacity, activation)
	res := &Result{
		Params:            p,
		Prices:            prices,
		Capacity:          capacity,
		Activation:        activation,
		CapacitySummary:   SummarizeCapacity(capacity, days),
		ActivationSummary: SummarizeActivation(activation, p.SampleInterval, days),
		Days:              days,
	}

	e.log.Info().
		Str("area", p.Area).
		Str("direction", string(p.Regulation.Direction)).
		Int("days", days).
		Int("capacity_hours", len(capacity)).
		Int("samples", len(activation)).
		Int("eligible", res.ActivationSummary.EligibleSamples).
		Float64("capacity_total", res.CapacitySummary.Total).
		Float64("activation_net", res.ActivationSummary.Net).
		Msg("estimate computed")
	return res, nil
}

func (e *Engine) activate(samples []model.ActivationSample, sel *Selector, bids map[time.Time]float64, index tariff.PriceIndex, p Params) []ActivationRecord {
	rows := make([]ActivationRecord, len(samples))
	elig := make([]model.Eligibility, len(samples))
	times := make([]time.Time, len(samples))
	loc := e.cal.Location()

	for i, s := range samples {
		composite := index.CompositeAt(s.TimeUTC)
		d := sel.Evaluate(composite, s.UpPrice, s.DownPrice)
		rows[i] = ActivationRecord{
			TimeUTC:         s.TimeUTC.UTC(),
			TimeLocal:       s.TimeUTC.In(loc),
			UpPrice:         s.UpPrice,
			DownPrice:       s.DownPrice,
			Composite:       composite,
			Eligibility:     d.Eligibility,
			ActivationPrice: d.Price,
			DeviationCost:   d.Cost,
			BidKW:           bids[tariff.HourFloor(s.TimeUTC)],
		}
		elig[i] = d.Eligibility
		times[i] = s.TimeUTC
	}

	ramp := RampModel{Delay: p.Regulation.Delay, RampUp: p.Regulation.RampUp, Interval: p.SampleInterval}
	runs := RunLengths(elig, times, p.SampleInterval)
	for i := range rows {
		r := &rows[i]
		r.RunLength = runs[i]
		r.Fraction = ramp.Fraction(runs[i])
		mw := r.BidKW / 1000
		r.PowerMW = mw * r.Fraction
		if r.ActivationPrice != nil {
			r.Revenue = mw * *r.ActivationPrice * r.Fraction
		}
		if r.DeviationCost != nil {
			r.Cost = mw * *r.DeviationCost * r.Fraction
		}
	}
	return rows
}

// periodDays counts distinct local days of the capacity series, falling back to
// the activation series when no capacity hours are available.
func (e *Engine) periodDays(capacity []CapacityRecord, activation []ActivationRecord) int {
	times := make([]time.Time, 0, len(capacity))
	for _, r := range capacity {
		times = append(times, r.HourUTC)
	}
	if len(times) == 0 {
		for _, r := range activation {
			times = append(times, r.TimeUTC)
		}
	}
	return DistinctDays(times, e.cal.Location())
}

// matchesArea treats an empty record area as belonging to the requested area.
func matchesArea(recordArea, area string) bool {
	return recordArea == "" || strings.EqualFold(recordArea, area)
}
