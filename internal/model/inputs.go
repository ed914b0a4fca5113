package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig marks configuration errors. They abort the triggering computation only.
var ErrInvalidConfig = errors.New("invalid configuration")

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// TariffRates are the user supplied tariff rates in DKK/MWh.
type TariffRates struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
	Peak float64 `yaml:"peak" json:"peak"`
	// Grid is the fixed grid tariff added to every hour.
	Grid float64 `yaml:"grid" json:"grid"`
}

// RegulationConfig describes how the asset bids into the aFRR market.
type RegulationConfig struct {
	Direction Direction
	// MarginalPrice is nil when the asset has no operating-cost floor.
	MarginalPrice     *float64
	ActivationPremium float64
	Delay             time.Duration
	RampUp            time.Duration
	// CapacityFloor is the minimum capacity price (DKK/MW) the bid accepts.
	// Zero means no floor, so negative capacity prices still count.
	CapacityFloor float64
}

func (r RegulationConfig) Validate() error {
	if _, err := ParseDirection(string(r.Direction)); err != nil {
		return err
	}
	if r.MarginalPrice != nil && (math.IsNaN(*r.MarginalPrice) || math.IsInf(*r.MarginalPrice, 0)) {
		return configErr("marginal price must be a finite number")
	}
	if r.ActivationPremium < 0 || math.IsNaN(r.ActivationPremium) {
		return configErr("activation premium must be >= 0")
	}
	if r.Delay < 0 {
		return configErr("delay must be >= 0")
	}
	if r.RampUp < 0 {
		return configErr("ramp-up must be >= 0")
	}
	if r.CapacityFloor < 0 {
		return configErr("capacity floor must be >= 0")
	}
	return nil
}

// DateRange is an inclusive range of local calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (d DateRange) Validate() error {
	if d.Start.IsZero() || d.End.IsZero() {
		return configErr("start and end date are required")
	}
	if d.Start.After(d.End) {
		return configErr("start date %s is after end date %s", d.Start.Format(time.DateOnly), d.End.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether the local date of t lies within the range.
func (d DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(d.Start.Year(), d.Start.Month(), d.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(d.End.Year(), d.End.Month(), d.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// Days is the number of calendar days in the range.
func (d DateRange) Days() int {
	start := time.Date(d.Start.Year(), d.Start.Month(), d.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(d.End.Year(), d.End.Month(), d.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}
