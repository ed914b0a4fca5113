package backtest

import (
	"time"

	"afrr-backtest/internal/model"
)

// Gate is the outcome of capacity gating for one hour.
type Gate string

const (
	GateCounted Gate = "COUNTED"
	GateNoBid   Gate = "NO_BID"
	// GateUnpriced: capacity price missing, or composite price missing while a marginal price is set.
	GateUnpriced Gate = "UNPRICED"
	// GateBelowFloor: capacity price under the configured capacity-payment floor.
	GateBelowFloor Gate = "BELOW_FLOOR"
	// GateMarginal: composite price on the wrong side of the marginal price.
	GateMarginal Gate = "MARGINAL"
)

// CapacityRecord is one hourly row of the capacity (disposability) ledger.
type CapacityRecord struct {
	HourUTC   time.Time
	HourLocal time.Time
	Interval  string
	Weekday   string

	UpPrice   *float64
	DownPrice *float64
	Composite *float64

	BidKW float64
	Gate  Gate
	// Revenue in DKK, nil unless the hour was counted.
	Revenue *float64
}

// ActivationRecord is one native-resolution row of the activation ledger.
type ActivationRecord struct {
	TimeUTC   time.Time
	TimeLocal time.Time

	UpPrice   *float64
	DownPrice *float64
	Composite *float64

	Eligibility model.Eligibility
	// ActivationPrice is the signed price earned, set only when eligible.
	ActivationPrice *float64
	// DeviationCost is the cost of leaving the operating plan, set only when eligible.
	DeviationCost *float64

	BidKW     float64
	RunLength int
	Fraction  float64

	// Per-sample rates; divide sums by samples per hour for DKK and MWh.
	Revenue float64
	Cost    float64
	PowerMW float64
}

// CapacitySummary rolls up the capacity ledger.
type CapacitySummary struct {
	Total         float64
	Annualized    *float64
	MeanPerHour   float64
	HoursCounted  int
	HoursBid      int
	HoursUnpriced int
}

// ActivationSummary rolls up the activation ledger.
type ActivationSummary struct {
	Revenue   float64
	Cost      float64
	Net       float64
	EnergyMWh float64

	AnnualizedRevenue *float64
	AnnualizedCost    *float64
	AnnualizedNet     *float64

	Samples         int
	EligibleSamples int
	UnpricedSamples int
	SamplesPerHour  float64
}

// Result is everything one computation produces. It is never mutated after Run returns.
type Result struct {
	Params Params

	Prices     []model.PricePoint
	Capacity   []CapacityRecord
	Activation []ActivationRecord

	CapacitySummary   CapacitySummary
	ActivationSummary ActivationSummary

	// Days is the number of distinct local calendar days used for annualizing.
	Days int
}
