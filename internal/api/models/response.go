package models

import (
	"time"

	"afrr-backtest/internal/model"
)

// EstimateResponse represents the response from an estimate run
type EstimateResponse struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	ComputedAt time.Time       `json:"computed_at"`
	Config     AppliedConfig   `json:"config"`
	Summary    EstimateSummary `json:"summary"`
	Ledger     *Ledger         `json:"ledger,omitempty"`
}

// AppliedConfig echoes the normalized parameters a result was computed with
type AppliedConfig struct {
	Area              string            `json:"area"`
	StartDate         string            `json:"start_date"`
	EndDate           string            `json:"end_date"`
	CustomerCategory  string            `json:"customer_category"`
	Tariffs           model.TariffRates `json:"tariffs"`
	Direction         string            `json:"direction"`
	MarginalPrice     *float64          `json:"marginal_price"` // null = no operating-cost floor
	ActivationPremium float64           `json:"activation_premium"`
	DelaySeconds      float64           `json:"delay_seconds"`
	RampUpSeconds     float64           `json:"ramp_up_seconds"`
	CapacityFloor     float64           `json:"capacity_floor"`
	SampleInterval    string            `json:"sample_interval"`
}

// EstimateSummary contains aggregated estimate results
type EstimateSummary struct {
	Window     TimeWindow        `json:"window"`
	Days       int               `json:"days"`
	Capacity   CapacitySummary   `json:"capacity"`
	Activation ActivationSummary `json:"activation"`
	Potential  PotentialSummary  `json:"potential"`
	// AnnualizedTotal is annualized capacity revenue plus annualized activation net
	AnnualizedTotal *float64 `json:"annualized_total"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CapacitySummary rolls up disposability revenue in DKK
type CapacitySummary struct {
	Total         float64  `json:"total"`
	Annualized    *float64 `json:"annualized"`
	MeanPerHour   float64  `json:"mean_per_hour"`
	HoursCounted  int      `json:"hours_counted"`
	HoursBid      int      `json:"hours_bid"`
	HoursUnpriced int      `json:"hours_unpriced"`
}

// ActivationSummary rolls up activation revenue and cost in DKK
type ActivationSummary struct {
	Revenue           float64  `json:"revenue"`
	Cost              float64  `json:"cost"`
	Net               float64  `json:"net"`
	EnergyMWh         float64  `json:"energy_mwh"`
	AnnualizedRevenue *float64 `json:"annualized_revenue"`
	AnnualizedCost    *float64 `json:"annualized_cost"`
	AnnualizedNet     *float64 `json:"annualized_net"`
	Samples           int      `json:"samples"`
	EligibleSamples   int      `json:"eligible_samples"`
	UnpricedSamples   int      `json:"unpriced_samples"`
}

// PotentialSummary describes the price environment of the period
type PotentialSummary struct {
	Composite     PriceStats `json:"composite"`
	Capacity      PriceStats `json:"capacity"`
	Activation    PriceStats `json:"activation"`
	EligibleShare float64    `json:"eligible_share"`
}

// PriceStats is the distribution of one price series
type PriceStats struct {
	Count        int     `json:"count"`
	Missing      int     `json:"missing"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	P05          float64 `json:"p05"`
	P95          float64 `json:"p95"`
	SpreadP95P05 float64 `json:"spread_p95_p05"`
}

// Ledger holds the result tables of one estimate
type Ledger struct {
	Capacity   []CapacityRow   `json:"capacity,omitempty"`
	Activation []ActivationRow `json:"activation,omitempty"`
}

// CapacityRow represents one hour in the capacity ledger
type CapacityRow struct {
	HourUTC   time.Time `json:"hour_utc"`
	HourLocal time.Time `json:"hour_local"`
	Interval  string    `json:"interval"`
	Weekday   string    `json:"weekday"`
	UpPrice   *float64  `json:"up_price"`
	DownPrice *float64  `json:"down_price"`
	Composite *float64  `json:"composite"`
	BidKW     float64   `json:"bid_kw"`
	Gate      string    `json:"gate"` // "COUNTED", "NO_BID", "UNPRICED", "BELOW_FLOOR", "MARGINAL"
	Revenue   *float64  `json:"revenue"`
}

// ActivationRow represents one sample in the activation ledger
type ActivationRow struct {
	TimeUTC         time.Time `json:"time_utc"`
	TimeLocal       time.Time `json:"time_local"`
	UpPrice         *float64  `json:"up_price"`
	DownPrice       *float64  `json:"down_price"`
	Composite       *float64  `json:"composite"`
	Eligibility     string    `json:"eligibility"` // "ELIGIBLE", "INELIGIBLE", "UNPRICED"
	ActivationPrice *float64  `json:"activation_price"`
	DeviationCost   *float64  `json:"deviation_cost"`
	BidKW           float64   `json:"bid_kw"`
	RunLength       int       `json:"run_length"`
	Fraction        float64   `json:"fraction"`
	Revenue         float64   `json:"revenue"`
	Cost            float64   `json:"cost"`
	PowerMW         float64   `json:"power_mw"`
}

// LedgerResponse is returned by GET /api/v1/estimate/:id/ledger
type LedgerResponse struct {
	ID              string `json:"id"`
	Ledger          Ledger `json:"ledger"`
	CapacityTotal   int    `json:"capacity_total"`
	ActivationTotal int    `json:"activation_total"`
}

// AreaInfo represents one price area in the activation dataset
type AreaInfo struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Samples int       `json:"samples"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
