package model

import "time"

// SpotRecord is one hourly day-ahead price for a price area.
// SpotPrice is nil when the feed published the hour without a price.
type SpotRecord struct {
	HourUTC   time.Time
	HourLocal time.Time
	Area      string
	// Price in DKK/MWh.
	SpotPrice *float64
}

// CapacityPriceRecord is one hourly aFRR capacity (disposability) clearing price.
type CapacityPriceRecord struct {
	HourUTC   time.Time
	HourLocal time.Time
	Area      string
	// Prices in DKK/MW per hour.
	UpPrice   *float64
	DownPrice *float64
}

// PriceFor returns the capacity price for the given regulation direction.
func (r CapacityPriceRecord) PriceFor(d Direction) *float64 {
	if d == DirectionDown {
		return r.DownPrice
	}
	return r.UpPrice
}

// ActivationSample is one native-resolution row of the historical activation dataset,
// already converted to DKK/MWh.
type ActivationSample struct {
	TimeUTC   time.Time
	Area      string
	UpPrice   *float64
	DownPrice *float64
}

// PricePoint is the composed consumption price for one hour.
// Composite is nil when the hour had no spot price.
type PricePoint struct {
	HourUTC   time.Time
	HourLocal time.Time
	Spot      *float64
	Tariff    float64
	Grid      float64
	Composite *float64
}

// Float returns a pointer to v. Handy for building optional prices.
func Float(v float64) *float64 { return &v }
