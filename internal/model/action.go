package model

import "strings"

// Direction is the regulation direction of a bid.
// Keep these values stable; they are used in config files and CSV output.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection accepts "up"/"down" and the Danish product labels.
// Anything else is a configuration error.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "afrr-opregulering", "opregulering":
		return DirectionUp, nil
	case "down", "afrr-nedregulering", "nedregulering":
		return DirectionDown, nil
	default:
		return "", configErr("unknown regulation direction %q", s)
	}
}

// Eligibility is the tri-state outcome of the activation test for one sample.
type Eligibility string

const (
	// Unpriced means a required price was missing, so the sample could not be evaluated.
	Unpriced   Eligibility = "UNPRICED"
	Ineligible Eligibility = "INELIGIBLE"
	Eligible   Eligibility = "ELIGIBLE"
)

// Category is the customer category that selects the tariff calendar.
type Category string

const (
	// CategoryFlat uses the same daily tariff pattern all year.
	CategoryFlat Category = "flat"
	// CategoryTiered switches pattern by season and weekday/holiday.
	CategoryTiered Category = "tiered"
)

// ParseCategory accepts flat/tiered and the grid-company customer codes C, B-lav, B-høj, A-lav, A-høj.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "c":
		return CategoryFlat, nil
	case "tiered", "b-lav", "b-høj", "b-hoej", "a-lav", "a-høj", "a-hoej":
		return CategoryTiered, nil
	default:
		return "", configErr("unknown customer category %q", s)
	}
}
