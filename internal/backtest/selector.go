package backtest

import (
	"math"

	"afrr-backtest/internal/model"
)

// Decision is the activation test outcome for one sample.
// Price and Cost are set exactly when Eligibility is Eligible.
type Decision struct {
	Eligibility model.Eligibility
	Price       *float64
	Cost        *float64
}

// Selector decides whether an activation is economically attractive.
//
// Without a marginal price the asset has no operating-cost floor: an up activation
// is taken when the premium is below the up price, a down activation when the
// negated premium is above the down price, and leaving the plan costs nothing.
//
// With a marginal price M and composite consumption price C:
//
//	up:   (M + P - C) < U  and  C < M,  cost |M - C|
//	down: (M - P - C) > N  and  C > M,  cost |C - M|
type Selector struct {
	direction model.Direction
	marginal  *float64
	premium   float64
}

// NewSelector fails on an unrecognized direction; there is no default direction.
func NewSelector(cfg model.RegulationConfig) (*Selector, error) {
	dir, err := model.ParseDirection(string(cfg.Direction))
	if err != nil {
		return nil, err
	}
	return &Selector{direction: dir, marginal: cfg.MarginalPrice, premium: cfg.ActivationPremium}, nil
}

// NeedsComposite reports whether decisions depend on the consumption price.
func (s *Selector) NeedsComposite() bool { return s.marginal != nil }

// Evaluate tests one sample. A missing market price, or a missing composite price
// when a marginal price is configured, yields Unpriced.
func (s *Selector) Evaluate(composite, up, down *float64) Decision {
	market := up
	if s.direction == model.DirectionDown {
		market = down
	}
	if market == nil || (s.marginal != nil && composite == nil) {
		return Decision{Eligibility: model.Unpriced}
	}

	p := s.premium
	m := *market
	var ok bool
	var cost float64

	switch {
	case s.marginal == nil && s.direction == model.DirectionUp:
		ok = p < m
	case s.marginal == nil:
		ok = -p > m
	case s.direction == model.DirectionUp:
		mp, c := *s.marginal, *composite
		ok = (mp+p-c) < m && c < mp
		cost = math.Abs(mp - c)
	default:
		mp, c := *s.marginal, *composite
		ok = (mp-p-c) > m && c > mp
		cost = math.Abs(c - mp)
	}

	if !ok {
		return Decision{Eligibility: model.Ineligible}
	}
	price := m
	if s.direction == model.DirectionDown {
		price = -m
	}
	return Decision{
		Eligibility: model.Eligible,
		Price:       model.Float(price),
		Cost:        model.Float(cost),
	}
}
