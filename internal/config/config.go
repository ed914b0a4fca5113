package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/model"
)

// Scenario defaults.
const (
	DefaultGridTariff    = 120.0
	DefaultDelaySeconds  = 30.0
	DefaultRampUpSeconds = 120.0
)

// Config is the on-disk scenario shape (YAML). The API accepts the same shape as JSON.
type Config struct {
	Area             string            `yaml:"area" json:"area"`
	StartDate        string            `yaml:"start_date" json:"start_date"`
	EndDate          string            `yaml:"end_date" json:"end_date"`
	CustomerCategory string            `yaml:"customer_category" json:"customer_category"`
	Tariffs          model.TariffRates `yaml:"tariffs" json:"tariffs"`
	Regulation       RegulationConfig  `yaml:"regulation" json:"regulation"`
	// SampleInterval is the native resolution of the activation dataset (Go duration).
	SampleInterval string `yaml:"sample_interval" json:"sample_interval"`

	// Optional: load the weekly bid table from a separate YAML file. Relative
	// paths are resolved against the scenario file's directory.
	BidProfileFile string `yaml:"bid_profile_file" json:"-"`
	// BidFillKW fills every cell before the file is applied.
	BidFillKW *float64 `yaml:"bid_fill_kw" json:"bid_fill_kw,omitempty"`
}

type RegulationConfig struct {
	Direction         string        `yaml:"direction" json:"direction"`
	MarginalPrice     OptionalPrice `yaml:"marginal_price" json:"marginal_price"`
	ActivationPremium float64       `yaml:"activation_premium" json:"activation_premium"`
	DelaySeconds      float64       `yaml:"delay_seconds" json:"delay_seconds"`
	RampUpSeconds     float64       `yaml:"ramp_up_seconds" json:"ramp_up_seconds"`
	CapacityFloor     float64       `yaml:"capacity_floor" json:"capacity_floor"`
}

// Default returns a scenario with the defaults applied; decoding on top of it
// keeps them for absent keys.
func Default() Config {
	return Config{
		CustomerCategory: string(model.CategoryFlat),
		Tariffs:          model.TariffRates{Grid: DefaultGridTariff},
		Regulation: RegulationConfig{
			DelaySeconds:  DefaultDelaySeconds,
			RampUpSeconds: DefaultRampUpSeconds,
		},
		SampleInterval: backtest.DefaultSampleInterval.String(),
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the scenario and resolves the bid profile path, but does
// not validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if c.BidProfileFile != "" && !filepath.IsAbs(c.BidProfileFile) {
		// Prefer the scenario directory, fall back to the path relative to cwd.
		cand := filepath.Join(filepath.Dir(path), c.BidProfileFile)
		if _, err := os.Stat(cand); err == nil {
			c.BidProfileFile = cand
		}
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	_, err := c.Params()
	return err
}

// Params converts the scenario into validated engine parameters.
func (c *Config) Params() (backtest.Params, error) {
	var p backtest.Params
	start, err := parseDate("start_date", c.StartDate)
	if err != nil {
		return p, err
	}
	end, err := parseDate("end_date", c.EndDate)
	if err != nil {
		return p, err
	}
	category, err := model.ParseCategory(c.CustomerCategory)
	if err != nil {
		return p, err
	}
	direction, err := model.ParseDirection(c.Regulation.Direction)
	if err != nil {
		return p, err
	}
	interval := backtest.DefaultSampleInterval
	if strings.TrimSpace(c.SampleInterval) != "" {
		interval, err = time.ParseDuration(c.SampleInterval)
		if err != nil {
			return p, fmt.Errorf("%w: sample_interval: %v", model.ErrInvalidConfig, err)
		}
	}
	for name, v := range map[string]float64{
		"tariffs.low":  c.Tariffs.Low,
		"tariffs.high": c.Tariffs.High,
		"tariffs.peak": c.Tariffs.Peak,
		"tariffs.grid": c.Tariffs.Grid,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return p, fmt.Errorf("%w: %s must be a finite number", model.ErrInvalidConfig, name)
		}
	}
	if c.BidFillKW != nil && (*c.BidFillKW < 0 || math.IsNaN(*c.BidFillKW)) {
		return p, fmt.Errorf("%w: bid_fill_kw must be >= 0", model.ErrInvalidConfig)
	}

	p = backtest.Params{
		Area:     strings.ToUpper(strings.TrimSpace(c.Area)),
		Range:    model.DateRange{Start: start, End: end},
		Category: category,
		Rates:    c.Tariffs,
		Regulation: model.RegulationConfig{
			Direction:         direction,
			MarginalPrice:     c.Regulation.MarginalPrice.Value,
			ActivationPremium: c.Regulation.ActivationPremium,
			Delay:             seconds(c.Regulation.DelaySeconds),
			RampUp:            seconds(c.Regulation.RampUpSeconds),
			CapacityFloor:     c.Regulation.CapacityFloor,
		},
		SampleInterval: interval,
	}
	if err := p.Validate(); err != nil {
		return backtest.Params{}, err
	}
	return p, nil
}

// ParamsFor is Params with the scenario's area replaced, for runs that sweep
// every price area. The scenario itself may leave area empty.
func (c *Config) ParamsFor(area string) (backtest.Params, error) {
	cp := *c
	cp.Area = area
	return cp.Params()
}

// BidProfile builds the scenario's weekly bid table with the given day columns.
func (c *Config) BidProfile(days [7]string) (*bidprofile.Profile, error) {
	p := bidprofile.New(days)
	if c.BidFillKW != nil {
		if err := p.Fill(*c.BidFillKW); err != nil {
			return nil, err
		}
	}
	if c.BidProfileFile != "" {
		t, err := bidprofile.ReadTableFile(c.BidProfileFile)
		if err != nil {
			return nil, err
		}
		if err := p.Overlay(t); err != nil {
			return nil, fmt.Errorf("bid profile %s: %w", c.BidProfileFile, err)
		}
	}
	return p, nil
}

func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", model.ErrInvalidConfig, field)
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", model.ErrInvalidConfig, field)
	}
	return t, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// OptionalPrice is a price that may be absent. It decodes from a number, a
// numeric string, null, or "none".
type OptionalPrice struct {
	Value *float64
}

func (o *OptionalPrice) set(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null", "~":
		o.Value = nil
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: marginal_price must be a number or \"none\", got %q", model.ErrInvalidConfig, s)
	}
	o.Value = &v
	return nil
}

func (o *OptionalPrice) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: marginal_price must be a scalar", model.ErrInvalidConfig)
	}
	return o.set(n.Value)
}

func (o OptionalPrice) MarshalYAML() (any, error) {
	if o.Value == nil {
		return "none", nil
	}
	return *o.Value, nil
}

func (o *OptionalPrice) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		o.Value = nil
		return nil
	case float64:
		o.Value = &x
		return nil
	case string:
		return o.set(x)
	}
	return fmt.Errorf("%w: marginal_price must be a number or \"none\"", model.ErrInvalidConfig)
}

func (o OptionalPrice) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
