// Package bidprofile holds the weekly 24x7 table of committed bid power.
package bidprofile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCell    = errors.New("unknown bid profile cell")
	ErrNegativeVolume = errors.New("bid volume must be a non-negative number of kW")
)

// Intervals are the row labels "00-01" ... "23-00".
var Intervals = func() [24]string {
	var out [24]string
	for h := 0; h < 24; h++ {
		out[h] = IntervalLabel(h)
	}
	return out
}()

// IntervalLabel formats the row label for a local hour.
func IntervalLabel(hour int) string {
	return fmt.Sprintf("%02d-%02d", hour, (hour+1)%24)
}

// Profile is the editable weekly bid table in kW. All 24 rows and 7 day columns
// always exist; unset cells are 0. Values are magnitudes, the regulation direction
// is configured separately. Safe for concurrent use.
type Profile struct {
	mu     sync.RWMutex
	days   [7]string
	values [24][7]float64
}

// New returns an all-zero profile with the given day columns, Monday first.
func New(days [7]string) *Profile {
	return &Profile{days: days}
}

func (p *Profile) Days() [7]string { return p.days }

func (p *Profile) dayIndex(day string) (int, bool) {
	for i, d := range p.days {
		if d == day {
			return i, true
		}
	}
	return 0, false
}

func intervalIndex(interval string) (int, bool) {
	for i, l := range Intervals {
		if l == interval {
			return i, true
		}
	}
	return 0, false
}

func validVolume(kw float64) error {
	if kw < 0 || math.IsNaN(kw) || math.IsInf(kw, 0) {
		return fmt.Errorf("%w: %v", ErrNegativeVolume, kw)
	}
	return nil
}

// Set edits one cell.
func (p *Profile) Set(interval, day string, kw float64) error {
	if err := validVolume(kw); err != nil {
		return err
	}
	h, ok := intervalIndex(interval)
	if !ok {
		return fmt.Errorf("%w: interval %q", ErrUnknownCell, interval)
	}
	d, ok := p.dayIndex(day)
	if !ok {
		return fmt.Errorf("%w: day %q", ErrUnknownCell, day)
	}
	p.mu.Lock()
	p.values[h][d] = kw
	p.mu.Unlock()
	return nil
}

// Fill writes kw into every cell. Fill(0) clears the table.
func (p *Profile) Fill(kw float64) error {
	if err := validVolume(kw); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for h := range p.values {
		for d := range p.values[h] {
			p.values[h][d] = kw
		}
	}
	return nil
}

// Lookup returns the bid for a cell. A cell that does not exist means
// "not bidding" and yields 0.
func (p *Profile) Lookup(interval, day string) float64 {
	h, ok := intervalIndex(interval)
	if !ok {
		return 0
	}
	d, ok := p.dayIndex(day)
	if !ok {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[h][d]
}

// Snapshot returns an independent copy, used to keep one computation pass
// read-consistent while the session profile stays editable.
func (p *Profile) Snapshot() *Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &Profile{days: p.days, values: p.values}
}

// Equal reports whether both profiles hold the same cells.
func (p *Profile) Equal(o *Profile) bool {
	if p == nil || o == nil {
		return p == o
	}
	a, b := p.Snapshot(), o.Snapshot()
	return a.days == b.days && a.values == b.values
}

// Table is the row-oriented form used in files and the API.
type Table struct {
	Days []string `json:"days" yaml:"days"`
	Rows []Row    `json:"rows" yaml:"rows"`
}

// Row is one hour interval; KW follows the order of Table.Days.
type Row struct {
	Interval string    `json:"interval" yaml:"interval"`
	KW       []float64 `json:"kw" yaml:"kw"`
}

// Table renders all 24 rows.
func (p *Profile) Table() Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t := Table{Days: p.days[:], Rows: make([]Row, 0, 24)}
	for h, label := range Intervals {
		kw := make([]float64, 7)
		copy(kw, p.values[h][:])
		t.Rows = append(t.Rows, Row{Interval: label, KW: kw})
	}
	return t
}

// Replace overwrites the profile from a table. Rows or cells the table omits
// become 0. The profile is left untouched when the table is invalid.
func (p *Profile) Replace(t Table) error {
	return p.apply(t, false)
}

// Overlay writes only the cells the table names and keeps the rest.
func (p *Profile) Overlay(t Table) error {
	return p.apply(t, true)
}

func (p *Profile) apply(t Table, keep bool) error {
	days := t.Days
	if len(days) == 0 {
		days = p.days[:]
	}
	cols := make([]int, len(days))
	for i, name := range days {
		d, ok := p.dayIndex(name)
		if !ok {
			return fmt.Errorf("%w: day %q", ErrUnknownCell, name)
		}
		cols[i] = d
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var next [24][7]float64
	if keep {
		next = p.values
	}
	for _, r := range t.Rows {
		h, ok := intervalIndex(r.Interval)
		if !ok {
			return fmt.Errorf("%w: interval %q", ErrUnknownCell, r.Interval)
		}
		if len(r.KW) > len(cols) {
			return fmt.Errorf("%w: interval %q has %d values for %d days", ErrUnknownCell, r.Interval, len(r.KW), len(cols))
		}
		for i, kw := range r.KW {
			if err := validVolume(kw); err != nil {
				return fmt.Errorf("interval %q day %q: %w", r.Interval, days[i], err)
			}
			next[h][cols[i]] = kw
		}
	}
	p.values = next
	return nil
}

// LoadFile reads a YAML table into a new profile with the given day columns.
func LoadFile(path string, days [7]string) (*Profile, error) {
	t, err := ReadTableFile(path)
	if err != nil {
		return nil, err
	}
	p := New(days)
	if err := p.Replace(t); err != nil {
		return nil, fmt.Errorf("bid profile %s: %w", path, err)
	}
	return p, nil
}

// ReadTableFile reads a YAML table without applying it.
func ReadTableFile(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, fmt.Errorf("parse bid profile %s: %w", path, err)
	}
	return t, nil
}
