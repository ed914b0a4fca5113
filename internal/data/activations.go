package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"afrr-backtest/internal/model"
)

// EURToDKK is the fixed exchange rate applied to activation prices.
const EURToDKK = 7.45

// Activation dataset columns.
const (
	colTime      = "ActivationTime"
	colArea      = "PriceArea"
	colDownPrice = "aFRR_DownActivatedPriceEUR"
	colUpPrice   = "aFRR_UpActivatedPriceEUR"
)

var activationTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// LoadActivationsCSV reads the pre-downloaded activation price dataset.
func LoadActivationsCSV(path string) ([]model.ActivationSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activation dataset: %w", err)
	}
	defer f.Close()
	samples, err := ReadActivations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// ReadActivations parses activation samples from CSV with a header row. Prices are
// converted from EUR to DKK; an empty price cell stays unpriced. Samples are
// returned in ascending time order.
func ReadActivations(r io.Reader) ([]model.ActivationSample, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("activation dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{colTime, colArea, colDownPrice, colUpPrice} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("activation dataset is missing column %q", col)
		}
	}

	var out []model.ActivationSample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := parseActivationTime(rec[idx[colTime]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		up, err := parseEUR(rec[idx[colUpPrice]])
		if err != nil {
			return nil, fmt.Errorf("line %d: up price: %w", line, err)
		}
		down, err := parseEUR(rec[idx[colDownPrice]])
		if err != nil {
			return nil, fmt.Errorf("line %d: down price: %w", line, err)
		}
		out = append(out, model.ActivationSample{
			TimeUTC:   ts,
			Area:      strings.TrimSpace(rec[idx[colArea]]),
			UpPrice:   up,
			DownPrice: down,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeUTC.Before(out[j].TimeUTC) })
	return out, nil
}

func parseActivationTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range activationTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid activation time %q", s)
}

func parseEUR(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return model.Float(v * EURToDKK), nil
}

// GroupByArea splits samples into area-keyed slices, preserving order.
func GroupByArea(samples []model.ActivationSample) map[string][]model.ActivationSample {
	out := map[string][]model.ActivationSample{}
	for _, s := range samples {
		out[s.Area] = append(out[s.Area], s)
	}
	return out
}

// Coverage returns the first and last sample time, or false for an empty set.
func Coverage(samples []model.ActivationSample) (first, last time.Time, ok bool) {
	for i, s := range samples {
		if i == 0 || s.TimeUTC.Before(first) {
			first = s.TimeUTC
		}
		if i == 0 || s.TimeUTC.After(last) {
			last = s.TimeUTC
		}
	}
	return first, last, len(samples) > 0
}
