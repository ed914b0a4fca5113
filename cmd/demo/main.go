package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/logger"
	"afrr-backtest/internal/model"
)

// Demo:
// - Build one synthetic day of spot, capacity and per-minute activation prices
// - Bid a flat profile (or the scenario's, via --config)
// - Run the pipeline offline to show how the ramp and the gates fit together
func main() {
	cfgPath := flag.String("config", "", "Path to scenario YAML (optional; area and dates are ignored)")
	actPath := flag.String("activations", "", "Optional activation CSV; synthetic prices are used when empty")
	n := flag.Int("n", 15, "Number of activation rows to print")
	outDir := flag.String("out", "", "Optional directory to write capacity.csv and activation.csv")
	flag.Parse()

	log := logger.New(logger.Config{Level: "warn", Pretty: true, Out: os.Stderr})
	cal, err := calendar.NewDenmark()
	if err != nil {
		panic(err)
	}
	loc := cal.Location()
	day := time.Date(2025, 1, 7, 0, 0, 0, 0, loc)

	// Defaults (can be overridden via --config).
	cfg := config.Default()
	cfg.Area = "DK1"
	cfg.Tariffs = model.TariffRates{Low: 10, High: 20, Peak: 40, Grid: config.DefaultGridTariff}
	cfg.Regulation.Direction = string(model.DirectionUp)
	cfg.Regulation.MarginalPrice = config.OptionalPrice{Value: model.Float(600)}
	cfg.SampleInterval = time.Minute.String()
	cfg.BidFillKW = model.Float(1000)
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		cfg = *loaded
	}
	cfg.StartDate = day.Format(time.DateOnly)
	cfg.EndDate = cfg.StartDate

	params, err := cfg.Params()
	if err != nil {
		panic(err)
	}
	profile, err := cfg.BidProfile(cal.WeekdayNames())
	if err != nil {
		panic(err)
	}

	spot, capacity, acts := synthetic(day, params.Area, params.SampleInterval)
	if *actPath != "" {
		if acts, err = data.LoadActivationsCSV(*actPath); err != nil {
			panic(err)
		}
	}

	result, err := backtest.New(cal, log).Run(backtest.Inputs{
		Activations: acts,
		Spot:        spot,
		Capacity:    capacity,
		Profile:     profile,
	}, params)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Synthetic day %s in %s, direction=%s, marginal=%s, sample interval=%s\n",
		day.Format(time.DateOnly), params.Area, params.Regulation.Direction,
		fmtOpt(params.Regulation.MarginalPrice), params.SampleInterval)
	fmt.Printf("Bid 08-09 %s: %.0f kW\n\n", cal.WeekdayName(day), profile.Lookup(bidprofile.IntervalLabel(8), cal.WeekdayName(day)))

	shown := 0
	for _, r := range result.Activation {
		if r.Eligibility != model.Eligible || shown >= *n {
			continue
		}
		fmt.Printf(
			"%s up=%7.2f  comp=%7s  %-10s  run=%4d  frac=%.3f  rev=%8.3f  cost=%8.3f\n",
			r.TimeLocal.Format("2006-01-02 15:04"),
			deref(r.UpPrice),
			fmtOpt(r.Composite),
			string(r.Eligibility),
			r.RunLength,
			r.Fraction,
			r.Revenue,
			r.Cost,
		)
		shown++
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			panic(err)
		}
		capPath := filepath.Join(*outDir, "capacity.csv")
		actCSV := filepath.Join(*outDir, "activation.csv")
		if err := backtest.WriteLedgerFiles(result, capPath, actCSV); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s, %s\n", capPath, actCSV)
	}

	cs, as := result.CapacitySummary, result.ActivationSummary
	fmt.Printf("\nDone. Capacity=%.2f DKK (%d hours)  Activation net=%.2f DKK (%d of %d samples eligible)\n",
		cs.Total, cs.HoursCounted, as.Net, as.EligibleSamples, as.Samples)
}

// synthetic builds a winter weekday: spot follows a two-peak daily curve, the
// capacity price is flat and up-activation prices spike in the evening.
func synthetic(day time.Time, area string, interval time.Duration) ([]model.SpotRecord, []model.CapacityPriceRecord, []model.ActivationSample) {
	var spot []model.SpotRecord
	var capacity []model.CapacityPriceRecord
	for h := 0; h < 24; h++ {
		t := day.Add(time.Duration(h) * time.Hour)
		price := 400 + 250*math.Sin(float64(h-6)*math.Pi/12)
		spot = append(spot, model.SpotRecord{HourUTC: t.UTC(), HourLocal: t, Area: area, SpotPrice: model.Float(price)})
		capacity = append(capacity, model.CapacityPriceRecord{
			HourUTC: t.UTC(), HourLocal: t, Area: area,
			UpPrice:   model.Float(150),
			DownPrice: model.Float(90),
		})
	}

	var acts []model.ActivationSample
	for t := day; t.Before(day.AddDate(0, 0, 1)); t = t.Add(interval) {
		m := t.Sub(day).Minutes()
		up := 500 + 700*math.Max(0, math.Sin((m-17*60)*math.Pi/180))
		acts = append(acts, model.ActivationSample{
			TimeUTC:   t.UTC(),
			Area:      area,
			UpPrice:   model.Float(up),
			DownPrice: model.Float(-200),
		})
	}
	return spot, capacity, acts
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
