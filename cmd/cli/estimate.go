package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"afrr-backtest/internal/analysis"
	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/logger"
)

var outDir string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate revenue for one scenario and write the ledgers as CSV",
	Example: `  afrr estimate --config examples/scenario.yaml --activations data/afrr_activations.csv
  afrr estimate -c examples/scenario.yaml -a data/afrr_activations.csv --out-dir results`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&outDir, "out-dir", "o", "results", "directory for capacity.csv and activation.csv")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	profile, err := cfg.BidProfile(e.cal.WeekdayNames())
	if err != nil {
		return err
	}
	path, err := e.datasetPath()
	if err != nil {
		return err
	}
	acts, err := data.LoadActivationsCSV(path)
	if err != nil {
		return err
	}

	spot, capacity, err := data.FetchPrices(ctx, e.feed, params.Area, params.Range)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	res, err := backtest.New(e.cal, logger.Component(e.log, "engine")).Run(backtest.Inputs{
		Activations: acts,
		Spot:        spot,
		Capacity:    capacity,
		Profile:     profile,
	}, params)
	if err != nil {
		return err
	}

	// ensure output dir exists
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	capPath := filepath.Join(outDir, "capacity.csv")
	actPath := filepath.Join(outDir, "activation.csv")
	if err := backtest.WriteLedgerFiles(res, capPath, actPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, res)
	fmt.Fprintf(out, "\nWrote %d rows to %s\n", len(res.Capacity), capPath)
	fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Activation), actPath)
	return nil
}

func printSummary(w io.Writer, res *backtest.Result) {
	p := res.Params
	cs, as := res.CapacitySummary, res.ActivationSummary
	pot := analysis.ComputePotential(res)

	fmt.Fprintf(w, "Area %s  %s .. %s  direction=%s  category=%s  days=%d\n",
		p.Area, p.Range.Start.Format("2006-01-02"), p.Range.End.Format("2006-01-02"),
		p.Regulation.Direction, p.Category, res.Days)
	fmt.Fprintf(w, "Marginal price: %s  premium: %.2f  delay: %s  ramp-up: %s\n\n",
		fmtOpt(p.Regulation.MarginalPrice), p.Regulation.ActivationPremium, p.Regulation.Delay, p.Regulation.RampUp)

	fmt.Fprintln(w, "Capacity (disposability)")
	fmt.Fprintf(w, "  total DKK        %12.2f\n", cs.Total)
	fmt.Fprintf(w, "  annualized DKK   %12s\n", fmtOpt(cs.Annualized))
	fmt.Fprintf(w, "  mean per hour    %12.2f\n", cs.MeanPerHour)
	fmt.Fprintf(w, "  hours counted    %12d of %d bid (%d unpriced)\n", cs.HoursCounted, cs.HoursBid, cs.HoursUnpriced)

	fmt.Fprintln(w, "Activation")
	fmt.Fprintf(w, "  revenue DKK      %12.2f  (annualized %s)\n", as.Revenue, fmtOpt(as.AnnualizedRevenue))
	fmt.Fprintf(w, "  cost DKK         %12.2f  (annualized %s)\n", as.Cost, fmtOpt(as.AnnualizedCost))
	fmt.Fprintf(w, "  net DKK          %12.2f  (annualized %s)\n", as.Net, fmtOpt(as.AnnualizedNet))
	fmt.Fprintf(w, "  energy MWh       %12.3f\n", as.EnergyMWh)
	fmt.Fprintf(w, "  samples          %12d  eligible=%d unpriced=%d (%.1f%% of priced)\n",
		as.Samples, as.EligibleSamples, as.UnpricedSamples, pot.EligibleShare*100)

	fmt.Fprintln(w, "Prices")
	fmt.Fprintf(w, "  composite  mean %.2f  p05 %.2f  p95 %.2f  (%d hours, %d unpriced)\n",
		pot.Composite.Mean, pot.Composite.P05, pot.Composite.P95, pot.Composite.Count, pot.Composite.Missing)
	fmt.Fprintf(w, "  activation mean %.2f  p05 %.2f  p95 %.2f\n",
		pot.Activation.Mean, pot.Activation.P05, pot.Activation.P95)
}
