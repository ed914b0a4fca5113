package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"afrr-backtest/internal/analysis"
	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/logger"
)

var rankAreas []string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run the scenario for every price area in the dataset and rank by annualized net value",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringSliceVar(&rankAreas, "areas", nil, "restrict to these price areas (default: all in the dataset)")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup()
	if err != nil {
		return err
	}
	// area is swept below, so the scenario may omit it
	cfg, err := config.LoadUnchecked(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	areas := data.Areas(path, acts).IDs()
	if len(rankAreas) > 0 {
		areas = areas[:0]
		for _, a := range rankAreas {
			areas = append(areas, strings.ToUpper(strings.TrimSpace(a)))
		}
	}
	if len(areas) == 0 {
		return fmt.Errorf("no price areas in %s", path)
	}

	engine := backtest.New(e.cal, logger.Component(e.log, "engine"))
	results := map[string]*backtest.Result{}
	for _, area := range areas {
		params, err := cfg.ParamsFor(area)
		if err != nil {
			return err
		}
		spot, capacity, err := data.FetchPrices(ctx, e.feed, area, params.Range)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Warn().Err(err).Str("area", area).Msg("skipping area")
			continue
		}
		res, err := engine.Run(backtest.Inputs{
			// the engine keeps the area's samples and those without an area
			Activations: acts,
			Spot:        spot,
			Capacity:    capacity,
			Profile:     profile,
		}, params)
		if err != nil {
			return err
		}
		results[area] = res
	}

	ranked := analysis.RankAreas(results)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-6s %-20s %-5s %-12s %-12s %-14s %-10s\n", "rank", "area", "name", "days", "capacity", "act. net", "annualized", "p95-p05")
	for i, r := range ranked {
		fmt.Fprintf(out,
			"%-4d %-6s %-20s %-5d %-12.2f %-12.2f %-14s %-10.2f\n",
			i+1,
			r.Area,
			data.AreaName(r.Area),
			r.Days,
			r.CapacityTotal,
			r.ActivationNet,
			fmtOpt(r.AnnualizedNet),
			r.Potential.Activation.SpreadP95P05,
		)
	}
	return nil
}
