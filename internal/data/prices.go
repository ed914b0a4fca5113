package data

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"afrr-backtest/internal/model"
)

// PriceFeed is the source of hourly spot and capacity prices. FeedClient
// implements it; tests substitute fixed series.
type PriceFeed interface {
	Spot(ctx context.Context, area string, start, end time.Time) ([]model.SpotRecord, error)
	Capacity(ctx context.Context, area string, start, end time.Time) ([]model.CapacityPriceRecord, error)
}

// FetchPrices queries both feeds for the area and local date range concurrently.
// The first failure cancels the other request.
func FetchPrices(ctx context.Context, feed PriceFeed, area string, rng model.DateRange) ([]model.SpotRecord, []model.CapacityPriceRecord, error) {
	if err := rng.Validate(); err != nil {
		return nil, nil, err
	}
	var (
		spot     []model.SpotRecord
		capacity []model.CapacityPriceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spot, err = feed.Spot(gctx, area, rng.Start, rng.End)
		return err
	})
	g.Go(func() error {
		var err error
		capacity, err = feed.Capacity(gctx, area, rng.Start, rng.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return spot, capacity, nil
}
