package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"afrr-backtest/internal/metrics"
	"afrr-backtest/internal/model"
)

const (
	DefaultBaseURL = "https://api.energidataservice.dk"

	DatasetSpot     = "Elspotprices"
	DatasetCapacity = "AfrrReservesNordic"

	// feedTimeLayout is the zone-less timestamp format of the feed.
	feedTimeLayout = "2006-01-02T15:04:05"
)

// ClientConfig configures a FeedClient.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// CacheTTL of 0 disables response caching.
	CacheTTL time.Duration
	// Location interprets the feed's local timestamps.
	Location *time.Location
}

// FeedClient fetches hourly spot and aFRR capacity prices from Energi Data Service.
type FeedClient struct {
	BaseURL string
	Client  *http.Client

	loc      *time.Location
	log      zerolog.Logger
	metrics  *metrics.Recorder
	spot     *ResponseCache[[]model.SpotRecord]
	capacity *ResponseCache[[]model.CapacityPriceRecord]
}

func NewFeedClient(cfg ClientConfig, log zerolog.Logger, rec *metrics.Recorder) *FeedClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	c := &FeedClient{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Client:  &http.Client{Timeout: cfg.Timeout},
		loc:     cfg.Location,
		log:     log,
		metrics: rec,
	}
	if cfg.CacheTTL > 0 {
		c.spot = NewResponseCache[[]model.SpotRecord](cfg.CacheTTL)
		c.capacity = NewResponseCache[[]model.CapacityPriceRecord](cfg.CacheTTL)
	}
	return c
}

// FeedError represents a non-success response from the feed.
type FeedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *FeedError) Error() string {
	return e.Message
}

// IsFeedError reports whether err is, or wraps, a feed failure.
func IsFeedError(err error) bool {
	var fe *FeedError
	return errors.As(err, &fe)
}

type spotRow struct {
	HourUTC      string   `json:"HourUTC"`
	HourDK       string   `json:"HourDK"`
	PriceArea    string   `json:"PriceArea"`
	SpotPriceDKK *float64 `json:"SpotPriceDKK"`
}

type capacityRow struct {
	TimeUTC      string   `json:"TimeUTC"`
	TimeDK       string   `json:"TimeDK"`
	PriceArea    string   `json:"PriceArea"`
	UpPriceDKK   *float64 `json:"UpPriceDKK"`
	DownPriceDKK *float64 `json:"DownPriceDKK"`
}

type feedResponse[T any] struct {
	Total   int `json:"total"`
	Records []T `json:"records"`
}

// Spot returns hourly spot prices for local dates [start, end], ascending.
func (c *FeedClient) Spot(ctx context.Context, area string, start, end time.Time) ([]model.SpotRecord, error) {
	v, hit, err := c.spot.Do(CacheKey(DatasetSpot, area, start, end), func() ([]model.SpotRecord, error) {
		rows, err := query[spotRow](ctx, c, DatasetSpot, area, start, end)
		if err != nil {
			return nil, err
		}
		out := make([]model.SpotRecord, 0, len(rows))
		for _, r := range rows {
			utc, local, err := c.parseTimes(r.HourUTC, r.HourDK)
			if err != nil {
				return nil, err
			}
			out = append(out, model.SpotRecord{HourUTC: utc, HourLocal: local, Area: r.PriceArea, SpotPrice: r.SpotPriceDKK})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourUTC.Before(out[j].HourUTC) })
		return out, nil
	})
	c.cacheLookup(DatasetSpot, area, hit)
	return v, err
}

// Capacity returns hourly aFRR capacity prices for local dates [start, end], ascending.
func (c *FeedClient) Capacity(ctx context.Context, area string, start, end time.Time) ([]model.CapacityPriceRecord, error) {
	v, hit, err := c.capacity.Do(CacheKey(DatasetCapacity, area, start, end), func() ([]model.CapacityPriceRecord, error) {
		rows, err := query[capacityRow](ctx, c, DatasetCapacity, area, start, end)
		if err != nil {
			return nil, err
		}
		out := make([]model.CapacityPriceRecord, 0, len(rows))
		for _, r := range rows {
			utc, local, err := c.parseTimes(r.TimeUTC, r.TimeDK)
			if err != nil {
				return nil, err
			}
			out = append(out, model.CapacityPriceRecord{
				HourUTC:   utc,
				HourLocal: local,
				Area:      r.PriceArea,
				UpPrice:   r.UpPriceDKK,
				DownPrice: r.DownPriceDKK,
			})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourUTC.Before(out[j].HourUTC) })
		return out, nil
	})
	c.cacheLookup(DatasetCapacity, area, hit)
	return v, err
}

func (c *FeedClient) cacheLookup(dataset, area string, hit bool) {
	if hit {
		c.log.Debug().Str("dataset", dataset).Str("area", area).Msg("feed cache hit")
	}
	c.metrics.CacheLookup(dataset, hit)
}

func (c *FeedClient) parseTimes(utc, local string) (time.Time, time.Time, error) {
	u, err := time.ParseInLocation(feedTimeLayout, utc, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse feed timestamp %q: %w", utc, err)
	}
	l, err := time.ParseInLocation(feedTimeLayout, local, c.loc)
	if err != nil {
		// the local column is informational, derive it when malformed
		l = u.In(c.loc)
	}
	return u, l, nil
}

// query fetches one dataset for area over local dates [start, end]; the feed's
// end bound is exclusive so end+1 day is requested.
func query[T any](ctx context.Context, c *FeedClient, dataset, area string, start, end time.Time) ([]T, error) {
	if strings.TrimSpace(area) == "" {
		return nil, fmt.Errorf("%w: price area is required", model.ErrInvalidConfig)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end date are required", model.ErrInvalidConfig)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date must not be after end date", model.ErrInvalidConfig)
	}

	u, err := url.Parse(c.BaseURL + "/dataset/" + dataset)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("filter", fmt.Sprintf(`{"PriceArea":[%q]}`, area))
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.AddDate(0, 0, 1).Format(time.DateOnly))
	q.Set("limit", "0")
	u.RawQuery = q.Encode()

	c.log.Debug().Str("dataset", dataset).Str("area", area).
		Str("start", q.Get("start")).Str("end", q.Get("end")).Msg("feed request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(began)
	if err != nil {
		c.log.Warn().Err(err).Str("dataset", dataset).Dur("duration", duration).Msg("feed request failed")
		c.metrics.Fetch(dataset, duration, err)
		return nil, &FeedError{Code: "REQUEST_FAILED", Message: fmt.Sprintf("%s request failed: %v", dataset, err)}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("dataset", dataset).Int("status", resp.StatusCode).Dur("duration", duration).Msg("feed response")

	if resp.StatusCode != http.StatusOK {
		fe := &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("%s returned status %d: %s", dataset, resp.StatusCode, resp.Status),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			fe.Code = "RATE_LIMIT_EXCEEDED"
			fe.Message = fmt.Sprintf("%s rate limit exceeded, retry after %s", dataset, resp.Header.Get("Retry-After"))
		}
		c.log.Warn().Str("dataset", dataset).Int("status", resp.StatusCode).Msg(fe.Message)
		c.metrics.Fetch(dataset, duration, fe)
		return nil, fe
	}

	var body feedResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn().Err(err).Str("dataset", dataset).Msg("feed decode failed")
		fe := &FeedError{StatusCode: resp.StatusCode, Code: "DECODE_ERROR", Message: fmt.Sprintf("failed to decode %s response: %v", dataset, err)}
		c.metrics.Fetch(dataset, duration, fe)
		return nil, fe
	}
	c.metrics.Fetch(dataset, duration, nil)
	c.log.Debug().Str("dataset", dataset).Int("records", len(body.Records)).Msg("feed records received")
	return body.Records, nil
}
