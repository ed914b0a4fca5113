package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"afrr-backtest/internal/analysis"
	"afrr-backtest/internal/api/models"
	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/metrics"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/session"
)

// EstimateHandler handles estimate-related requests
type EstimateHandler struct {
	engine      *backtest.Engine
	feed        data.PriceFeed
	session     *session.Session
	activations []model.ActivationSample
	metrics     *metrics.Recorder
	log         zerolog.Logger
}

// NewEstimateHandler creates a new estimate handler over a loaded activation dataset
func NewEstimateHandler(engine *backtest.Engine, feed data.PriceFeed, sess *session.Session, activations []model.ActivationSample, rec *metrics.Recorder, log zerolog.Logger) *EstimateHandler {
	return &EstimateHandler{
		engine:      engine,
		feed:        feed,
		session:     sess,
		activations: activations,
		metrics:     rec,
		log:         log,
	}
}

// RunEstimate handles POST /api/v1/estimate
func (h *EstimateHandler) RunEstimate(c *gin.Context) {
	req := models.EstimateRequest{Config: config.Default()}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Options.LimitRows < 0 {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "options.limit_rows must be >= 0", nil)
		return
	}

	params, err := req.Params()
	if err != nil {
		writeError(c, err)
		return
	}
	began := time.Now()
	entry, err := h.compute(c.Request.Context(), params, req.BidFillKW)
	h.metrics.Estimate(time.Since(began), err)
	if err != nil {
		h.log.Warn().Err(err).Str("area", params.Area).Msg("estimate failed")
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.buildResponse(entry, req.Options))
}

// compute fetches the feeds, then applies the optional bulk fill and runs the
// pipeline against a snapshot of the bid profile. A failed fetch leaves the
// profile and the previous result untouched; edits made during the run leave
// the stored result stale.
func (h *EstimateHandler) compute(ctx context.Context, params backtest.Params, fill *float64) (*session.Entry, error) {
	spot, capacity, err := data.FetchPrices(ctx, h.feed, params.Area, params.Range)
	if err != nil {
		return nil, err
	}
	if fill != nil {
		if err := h.session.Fill(*fill); err != nil {
			return nil, err
		}
	}
	profile, version := h.session.Snapshot()
	res, err := h.engine.Run(backtest.Inputs{
		Activations: h.activations,
		Spot:        spot,
		Capacity:    capacity,
		Profile:     profile,
	}, params)
	if err != nil {
		return nil, err
	}
	return h.session.Store(params, profile, version, res), nil
}

// GetEstimate handles GET /api/v1/estimate/:id
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
	entry, err := h.session.Result(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.buildResponse(entry, models.EstimateOptions{}))
}

// GetLedger handles GET /api/v1/estimate/:id/ledger
func (h *EstimateHandler) GetLedger(c *gin.Context) {
	var q models.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	if q.Limit < 0 || q.Offset < 0 {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "limit and offset must be >= 0", nil)
		return
	}
	table := strings.ToLower(q.Table)
	if table != "" && table != "capacity" && table != "activation" {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "table must be capacity or activation", nil)
		return
	}

	entry, err := h.session.Result(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	res := entry.Result

	resp := models.LedgerResponse{
		ID:              entry.ID,
		CapacityTotal:   len(res.Capacity),
		ActivationTotal: len(res.Activation),
	}
	if table != "activation" {
		resp.Ledger.Capacity = convertCapacity(page(res.Capacity, q.Offset, q.Limit))
	}
	if table != "capacity" {
		resp.Ledger.Activation = convertActivation(page(res.Activation, q.Offset, q.Limit))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EstimateHandler) buildResponse(entry *session.Entry, opts models.EstimateOptions) models.EstimateResponse {
	res := entry.Result
	response := models.EstimateResponse{
		ID:         entry.ID,
		Status:     "completed",
		ComputedAt: entry.ComputedAt,
		Config:     appliedConfig(res.Params),
		Summary:    buildSummary(res),
	}

	if opts.IncludeLedger {
		response.Ledger = &models.Ledger{
			Capacity:   convertCapacity(page(res.Capacity, 0, opts.LimitRows)),
			Activation: convertActivation(page(res.Activation, 0, opts.LimitRows)),
		}
	}

	return response
}

func appliedConfig(p backtest.Params) models.AppliedConfig {
	r := p.Regulation
	return models.AppliedConfig{
		Area:              p.Area,
		StartDate:         p.Range.Start.Format(time.DateOnly),
		EndDate:           p.Range.End.Format(time.DateOnly),
		CustomerCategory:  string(p.Category),
		Tariffs:           p.Rates,
		Direction:         string(r.Direction),
		MarginalPrice:     r.MarginalPrice,
		ActivationPremium: r.ActivationPremium,
		DelaySeconds:      r.Delay.Seconds(),
		RampUpSeconds:     r.RampUp.Seconds(),
		CapacityFloor:     r.CapacityFloor,
		SampleInterval:    p.SampleInterval.String(),
	}
}

func buildSummary(res *backtest.Result) models.EstimateSummary {
	cs, as := res.CapacitySummary, res.ActivationSummary
	pot := analysis.ComputePotential(res)
	return models.EstimateSummary{
		Window: window(res),
		Days:   res.Days,
		Capacity: models.CapacitySummary{
			Total:         cs.Total,
			Annualized:    cs.Annualized,
			MeanPerHour:   cs.MeanPerHour,
			HoursCounted:  cs.HoursCounted,
			HoursBid:      cs.HoursBid,
			HoursUnpriced: cs.HoursUnpriced,
		},
		Activation: models.ActivationSummary{
			Revenue:           as.Revenue,
			Cost:              as.Cost,
			Net:               as.Net,
			EnergyMWh:         as.EnergyMWh,
			AnnualizedRevenue: as.AnnualizedRevenue,
			AnnualizedCost:    as.AnnualizedCost,
			AnnualizedNet:     as.AnnualizedNet,
			Samples:           as.Samples,
			EligibleSamples:   as.EligibleSamples,
			UnpricedSamples:   as.UnpricedSamples,
		},
		Potential: models.PotentialSummary{
			Composite:     convertStats(pot.Composite),
			Capacity:      convertStats(pot.Capacity),
			Activation:    convertStats(pot.Activation),
			EligibleShare: pot.EligibleShare,
		},
		AnnualizedTotal: backtest.Annualize(cs.Total+as.Net, res.Days),
	}
}

// window spans the hours and samples the result covers, in local time.
func window(res *backtest.Result) models.TimeWindow {
	var w models.TimeWindow
	extend := func(start, end time.Time) {
		if w.Start.IsZero() || start.Before(w.Start) {
			w.Start = start
		}
		if end.After(w.End) {
			w.End = end
		}
	}
	if n := len(res.Capacity); n > 0 {
		extend(res.Capacity[0].HourLocal, res.Capacity[n-1].HourLocal.Add(time.Hour))
	}
	if n := len(res.Activation); n > 0 {
		extend(res.Activation[0].TimeLocal, res.Activation[n-1].TimeLocal.Add(res.Params.SampleInterval))
	}
	return w
}

func convertStats(s analysis.PriceStats) models.PriceStats {
	return models.PriceStats{
		Count:        s.Count,
		Missing:      s.Missing,
		Min:          s.Min,
		Max:          s.Max,
		Mean:         s.Mean,
		P05:          s.P05,
		P95:          s.P95,
		SpreadP95P05: s.SpreadP95P05,
	}
}

func convertCapacity(rows []backtest.CapacityRecord) []models.CapacityRow {
	result := make([]models.CapacityRow, len(rows))
	for i, row := range rows {
		result[i] = models.CapacityRow{
			HourUTC:   row.HourUTC,
			HourLocal: row.HourLocal,
			Interval:  row.Interval,
			Weekday:   row.Weekday,
			UpPrice:   row.UpPrice,
			DownPrice: row.DownPrice,
			Composite: row.Composite,
			BidKW:     row.BidKW,
			Gate:      string(row.Gate),
			Revenue:   row.Revenue,
		}
	}
	return result
}

func convertActivation(rows []backtest.ActivationRecord) []models.ActivationRow {
	result := make([]models.ActivationRow, len(rows))
	for i, row := range rows {
		result[i] = models.ActivationRow{
			TimeUTC:         row.TimeUTC,
			TimeLocal:       row.TimeLocal,
			UpPrice:         row.UpPrice,
			DownPrice:       row.DownPrice,
			Composite:       row.Composite,
			Eligibility:     string(row.Eligibility),
			ActivationPrice: row.ActivationPrice,
			DeviationCost:   row.DeviationCost,
			BidKW:           row.BidKW,
			RunLength:       row.RunLength,
			Fraction:        row.Fraction,
			Revenue:         row.Revenue,
			Cost:            row.Cost,
			PowerMW:         row.PowerMW,
		}
	}
	return result
}

// page returns rows[offset:offset+limit]; limit 0 means the rest.
func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
