package models

import "afrr-backtest/internal/config"

// EstimateRequest is the scenario body for POST /api/v1/estimate. It has the
// same shape as a scenario YAML file, plus request options.
type EstimateRequest struct {
	config.Config
	Options EstimateOptions `json:"options,omitempty"`
}

// EstimateOptions contains optional response parameters
type EstimateOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
	LimitRows     int  `json:"limit_rows,omitempty"`     // 0 = all ledger rows
}

// LedgerQuery is the query of GET /api/v1/estimate/:id/ledger
type LedgerQuery struct {
	Table  string `form:"table,omitempty"` // "capacity", "activation" or empty for both
	Limit  int    `form:"limit,omitempty"`
	Offset int    `form:"offset,omitempty"`
}

// CellRequest edits one bid profile cell
type CellRequest struct {
	Interval string   `json:"interval" binding:"required"` // "HH-HH"
	Day      string   `json:"day" binding:"required"`
	KW       *float64 `json:"kw" binding:"required"`
}

// FillRequest writes one value into every bid profile cell
type FillRequest struct {
	KW *float64 `json:"kw" binding:"required"`
}
