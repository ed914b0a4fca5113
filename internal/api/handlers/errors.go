package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"afrr-backtest/internal/api/models"
	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/session"
)

func abort(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func invalidRequest(c *gin.Context, err error) {
	if errors.Is(err, model.ErrInvalidConfig) {
		abort(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
		return
	}
	abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
}

// writeError maps a domain error onto the error envelope.
func writeError(c *gin.Context, err error) {
	var fe *data.FeedError
	switch {
	case errors.Is(err, model.ErrInvalidConfig),
		errors.Is(err, bidprofile.ErrUnknownCell),
		errors.Is(err, bidprofile.ErrNegativeVolume):
		abort(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
	case errors.As(err, &fe):
		details := map[string]interface{}{"feed_code": fe.Code}
		if fe.StatusCode != 0 {
			details["upstream_status"] = fe.StatusCode
		}
		abort(c, http.StatusBadGateway, "DATA_FETCH_ERROR", fe.Message, details)
	case errors.Is(err, session.ErrStaleResult):
		abort(c, http.StatusGone, "STALE_RESULT", "result was invalidated by a newer computation or a bid profile edit; recompute the estimate", nil)
	case errors.Is(err, session.ErrResultNotFound):
		abort(c, http.StatusNotFound, "RESULT_NOT_FOUND", err.Error(), nil)
	default:
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
