package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"afrr-backtest/internal/api/models"
	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/session"
)

// BidProfileHandler edits the session's weekly bid table. Every successful
// change that alters a cell invalidates the current estimate.
type BidProfileHandler struct {
	session *session.Session
	log     zerolog.Logger
}

func NewBidProfileHandler(sess *session.Session, log zerolog.Logger) *BidProfileHandler {
	return &BidProfileHandler{session: sess, log: log}
}

// GetProfile handles GET /api/v1/bid-profile
func (h *BidProfileHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.ProfileTable())
}

// ReplaceProfile handles PUT /api/v1/bid-profile
func (h *BidProfileHandler) ReplaceProfile(c *gin.Context) {
	var t bidprofile.Table
	if err := c.ShouldBindJSON(&t); err != nil {
		invalidRequest(c, err)
		return
	}
	h.apply(c, "replace", func() error { return h.session.ReplaceProfile(t) })
}

// SetCell handles PATCH /api/v1/bid-profile/cell
func (h *BidProfileHandler) SetCell(c *gin.Context) {
	var req models.CellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	h.apply(c, "cell", func() error { return h.session.SetCell(req.Interval, req.Day, *req.KW) })
}

// Fill handles POST /api/v1/bid-profile/fill
func (h *BidProfileHandler) Fill(c *gin.Context) {
	var req models.FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	h.apply(c, "fill", func() error { return h.session.Fill(*req.KW) })
}

// apply runs one edit; a rejected edit leaves the profile and result untouched.
func (h *BidProfileHandler) apply(c *gin.Context, op string, edit func() error) {
	if err := edit(); err != nil {
		writeError(c, err)
		return
	}
	h.log.Debug().Str("op", op).Msg("bid profile updated")
	c.JSON(http.StatusOK, h.session.ProfileTable())
}
