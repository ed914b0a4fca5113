package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrr-backtest/internal/api/models"
	"afrr-backtest/internal/data"
)

// AreasHandler lists the price areas of the loaded activation dataset
type AreasHandler struct {
	areas *data.AreaList
}

func NewAreasHandler(areas *data.AreaList) *AreasHandler {
	if areas == nil {
		areas = &data.AreaList{}
	}
	return &AreasHandler{areas: areas}
}

// ListAreas handles GET /api/v1/areas
func (h *AreasHandler) ListAreas(c *gin.Context) {
	areas := make([]models.AreaInfo, len(h.areas.Areas))
	for i, a := range h.areas.Areas {
		areas[i] = models.AreaInfo{
			ID:      a.ID,
			Name:    a.Name,
			Samples: a.Samples,
			From:    a.From,
			To:      a.To,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"areas":  areas,
		"source": h.areas.Source,
		"count":  len(areas),
	})
}
