// Package api assembles the HTTP service: middleware, the /api/v1 routes, the
// Prometheus endpoint and the optional single-page frontend.
package api

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"afrr-backtest/internal/api/handlers"
	"afrr-backtest/internal/api/middleware"
	"afrr-backtest/internal/api/models"
	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/metrics"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/session"
)

// Deps are the collaborators the routes are served from.
type Deps struct {
	Engine      *backtest.Engine
	Feed        data.PriceFeed
	Session     *session.Session
	Activations []model.ActivationSample
	Areas       *data.AreaList

	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer

	CORSOrigins []string
	// StaticDir holds a built frontend; skipped when it does not exist.
	StaticDir string
	Log       zerolog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	// Initialize handlers
	estimateHandler := handlers.NewEstimateHandler(d.Engine, d.Feed, d.Session, d.Activations, d.Metrics, d.Log)
	profileHandler := handlers.NewBidProfileHandler(d.Session, d.Log)
	areasHandler := handlers.NewAreasHandler(d.Areas)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/estimate", estimateHandler.RunEstimate)
		api.GET("/estimate/:id", estimateHandler.GetEstimate)
		api.GET("/estimate/:id/ledger", estimateHandler.GetLedger)

		api.GET("/bid-profile", profileHandler.GetProfile)
		api.PUT("/bid-profile", profileHandler.ReplaceProfile)
		api.PATCH("/bid-profile/cell", profileHandler.SetCell)
		api.POST("/bid-profile/fill", profileHandler.Fill)

		api.GET("/areas", areasHandler.ListAreas)
	}

	serveStatic(router, d.StaticDir, d.Log)
	return router
}

// serveStatic serves the frontend from dir with index.html for all non-API
// routes (SPA routing).
func serveStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(404, models.ErrorResponse{Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"}})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}
