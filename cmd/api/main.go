package main

import (
	"errors"
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"afrr-backtest/internal/api"
	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/logger"
	"afrr-backtest/internal/metrics"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/session"
)

func main() {
	settingsPath := flag.String("settings", "", "Optional YAML settings file (AFRR_* environment variables override it)")
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLog().Warn().Err(err).Msg("failed to read .env")
	}

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		bootLog().Fatal().Err(err).Msg("failed to load settings")
	}

	root := logger.New(logger.Config{Level: settings.LogLevel, Pretty: logger.IsDev(settings.AppEnv)})
	log := logger.Component(root, "api")

	cal, err := calendar.NewDenmark()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load Danish calendar")
	}

	rec, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	var activations []model.ActivationSample
	if settings.ActivationDataset != "" {
		activations, err = data.LoadActivationsCSV(settings.ActivationDataset)
		if err != nil {
			log.Fatal().Err(err).Str("path", settings.ActivationDataset).Msg("failed to load activation dataset")
		}
		log.Info().Str("path", settings.ActivationDataset).Int("samples", len(activations)).Msg("activation dataset loaded")
	} else {
		log.Warn().Msg("no activation_dataset configured; estimates will only contain capacity revenue")
	}

	feed := data.NewFeedClient(data.ClientConfig{
		BaseURL:  settings.FeedBaseURL,
		Timeout:  settings.FeedTimeout,
		CacheTTL: settings.CacheTTL,
		Location: cal.Location(),
	}, logger.Component(root, "feed"), rec)

	// Set up Gin router
	if !logger.IsDev(settings.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}

	router := api.NewRouter(api.Deps{
		Engine:      backtest.New(cal, logger.Component(root, "engine")),
		Feed:        feed,
		Session:     session.New(cal.WeekdayNames()),
		Activations: activations,
		Areas:       data.Areas(settings.ActivationDataset, activations),
		Metrics:     rec,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: settings.CORSOrigins,
		StaticDir:   staticDir,
		Log:         logger.Component(root, "http"),
	})

	// Start server
	addr := settings.Addr()
	log.Info().Str("addr", addr).Str("env", settings.AppEnv).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// bootLog is used before settings pick the level and format.
func bootLog() *zerolog.Logger {
	l := logger.New(logger.Config{})
	return &l
}
