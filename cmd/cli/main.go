package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"afrr-backtest/internal/calendar"
	"afrr-backtest/internal/config"
	"afrr-backtest/internal/data"
	"afrr-backtest/internal/logger"
)

var (
	settingsPath    string
	cfgPath         string
	activationsPath string
	logLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "afrr",
	Short: "Backtest aFRR capacity and activation revenue for a flexible consumer",
	Long: `afrr estimates what a flexible electricity consumer would have earned in the
aFRR market: capacity (disposability) payments for a weekly bid profile, and
activation revenue net of plan-deviation cost, from historical prices.

Spot and capacity prices are fetched from Energi Data Service; activation
prices come from a pre-downloaded CSV dataset.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "scenario YAML file")
	rootCmd.PersistentFlags().StringVarP(&activationsPath, "activations", "a", "", "activation price CSV dataset")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "optional settings YAML (AFRR_* environment overrides)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default from settings)")
	_ = rootCmd.MarkPersistentFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs before it can compute.
type env struct {
	settings *config.Settings
	cal      *calendar.Denmark
	feed     *data.FeedClient
	log      zerolog.Logger
}

func setup() (*env, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	level := settings.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	// logs go to stderr so stdout stays a clean report
	root := logger.New(logger.Config{Level: level, Pretty: true, Out: os.Stderr})

	cal, err := calendar.NewDenmark()
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	feed := data.NewFeedClient(data.ClientConfig{
		BaseURL: settings.FeedBaseURL,
		Timeout: settings.FeedTimeout,
		// one process, one query per area; no point caching
		CacheTTL: 0,
		Location: cal.Location(),
	}, logger.Component(root, "feed"), nil)

	return &env{settings: settings, cal: cal, feed: feed, log: root}, nil
}

// datasetPath prefers the flag, then the activation_dataset setting.
func (e *env) datasetPath() (string, error) {
	p := strings.TrimSpace(activationsPath)
	if p == "" {
		p = e.settings.ActivationDataset
	}
	if p == "" {
		return "", fmt.Errorf("--activations is required (or set activation_dataset)")
	}
	return p, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
