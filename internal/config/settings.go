package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides, e.g. AFRR_PORT.
const EnvPrefix = "AFRR_"

// Settings configure the long-running service and the CLI's feed access.
type Settings struct {
	Port              int           `koanf:"port"`
	AppEnv            string        `koanf:"app_env"`
	LogLevel          string        `koanf:"log_level"`
	FeedBaseURL       string        `koanf:"feed_base_url"`
	FeedTimeout       time.Duration `koanf:"feed_timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	ActivationDataset string        `koanf:"activation_dataset"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

func DefaultSettings() Settings {
	return Settings{
		Port:        8080,
		AppEnv:      "production",
		LogLevel:    "info",
		FeedBaseURL: "https://api.energidataservice.dk",
		FeedTimeout: 30 * time.Second,
		CacheTTL:    30 * 24 * time.Hour,
		CORSOrigins: []string{"*"},
	}
}

// LoadSettings reads an optional YAML file and then AFRR_* environment overrides
// on top of the defaults. An empty path skips the file.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
		default:
			return nil, fmt.Errorf("unsupported settings format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "cors_origins" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, err
	}

	s := DefaultSettings()
	s.CORSOrigins = nil
	if err := k.Unmarshal("", &s); err != nil {
		return nil, err
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = DefaultSettings().CORSOrigins
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", s.Port)
	}
	if s.FeedTimeout <= 0 {
		return fmt.Errorf("feed_timeout must be > 0")
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be >= 0")
	}
	if strings.TrimSpace(s.FeedBaseURL) == "" {
		return fmt.Errorf("feed_base_url is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s *Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
