package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrr-backtest/internal/model"
)

var dkDays = [7]string{"Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag", "Søndag"}

const scenarioYAML = `
area: dk1
start_date: 2025-01-01
end_date: 2025-01-31
customer_category: B-høj
tariffs:
  low: 10
  high: 20
  peak: 40
regulation:
  direction: afrr-opregulering
  marginal_price: 300
  activation_premium: 5
  capacity_floor: 12.5
bid_profile_file: profile.yaml
bid_fill_kw: 100
`

const profileYAML = `
days: [Mandag]
rows:
  - interval: "08-09"
    kw: [500]
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.yaml"), []byte(profileYAML), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "profile.yaml"), c.BidProfileFile)

	p, err := c.Params()
	require.NoError(t, err)
	assert.Equal(t, "DK1", p.Area)
	assert.Equal(t, model.CategoryTiered, p.Category)
	assert.Equal(t, model.DirectionUp, p.Regulation.Direction)
	require.NotNil(t, p.Regulation.MarginalPrice)
	assert.Equal(t, 300.0, *p.Regulation.MarginalPrice)
	assert.Equal(t, 5.0, p.Regulation.ActivationPremium)
	assert.Equal(t, 12.5, p.Regulation.CapacityFloor)
	assert.Equal(t, 31, p.Range.Days())

	// defaults for absent keys
	assert.Equal(t, DefaultGridTariff, p.Rates.Grid)
	assert.Equal(t, 30*time.Second, p.Regulation.Delay)
	assert.Equal(t, 120*time.Second, p.Regulation.RampUp)
	assert.Equal(t, time.Second, p.SampleInterval)

	prof, err := c.BidProfile(dkDays)
	require.NoError(t, err)
	assert.Equal(t, 500.0, prof.Lookup("08-09", "Mandag"))
	assert.Equal(t, 100.0, prof.Lookup("08-09", "Tirsdag"), "fill applies under the file")
}

func TestMarginalPriceNone(t *testing.T) {
	for _, v := range []string{"none", "None", "null", "~", `""`} {
		body := "area: DK1\nstart_date: 2025-01-01\nend_date: 2025-01-02\nregulation:\n  direction: down\n  marginal_price: " + v + "\n"
		c, err := Load(writeScenario(t, body))
		require.NoError(t, err, v)
		assert.Nil(t, c.Regulation.MarginalPrice.Value, v)
	}
}

func TestScenarioValidation(t *testing.T) {
	base := "area: DK1\nstart_date: 2025-01-01\nend_date: 2025-01-31\nregulation:\n  direction: up\n"
	tests := []struct {
		name string
		body string
	}{
		{"unknown direction", "area: DK1\nstart_date: 2025-01-01\nend_date: 2025-01-31\nregulation:\n  direction: sideways\n"},
		{"inverted dates", "area: DK1\nstart_date: 2025-02-01\nend_date: 2025-01-31\nregulation:\n  direction: up\n"},
		{"missing start", "area: DK1\nend_date: 2025-01-31\nregulation:\n  direction: up\n"},
		{"bad date", "area: DK1\nstart_date: 01/01/2025\nend_date: 2025-01-31\nregulation:\n  direction: up\n"},
		{"unknown category", base + "customer_category: Z\n"},
		{"negative premium", "area: DK1\nstart_date: 2025-01-01\nend_date: 2025-01-31\nregulation:\n  direction: up\n  activation_premium: -1\n"},
		{"bad interval", base + "sample_interval: fast\n"},
		{"zero interval", base + "sample_interval: 0s\n"},
		{"missing area", "start_date: 2025-01-01\nend_date: 2025-01-31\nregulation:\n  direction: up\n"},
		{"negative fill", base + "bid_fill_kw: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tt.body))
			assert.ErrorIs(t, err, model.ErrInvalidConfig)
		})
	}

	_, err := Load(writeScenario(t, "area: DK1\nstart_date: 2025-01-01\nend_date: 2025-01-31\nregulation:\n  direction: up\n  marginal_price: cheap\n"))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestParamsForArea(t *testing.T) {
	path := writeScenario(t, strings.Replace(scenarioYAML, "area: dk1\n", "", 1))
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	p, err := c.ParamsFor(" dk2 ")
	require.NoError(t, err)
	assert.Equal(t, "DK2", p.Area)
	assert.Empty(t, c.Area)

	_, err = c.ParamsFor("")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestLoadUncheckedKeepsInvalid(t *testing.T) {
	c, err := LoadUnchecked(writeScenario(t, "area: DK1\nregulation:\n  direction: sideways\n"))
	require.NoError(t, err)
	assert.Equal(t, "sideways", c.Regulation.Direction)
	assert.Error(t, c.Validate())
}

func TestScenarioJSON(t *testing.T) {
	body := `{"area":"DK2","start_date":"2025-03-01","end_date":"2025-03-02",
		"regulation":{"direction":"down","marginal_price":"none","delay_seconds":0}}`
	c := Default()
	require.NoError(t, json.Unmarshal([]byte(body), &c))
	assert.Nil(t, c.Regulation.MarginalPrice.Value)
	assert.Zero(t, c.Regulation.DelaySeconds)
	assert.Equal(t, DefaultRampUpSeconds, c.Regulation.RampUpSeconds)

	require.NoError(t, json.Unmarshal([]byte(`{"regulation":{"marginal_price":250.5}}`), &c))
	require.NotNil(t, c.Regulation.MarginalPrice.Value)
	assert.Equal(t, 250.5, *c.Regulation.MarginalPrice.Value)

	out, err := json.Marshal(c.Regulation)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"marginal_price":250.5`)
	assert.Error(t, json.Unmarshal([]byte(`{"regulation":{"marginal_price":true}}`), &c))
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("AFRR_PORT", "9090")
	t.Setenv("AFRR_CACHE_TTL", "1h")
	t.Setenv("AFRR_CORS_ORIGINS", "http://a.example, http://b.example")

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nport: 7000\nactivation_dataset: data/act.csv\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, s.Port, "env overrides file")
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, time.Hour, s.CacheTTL)
	assert.Equal(t, 30*time.Second, s.FeedTimeout)
	assert.Equal(t, "data/act.csv", s.ActivationDataset)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, s.CORSOrigins)
	assert.Equal(t, ":9090", s.Addr())
}

func TestLoadSettingsDefaultsAndErrors(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), *s)

	t.Setenv("AFRR_PORT", "0")
	_, err = LoadSettings("")
	assert.Error(t, err)

	_, err = LoadSettings("settings.toml")
	assert.Error(t, err)
}
