package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activationCSV = `ActivationTime,PriceArea,aFRR_DownActivatedPriceEUR,aFRR_UpActivatedPriceEUR
2025-01-07 08:00:01,DK1,-10,100
2025-01-07 08:00:00,DK1,,20
2025-01-07T08:00:00Z,DK2,5,NaN
`

func TestReadActivations(t *testing.T) {
	samples, err := ReadActivations(strings.NewReader(activationCSV))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	t0 := time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, t0, samples[0].TimeUTC)
	assert.Equal(t, t0.Add(time.Second), samples[2].TimeUTC)

	var dk1First, dk2 = samples[0], samples[1]
	if dk1First.Area != "DK1" {
		dk1First, dk2 = dk2, dk1First
	}
	assert.Nil(t, dk1First.DownPrice)
	assert.InDelta(t, 20*EURToDKK, *dk1First.UpPrice, 1e-9)
	assert.Nil(t, dk2.UpPrice)
	assert.InDelta(t, 5*EURToDKK, *dk2.DownPrice, 1e-9)

	last := samples[2]
	assert.InDelta(t, -74.5, *last.DownPrice, 1e-9)
	assert.InDelta(t, 745.0, *last.UpPrice, 1e-9)
}

func TestReadActivationsErrors(t *testing.T) {
	_, err := ReadActivations(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")

	_, err = ReadActivations(strings.NewReader("ActivationTime,PriceArea\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = ReadActivations(strings.NewReader("ActivationTime,PriceArea,aFRR_DownActivatedPriceEUR,aFRR_UpActivatedPriceEUR\nyesterday,DK1,1,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadActivations(strings.NewReader("ActivationTime,PriceArea,aFRR_DownActivatedPriceEUR,aFRR_UpActivatedPriceEUR\n2025-01-07 08:00:00,DK1,abc,1\n"))
	assert.ErrorContains(t, err, "down price")
}

func TestLoadActivationsAndAreas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activations.csv")
	require.NoError(t, os.WriteFile(path, []byte(activationCSV), 0o644))

	samples, err := LoadActivationsCSV(path)
	require.NoError(t, err)

	list := Areas(path, samples)
	assert.Equal(t, []string{"DK1", "DK2"}, list.IDs())
	assert.Equal(t, "Western Denmark", list.Areas[0].Name)
	assert.Equal(t, 2, list.Areas[0].Samples)
	assert.Equal(t, time.Date(2025, 1, 7, 8, 0, 1, 0, time.UTC), list.Areas[0].To)
	assert.Equal(t, "XX9", AreaName("XX9"))

	_, err = LoadActivationsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
