package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrr-backtest/internal/model"
)

func TestCompositorFlatScenario(t *testing.T) {
	s := NewScheduler(fixedCalendar{}, model.CategoryFlat, rates)
	c := NewCompositor(s)

	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	var spot []model.SpotRecord
	for _, h := range []int{2, 8, 18, 22} {
		spot = append(spot, model.SpotRecord{HourUTC: day.Add(time.Duration(h) * time.Hour), SpotPrice: model.Float(100)})
	}

	points := c.Compose(spot)
	require.Len(t, points, 4)

	wantTariff := []float64{10, 20, 40, 20}
	wantComposite := []float64{230, 240, 260, 240}
	for i, p := range points {
		assert.Equal(t, wantTariff[i], p.Tariff)
		require.NotNil(t, p.Composite)
		assert.Equal(t, wantComposite[i], *p.Composite)
		// composite - tariff - grid == spot
		assert.InDelta(t, *p.Spot, *p.Composite-p.Tariff-p.Grid, 1e-9)
	}
}

func TestCompositeUnpricedStaysUnpriced(t *testing.T) {
	assert.Nil(t, Composite(nil, 10, 120))

	s := NewScheduler(fixedCalendar{}, model.CategoryFlat, rates)
	points := NewCompositor(s).Compose([]model.SpotRecord{
		{HourUTC: time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC)},
	})
	require.Len(t, points, 1)
	assert.Nil(t, points[0].Composite)
	assert.Equal(t, 10.0, points[0].Tariff)
}

func TestPriceIndexHourFloor(t *testing.T) {
	hour := time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC)
	ix := NewPriceIndex([]model.PricePoint{{HourUTC: hour, Composite: model.Float(240)}})

	got := ix.CompositeAt(hour.Add(59*time.Minute + 59*time.Second))
	require.NotNil(t, got)
	assert.Equal(t, 240.0, *got)

	assert.Nil(t, ix.CompositeAt(hour.Add(time.Hour)))
	assert.Nil(t, ix.CompositeAt(hour.Add(-time.Second)))
}
