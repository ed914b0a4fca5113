package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrr-backtest/internal/bidprofile"
	"afrr-backtest/internal/model"
	"afrr-backtest/internal/tariff"
)

// utcCalendar is a holiday-free UTC calendar with English weekday names.
type utcCalendar struct{}

func (utcCalendar) Location() *time.Location { return time.UTC }
func (utcCalendar) IsHoliday(time.Time) bool { return false }
func (utcCalendar) WeekdayName(t time.Time) string { return t.Weekday().String() }
func (utcCalendar) WeekdayNames() [7]string {
	return [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

// tuesday is 2025-01-07 00:00 UTC.
var tuesday = time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return tuesday.Add(time.Duration(h) * time.Hour) }

func testProfile(t *testing.T) *bidprofile.Profile {
	t.Helper()
	p := bidprofile.New(utcCalendar{}.WeekdayNames())
	require.NoError(t, p.Set("08-09", "Tuesday", 500))
	require.NoError(t, p.Set("09-10", "Tuesday", 1000))
	return p
}

func capRecord(h int, up, down *float64) model.CapacityPriceRecord {
	return model.CapacityPriceRecord{HourUTC: hour(h), HourLocal: hour(h), Area: "DK1", UpPrice: up, DownPrice: down}
}

func TestCapacityWithoutMarginal(t *testing.T) {
	e := NewCapacityEngine(utcCalendar{}, testProfile(t), model.RegulationConfig{Direction: model.DirectionUp})
	rows := e.Evaluate([]model.CapacityPriceRecord{
		capRecord(7, model.Float(100), model.Float(80)),
		capRecord(8, model.Float(100), model.Float(80)),
		capRecord(9, nil, model.Float(80)),
	}, nil)
	require.Len(t, rows, 3)

	assert.Equal(t, GateNoBid, rows[0].Gate)
	assert.Nil(t, rows[0].Revenue)

	assert.Equal(t, "08-09", rows[1].Interval)
	assert.Equal(t, "Tuesday", rows[1].Weekday)
	assert.Equal(t, 500.0, rows[1].BidKW)
	assert.Equal(t, GateCounted, rows[1].Gate)
	require.NotNil(t, rows[1].Revenue)
	assert.Equal(t, 50.0, *rows[1].Revenue)

	assert.Equal(t, GateUnpriced, rows[2].Gate)
	assert.Nil(t, rows[2].Revenue)

	s := SummarizeCapacity(rows, 1)
	assert.Equal(t, 50.0, s.Total)
	assert.Equal(t, 50.0, s.MeanPerHour)
	assert.Equal(t, 1, s.HoursCounted)
	assert.Equal(t, 2, s.HoursBid)
	assert.Equal(t, 1, s.HoursUnpriced)
	require.NotNil(t, s.Annualized)
	assert.Equal(t, 50.0*365, *s.Annualized)
}

func TestCapacityMarginalGating(t *testing.T) {
	prices := tariff.NewPriceIndex([]model.PricePoint{
		{HourUTC: hour(8), Composite: model.Float(240)},
		{HourUTC: hour(9)},
	})
	records := []model.CapacityPriceRecord{
		capRecord(8, model.Float(100), model.Float(60)),
		capRecord(9, model.Float(100), model.Float(60)),
	}

	tests := []struct {
		name string
		reg  model.RegulationConfig
		want []Gate
		rev  float64
	}{
		{
			name: "up counted below marginal",
			reg:  model.RegulationConfig{Direction: model.DirectionUp, MarginalPrice: model.Float(300)},
			want: []Gate{GateCounted, GateUnpriced},
			rev:  50,
		},
		{
			name: "up rejected at or above marginal",
			reg:  model.RegulationConfig{Direction: model.DirectionUp, MarginalPrice: model.Float(240)},
			want: []Gate{GateMarginal, GateUnpriced},
		},
		{
			name: "down counted above marginal",
			reg:  model.RegulationConfig{Direction: model.DirectionDown, MarginalPrice: model.Float(200)},
			want: []Gate{GateCounted, GateUnpriced},
			rev:  30,
		},
		{
			name: "down rejected below marginal",
			reg:  model.RegulationConfig{Direction: model.DirectionDown, MarginalPrice: model.Float(300)},
			want: []Gate{GateMarginal, GateUnpriced},
		},
		{
			name: "capacity floor",
			reg:  model.RegulationConfig{Direction: model.DirectionUp, CapacityFloor: 150},
			want: []Gate{GateBelowFloor, GateBelowFloor},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := NewCapacityEngine(utcCalendar{}, testProfile(t), tt.reg).Evaluate(records, prices)
			got := []Gate{rows[0].Gate, rows[1].Gate}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rev, SummarizeCapacity(rows, 1).Total)
		})
	}
}

func TestCapacityNegativePriceWithoutFloor(t *testing.T) {
	e := NewCapacityEngine(utcCalendar{}, testProfile(t), model.RegulationConfig{Direction: model.DirectionUp})
	rows := e.Evaluate([]model.CapacityPriceRecord{
		capRecord(8, model.Float(-20), model.Float(80)),
	}, nil)
	require.Len(t, rows, 1)

	assert.Equal(t, GateCounted, rows[0].Gate)
	require.NotNil(t, rows[0].Revenue)
	assert.Equal(t, -10.0, *rows[0].Revenue)
	assert.Equal(t, map[time.Time]float64{hour(8): 500}, BidByHour(rows))
}

func TestBidByHourCountedOnly(t *testing.T) {
	rows := []CapacityRecord{
		{HourUTC: hour(8), BidKW: 500, Gate: GateCounted},
		{HourUTC: hour(9), BidKW: 1000, Gate: GateMarginal},
	}
	bids := BidByHour(rows)
	assert.Equal(t, map[time.Time]float64{hour(8): 500}, bids)
}

func TestSummarizeCapacityEmpty(t *testing.T) {
	s := SummarizeCapacity(nil, 0)
	assert.Zero(t, s.Total)
	assert.Nil(t, s.Annualized)
}
