package bidprofile

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var days = [7]string{"Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag", "Søndag"}

func TestIntervals(t *testing.T) {
	assert.Equal(t, "00-01", Intervals[0])
	assert.Equal(t, "09-10", Intervals[9])
	assert.Equal(t, "23-00", Intervals[23])
}

func TestProfileDefaultsToZero(t *testing.T) {
	p := New(days)
	tbl := p.Table()
	require.Len(t, tbl.Rows, 24)
	for _, r := range tbl.Rows {
		require.Len(t, r.KW, 7)
		for _, kw := range r.KW {
			assert.Zero(t, kw)
		}
	}
}

func TestProfileSetAndLookup(t *testing.T) {
	p := New(days)
	require.NoError(t, p.Set("08-09", "Onsdag", 500))
	assert.Equal(t, 500.0, p.Lookup("08-09", "Onsdag"))
	assert.Zero(t, p.Lookup("08-09", "Torsdag"))

	// misses are "not bidding", never an error
	assert.Zero(t, p.Lookup("25-26", "Onsdag"))
	assert.Zero(t, p.Lookup("08-09", "Wednesday"))

	assert.ErrorIs(t, p.Set("08-09", "Wednesday", 1), ErrUnknownCell)
	assert.ErrorIs(t, p.Set("8-9", "Onsdag", 1), ErrUnknownCell)
	assert.ErrorIs(t, p.Set("08-09", "Onsdag", -1), ErrNegativeVolume)
	assert.ErrorIs(t, p.Set("08-09", "Onsdag", math.NaN()), ErrNegativeVolume)
	assert.Equal(t, 500.0, p.Lookup("08-09", "Onsdag"))
}

func TestProfileFill(t *testing.T) {
	p := New(days)
	require.NoError(t, p.Fill(250))
	assert.Equal(t, 250.0, p.Lookup("00-01", "Mandag"))
	assert.Equal(t, 250.0, p.Lookup("23-00", "Søndag"))

	require.NoError(t, p.Fill(0))
	assert.Zero(t, p.Lookup("23-00", "Søndag"))

	assert.ErrorIs(t, p.Fill(-5), ErrNegativeVolume)
}

func TestProfileSnapshotIsIndependent(t *testing.T) {
	p := New(days)
	require.NoError(t, p.Set("10-11", "Fredag", 100))
	snap := p.Snapshot()
	require.NoError(t, p.Set("10-11", "Fredag", 900))

	assert.Equal(t, 100.0, snap.Lookup("10-11", "Fredag"))
	assert.False(t, snap.Equal(p))
	assert.True(t, p.Snapshot().Equal(p))
}

func TestProfileReplace(t *testing.T) {
	p := New(days)
	require.NoError(t, p.Fill(10))

	err := p.Replace(Table{
		Days: []string{"Søndag", "Mandag"},
		Rows: []Row{{Interval: "17-18", KW: []float64{300, 200}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, p.Lookup("17-18", "Søndag"))
	assert.Equal(t, 200.0, p.Lookup("17-18", "Mandag"))
	// omitted cells become zero
	assert.Zero(t, p.Lookup("17-18", "Tirsdag"))
	assert.Zero(t, p.Lookup("00-01", "Mandag"))

	before := p.Table()
	assert.Error(t, p.Replace(Table{Rows: []Row{{Interval: "17-18", KW: []float64{-1}}}}))
	assert.ErrorIs(t, p.Replace(Table{Days: []string{"Funday"}}), ErrUnknownCell)
	assert.Equal(t, before, p.Table(), "invalid table must not change the profile")
}

func TestProfileOverlay(t *testing.T) {
	p := New(days)
	require.NoError(t, p.Fill(10))

	require.NoError(t, p.Overlay(Table{
		Days: []string{"Mandag"},
		Rows: []Row{{Interval: "08-09", KW: []float64{250}}},
	}))
	assert.Equal(t, 250.0, p.Lookup("08-09", "Mandag"))
	assert.Equal(t, 10.0, p.Lookup("08-09", "Tirsdag"))
	assert.Equal(t, 10.0, p.Lookup("09-10", "Mandag"))

	assert.ErrorIs(t, p.Overlay(Table{Rows: []Row{{Interval: "25-26"}}}), ErrUnknownCell)
	assert.Equal(t, 250.0, p.Lookup("08-09", "Mandag"))
}

func TestProfileConcurrentAccess(t *testing.T) {
	p := New(days)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Set(Intervals[j%24], days[i%7], float64(j))
				_ = p.Lookup(Intervals[j%24], days[i%7])
				_ = p.Snapshot()
			}
		}(i)
	}
	wg.Wait()
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	data := `days: [Mandag, Tirsdag, Onsdag, Torsdag, Fredag, Lørdag, Søndag]
rows:
  - interval: "06-07"
    kw: [100, 100, 100, 100, 100, 0, 0]
  - interval: "07-08"
    kw: [150, 150]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := LoadFile(path, days)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Lookup("06-07", "Fredag"))
	assert.Zero(t, p.Lookup("06-07", "Lørdag"))
	assert.Equal(t, 150.0, p.Lookup("07-08", "Tirsdag"))
	assert.Zero(t, p.Lookup("07-08", "Onsdag"))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"), days)
	assert.Error(t, err)
}
