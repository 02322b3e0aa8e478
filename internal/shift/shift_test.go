package shift

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)

func TestNormalize_DerivesVelocity(t *testing.T) {
	s := &Snapshot{Hour: 12, HoursWorked: 4, Units: 200}
	require.NoError(t, s.Normalize())
	assert.Equal(t, 50.0, s.Velocity)
}

func TestNormalize_KeepsExplicitVelocity(t *testing.T) {
	s := &Snapshot{Hour: 12, HoursWorked: 4, Units: 200, Velocity: 42}
	require.NoError(t, s.Normalize())
	assert.Equal(t, 42.0, s.Velocity)
}

func TestNormalize_ZeroHoursLeavesVelocityZero(t *testing.T) {
	s := &Snapshot{Hour: 8, Units: 10}
	require.NoError(t, s.Normalize())
	assert.Equal(t, 0.0, s.Velocity)
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"negative units", Snapshot{Units: -1}},
		{"negative hours", Snapshot{HoursWorked: -0.5}},
		{"nan idle", Snapshot{IdleTime: math.NaN()}},
		{"inf velocity", Snapshot{Velocity: math.Inf(1)}},
		{"negative stops", Snapshot{Stops: -3}},
		{"hour out of range", Snapshot{Hour: 24}},
		{"minute out of range", Snapshot{Minute: 60}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.snap
			err := s.Normalize()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSnapshot))
		})
	}
}

func TestReduce_FromUsers(t *testing.T) {
	pd := &ProcessedData{
		Users: map[string]UserStats{
			"ana": {
				TotalUnits:       120,
				TotalStops:       10,
				Idle5Min:         &IdleTotal{Total: 15},
				Idle3Min:         &IdleTotal{Total: 25},
				FirstTransaction: "2026-03-10T08:00:00Z",
				LastTransaction:  "2026-03-10T11:00:00Z",
			},
			"luis": {
				TotalUnits:       80,
				TotalStops:       6,
				Idle3Min:         &IdleTotal{Total: 9},
				FirstTransaction: "2026-03-10T09:00:00Z",
				LastTransaction:  "2026-03-10T12:00:00Z",
			},
		},
		FilteredTransactions: []RawTransaction{
			{Date: "2026-03-10T08:10:00Z", User: "ana", Units: 12, LoadNumber: "L1"},
			{Date: "not a date", User: "luis", Units: 3},
		},
		Module: "dispatch",
	}

	snap, err := Reduce(pd, refNow, 8)
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 200.0, snap.Units)
	assert.Equal(t, 16, snap.Stops)
	assert.Equal(t, 24.0, snap.IdleTime, "5min total preferred over 3min")
	assert.Equal(t, 4.0, snap.HoursWorked)
	assert.Equal(t, 50.0, snap.Velocity)
	assert.Equal(t, 12, snap.Hour)
	assert.Equal(t, 30, snap.Minute)
	assert.Equal(t, "dispatch", snap.Module)
	require.Len(t, snap.Transactions, 2)
	assert.True(t, snap.Transactions[1].Date.IsZero())
	require.NotNil(t, snap.FirstTransaction)
	assert.Equal(t, 8, snap.FirstTransaction.Hour())
}

func TestReduce_FallsBackToTransactionSpan(t *testing.T) {
	pd := &ProcessedData{
		FilteredTransactions: []RawTransaction{
			{Date: "2026-03-10T10:30:00Z", Units: 10},
			{Date: "2026-03-10T08:30:00Z", Units: 10},
		},
	}
	snap, err := Reduce(pd, refNow, 8)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.HoursWorked)
	assert.Equal(t, "general", snap.Module)
}

func TestReduce_FallsBackToShiftStart(t *testing.T) {
	snap, err := Reduce(&ProcessedData{}, refNow, 8)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, snap.HoursWorked, 1e-9)

	early := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	snap, err = Reduce(&ProcessedData{}, early, 8)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.HoursWorked)
	assert.Equal(t, 0.0, snap.Velocity)
}

func TestReduce_NilData(t *testing.T) {
	_, err := Reduce(nil, refNow, 8)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestHourlySamples(t *testing.T) {
	pd := &ProcessedData{
		FilteredTransactions: []RawTransaction{
			{Date: "2026-03-10T08:10:00Z", Units: 10},
			{Date: "2026-03-10T08:50:00Z", Units: 15},
			{Date: "2026-03-10T09:05:00Z", Units: 20},
		},
	}
	snap, err := Reduce(pd, refNow, 8)
	require.NoError(t, err)

	samples := snap.HourlySamples()
	require.Len(t, samples, 2)
	assert.Equal(t, 8, samples[0].Hour)
	assert.Equal(t, 25.0, samples[0].Units)
	assert.Equal(t, 2, samples[0].Stops)
	assert.Equal(t, 20.0, samples[1].Velocity())
}

func TestReadProcessedData_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "day.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
module: reception
users:
  ana:
    total_units: 40
    total_stops: 4
filtered_transactions:
  - date: "2026-03-10T08:10:00Z"
    user: ana
    units: 40
`), 0o644))

	pd, err := ReadProcessedData(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "reception", pd.Module)
	assert.Equal(t, 40.0, pd.Users["ana"].TotalUnits)
	require.Len(t, pd.FilteredTransactions, 1)

	jsonPath := filepath.Join(dir, "day.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"users":{"b":{"total_units":5}},"filtered_transactions":[]}`), 0o644))
	pd, err = ReadProcessedData(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pd.Users["b"].TotalUnits)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{`), 0o644))
	_, err = ReadProcessedData(badPath)
	assert.Error(t, err)
}

func TestIsRecent(t *testing.T) {
	s := &Snapshot{SavedAt: refNow.Add(-30 * time.Minute)}
	assert.True(t, IsRecent(s, refNow, time.Hour))
	assert.False(t, IsRecent(s, refNow, 20*time.Minute))
	assert.False(t, IsRecent(nil, refNow, time.Hour))
	assert.False(t, IsRecent(&Snapshot{}, refNow, time.Hour))
}

func TestReduce_BucketsInReferenceZone(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, art)
	pd := &ProcessedData{
		FilteredTransactions: []RawTransaction{
			{Date: "2026-03-10T11:15:00.000Z", Units: 10},
			{Date: "2026-03-10T12:15:00.000Z", Units: 20},
		},
	}
	snap, err := Reduce(pd, now, 8)
	require.NoError(t, err)
	assert.Equal(t, 9, snap.Hour)

	samples := snap.HourlySamples()
	require.Len(t, samples, 2)
	assert.Equal(t, 8, samples[0].Hour)
	assert.Equal(t, 9, samples[1].Hour, "current local hour")
	assert.Equal(t, 20.0, samples[1].Units)
	assert.Equal(t, art, samples[1].Timestamp.Location())
	require.NotNil(t, snap.LastTransaction)
	assert.Equal(t, 9, snap.LastTransaction.Hour())
}

func TestReduce_LocalDayAcrossUTCMidnight(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)
	now := time.Date(2026, 3, 9, 23, 0, 0, 0, art)
	pd := &ProcessedData{
		FilteredTransactions: []RawTransaction{{Date: "2026-03-10T01:30:00Z", Units: 5}},
	}
	snap, err := Reduce(pd, now, 8)
	require.NoError(t, err)

	samples := snap.HourlySamples()
	require.Len(t, samples, 1)
	assert.Equal(t, 22, samples[0].Hour)
	assert.Equal(t, 9, samples[0].Timestamp.Day())
}

func TestParseTime(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)

	got, ok := ParseTime("2026-03-10T12:15:00Z", art)
	require.True(t, ok)
	assert.Equal(t, 9, got.Hour(), "explicit offsets are converted")

	got, ok = ParseTime("2026-03-10 12:15:00", art)
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour(), "zone-less times are local wall clock")
	assert.Equal(t, art, got.Location())

	_, ok = ParseTime("  ", art)
	assert.False(t, ok)
	_, ok = ParseTime("yesterday", art)
	assert.False(t, ok)
}
