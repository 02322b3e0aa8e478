package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"github.com/blackwell-systems/shiftwatch/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)

const processedJSON = `{
  "module": "picking",
  "users": {
    "ana": {"total_units": 120, "total_stops": 2, "idle_5min": {"total": 6},
            "first_transaction": "2026-03-10T08:00:00Z", "last_transaction": "2026-03-10T12:00:00Z"},
    "luis": {"total_units": 80, "total_stops": 1, "idle_3min": {"total": 4}}
  },
  "filtered_transactions": [
    {"date": "2026-03-10T08:10:00Z", "user": "ana", "units": 10},
    {"date": "2026-03-10T09:20:00Z", "user": "luis", "units": 20},
    {"date": "2026-03-10T11:00:00Z", "user": "ana", "units": 30}
  ]
}`

func testConfig() *config.Config {
	return &config.Config{
		Projection: config.DefaultProjection,
		Output:     config.DefaultOutput,
		Watch:      config.DefaultWatch,
	}
}

func newTestSession(t *testing.T, db *store.DB) *session {
	t.Helper()
	if db == nil {
		var err error
		db, err = store.OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
	}
	s, err := newSession(context.Background(), testConfig(), db, nil)
	require.NoError(t, err)
	return s
}

func writeProcessed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed.json")
	require.NoError(t, os.WriteFile(path, []byte(processedJSON), 0o644))
	return path
}

func TestNewSession_Empty(t *testing.T) {
	s := newTestSession(t, nil)
	assert.Nil(t, s.snapshot)
	assert.Equal(t, 0, s.engine.History().Len())

	_, err := s.projectAll(testNow)
	require.ErrorIs(t, err, analyzer.ErrNoCurrentData)
	assert.Contains(t, err.Error(), "shiftwatch ingest")
}

func TestNewSession_InvalidProjectionConfig(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := testConfig()
	cfg.Projection.TargetRate = 0
	_, err = newSession(context.Background(), cfg, db, nil)
	assert.ErrorIs(t, err, analyzer.ErrInvalidConfig)
}

func TestIngestFile_PersistsSnapshotAndHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	res, err := ingestFile(ctx, s, writeProcessed(t), testNow, true)
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.Snapshot.Units)
	assert.Equal(t, 3, res.Snapshot.Stops)
	assert.Equal(t, 10.0, res.Snapshot.IdleTime)
	assert.InDelta(t, 4.0, res.Snapshot.HoursWorked, 1e-9)
	assert.InDelta(t, 50.0, res.Snapshot.Velocity, 1e-9)
	assert.Equal(t, 3, res.SamplesAdded)
	assert.Equal(t, 0, res.SamplesPruned)
	assert.Equal(t, 3, res.SamplesRetained)

	// A fresh session over the same database sees the ingested state.
	restored := newTestSession(t, s.db)
	require.NotNil(t, restored.snapshot)
	assert.Equal(t, res.Snapshot.ID, restored.snapshot.ID)
	assert.Equal(t, "picking", restored.snapshot.Module)
	assert.Equal(t, 3, restored.engine.History().Len())

	projections, err := restored.projectAll(testNow)
	require.NoError(t, err)
	assert.Len(t, projections, len(config.DefaultProjection.Horizons))
}

func TestIngestFile_DuplicateIsAdditive(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	path := writeProcessed(t)

	_, err := ingestFile(ctx, s, path, testNow, true)
	require.NoError(t, err)
	res, err := ingestFile(ctx, s, path, testNow, true)
	require.NoError(t, err)
	assert.Equal(t, 6, res.SamplesRetained)
}

func TestIngestFile_SkipHistory(t *testing.T) {
	s := newTestSession(t, nil)
	res, err := ingestFile(context.Background(), s, writeProcessed(t), testNow, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SamplesAdded)
	assert.Equal(t, 0, res.SamplesRetained)
	assert.NotNil(t, s.engine.Snapshot())
}

func TestIngestFile_MissingFile(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := ingestFile(context.Background(), s, filepath.Join(t.TempDir(), "nope.json"), testNow, true)
	assert.Error(t, err)
}

func TestHorizonOverride(t *testing.T) {
	tune, err := horizonOverride("")
	require.NoError(t, err)
	assert.Nil(t, tune)

	tune, err = horizonOverride(" 1, 3,5 ")
	require.NoError(t, err)
	cfg := analyzer.DefaultConfig()
	tune(&cfg)
	assert.Equal(t, []int{1, 3, 5}, cfg.Horizons)

	_, err = horizonOverride("2,x")
	assert.Error(t, err)
}

func TestSaveRun_DeltaAgainstPrevious(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := ingestFile(ctx, s, writeProcessed(t), testNow, true)
	require.NoError(t, err)

	projections, err := s.projectAll(testNow)
	require.NoError(t, err)

	firstID, delta, err := saveRun(ctx, s.db, "project", "snap", testNow, projections)
	require.NoError(t, err)
	assert.Nil(t, delta)

	secondID, delta, err := saveRun(ctx, s.db, "project", "snap", testNow.Add(time.Minute), projections)
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)
	require.Len(t, delta, len(projections))
	for _, d := range delta {
		assert.InDelta(t, 0, d, 1e-9)
	}

	report, err := loadRun(ctx, s.db, 2)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, firstID, report.Run.ID)
	assert.Len(t, report.Projections, len(projections))

	report, err = loadRun(ctx, s.db, 5)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestRecordOutcome_ExplicitProjected(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	projected := 80.0
	rec, err := recordOutcome(ctx, s, testNow, 2, 100, &projected)
	require.NoError(t, err)
	assert.Equal(t, 20.0, rec.AbsoluteError)
	assert.InDelta(t, 0.2, rec.RelativeError, 1e-9)

	saved, err := s.db.LoadOutcomes(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestRecordOutcome_FromSavedRun(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	_, err := recordOutcome(ctx, s, testNow, 2, 100, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no saved projection")

	_, err = ingestFile(ctx, s, writeProcessed(t), testNow, true)
	require.NoError(t, err)
	projections, err := s.projectAll(testNow)
	require.NoError(t, err)
	_, _, err = saveRun(ctx, s.db, "project", "snap", testNow, projections)
	require.NoError(t, err)

	rec, err := recordOutcome(ctx, s, testNow.Add(2*time.Hour), 2, 300, nil)
	require.NoError(t, err)
	assert.Equal(t, projections[0].CumulativeUnits, rec.Projected)
}

func TestRecordOutcome_RejectsBadInput(t *testing.T) {
	s := newTestSession(t, nil)
	p := 1.0
	_, err := recordOutcome(context.Background(), s, testNow, 0, 10, &p)
	assert.Error(t, err)
	_, err = recordOutcome(context.Background(), s, testNow, 2, -1, &p)
	assert.Error(t, err)
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	historyData := []byte(`[
	  {"fecha": "2026-03-09T10:00:00Z", "hora": 10, "velocidad": 45, "bultos": 48, "paradas": 2, "tiempoMuerto": 3},
	  {"fecha": "not a date", "hora": 11, "velocidad": 40}
	]`)
	outcomeData := []byte(`[
	  {"fecha": "2026-03-09T12:00:00Z", "horizonte": 2, "valorReal": 100, "valorProyectado": 90, "errorAbsoluto": 10, "errorRelativo": 0.1}
	]`)

	res, err := importLegacy(ctx, s, historyData, outcomeData, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Samples)
	assert.Equal(t, 0, res.Pruned)
	assert.Equal(t, 1, res.Outcomes)

	samples, err := s.db.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 48.0, samples[0].Units)

	outcomes, err := s.db.LoadOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Horizon)
}

func TestImportLegacy_UnreadableOutcomesSkipped(t *testing.T) {
	s := newTestSession(t, nil)
	res, err := importLegacy(context.Background(), s, nil, []byte("{broken"), testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Outcomes)
	assert.Equal(t, 0, res.Samples)
}

func TestCategoryFilter(t *testing.T) {
	assert.NoError(t, validateCategory(""))
	assert.NoError(t, validateCategory(suggest.CategoryGap))
	assert.Error(t, validateCategory("urgent"))

	recs := []suggest.Recommendation{
		{Category: suggest.CategoryCritical, Horizon: 2},
		{Category: suggest.CategoryGap, Horizon: 2},
		{Category: suggest.CategoryGap, Horizon: 4},
	}
	assert.Len(t, filterByCategory(recs, ""), 3)
	gaps := filterByCategory(recs, suggest.CategoryGap)
	require.Len(t, gaps, 2)
	assert.Equal(t, 4, gaps[1].Horizon)
}

func TestWatchCycle_StaleWithoutSnapshot(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	state, err := watchCycle(testConfig(), db)(context.Background(), testNow)
	require.NoError(t, err)
	assert.True(t, state.Stale)
	assert.Empty(t, state.Projections)
}

func TestWatchCycle_ProjectsAndSavesRun(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := ingestFile(ctx, s, writeProcessed(t), testNow, true)
	require.NoError(t, err)

	cfg := testConfig()
	state, err := watchCycle(cfg, s.db)(ctx, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, state.Stale)
	assert.Equal(t, s.engine.Snapshot().ID, state.SnapshotID)
	assert.Len(t, state.Projections, len(cfg.Projection.Horizons))

	run, err := s.db.GetLatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "watch", run.Command)

	// Past the max age the snapshot is no longer projected.
	state, err = watchCycle(cfg, s.db)(ctx, testNow.Add(13*time.Hour))
	require.NoError(t, err)
	assert.True(t, state.Stale)
}

func TestPIDFile_RefusesLiveDaemon(t *testing.T) {
	pf := pidFile{path: filepath.Join(t.TempDir(), "watch.pid")}
	require.NoError(t, pf.acquire())

	pid, err := pf.read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	err = pf.acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	pf.release()
	_, err = pf.read()
	assert.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown", "k", 1)
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestSetupOutput_AppliesWidth(t *testing.T) {
	setupOutput(config.Output{Color: false, Width: 30})
	defer func() {
		output.SetWidth(0)
		output.SetNoColor(false)
	}()
	assert.True(t, output.IsNoColor())

	tbl := output.NewTable("Horizon", "Factors (h/f/t)").Flex(1)
	tbl.AddRow("+2h", "0.95/1.00/-0.04 0.95/1.00/-0.04")
	for _, line := range strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30, line)
	}
	assert.Contains(t, tbl.Render(), "...")
}

func TestImportLegacy_KeepsLocalHours(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	art := time.FixedZone("ART", -3*60*60)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, art)

	historyData := []byte(`[
	  {"fecha": "2026-03-10T01:30:00.000Z", "hora": 22, "velocidad": 40, "paradas": 1, "tiempoMuerto": 0}
	]`)
	res, err := importLegacy(ctx, s, historyData, nil, now)
	require.NoError(t, err)
	require.Equal(t, 1, res.Samples)

	samples, err := s.db.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 22, samples[0].Hour)
	assert.Equal(t, 9, samples[0].Timestamp.In(art).Day())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"horizon": 2}))
	assert.Equal(t, "{\n  \"horizon\": 2\n}\n", buf.String())
}
