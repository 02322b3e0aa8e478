package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/shift"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"golang.org/x/sync/errgroup"
)

// session bundles the loaded configuration, the database and a restored
// projection engine for one command invocation.
type session struct {
	cfg      *config.Config
	db       *store.DB
	engine   *analyzer.Engine
	snapshot *shift.Snapshot
	ownsDB   bool
}

// openSession loads config, opens the database and restores engine state.
// tune, when non-nil, adjusts the engine parameters before construction.
func openSession(ctx context.Context, tune func(*analyzer.Config)) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg.Output)

	db, err := store.Open(config.DBPath(), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := newSession(ctx, cfg, db, tune)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// newSession builds an engine over db and loads the live snapshot, history
// and outcome log concurrently.
func newSession(ctx context.Context, cfg *config.Config, db *store.DB, tune func(*analyzer.Config)) (*session, error) {
	engineCfg, err := cfg.Projection.ToAnalyzer()
	if err != nil {
		return nil, err
	}
	if tune != nil {
		tune(&engineCfg)
	}
	engine, err := analyzer.NewEngine(engineCfg,
		analyzer.WithLogger(logger),
		analyzer.WithHistoryRepository(db),
		analyzer.WithOutcomeRepository(db),
	)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, db: db, engine: engine}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		engine.Restore(gctx)
		return nil
	})
	g.Go(func() error {
		snap, err := db.LoadSnapshot(gctx)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		s.snapshot = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.snapshot != nil {
		if err := engine.SetSnapshot(*s.snapshot); err != nil {
			logger.WarnContext(ctx, "ignoring invalid stored snapshot", "error", err)
			s.snapshot = nil
		}
	}
	return s, nil
}

// Close releases the database if the session opened it.
func (s *session) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// projectAll projects every configured horizon, translating the missing
// snapshot case into a user-facing error.
func (s *session) projectAll(now time.Time) ([]analyzer.Projection, error) {
	projections, err := s.engine.ProjectAll(now)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoCurrentData) {
			return nil, fmt.Errorf("%w: run 'shiftwatch ingest <file>' first", err)
		}
		return nil, err
	}
	return projections, nil
}
