package analyzer

import (
	"context"

	"github.com/blackwell-systems/shiftwatch/internal/history"
)

// HistoryRepository persists the hourly sample history.
type HistoryRepository interface {
	LoadHistory(ctx context.Context) ([]history.Sample, error)
	SaveHistory(ctx context.Context, samples []history.Sample) error
}

// OutcomeRepository persists the calibration log.
type OutcomeRepository interface {
	LoadOutcomes(ctx context.Context) ([]ErrorRecord, error)
	SaveOutcomes(ctx context.Context, records []ErrorRecord) error
}
