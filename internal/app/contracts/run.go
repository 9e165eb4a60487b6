package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type RunRepository interface {
	// InsertIfAbsent returns the new run, or nil when a run with the same
	// instrument and message guid already exists.
	InsertIfAbsent(ctx context.Context, q Querier, run models.RunInfo) (*models.RunInfo, error)
	FindByMessageGUID(ctx context.Context, q Querier, instrumentID int64, messageGUID string) (*models.RunInfo, error)
	FindByID(ctx context.Context, q Querier, runID int64) (*models.RunInfo, error)
	FindSummaries(ctx context.Context, q Querier, instrumentID int64, limit, offset int) ([]models.RunSummary, error)
	CountSummaries(ctx context.Context, q Querier, instrumentID int64) (int, error)
}
