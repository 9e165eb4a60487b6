package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type ResultRepository interface {
	InsertMany(ctx context.Context, q Querier, records []models.ResultRecord) error
	FindByRunID(ctx context.Context, q Querier, runID int64) ([]models.RunResultRow, error)
}
