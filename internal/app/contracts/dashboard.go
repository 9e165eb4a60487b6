package contracts

import (
	"context"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/dto/requests"
	"limslite-service/internal/pkg/dto/responses"
)

type DashboardUsecase interface {
	ListRuns(ctx context.Context, request *requests.ListRuns) ([]responses.Run, int, error)
	ListRunResults(ctx context.Context, runID int64) ([]responses.Result, error)
	ExportRunResults(ctx context.Context, runID int64) ([]models.RunResultRow, error)
}
