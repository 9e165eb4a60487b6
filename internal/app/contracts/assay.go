package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type AssayRepository interface {
	FindByLisCode(ctx context.Context, q Querier, instrumentID int64, lisCode string) (*models.AssayInfo, error)
	Insert(ctx context.Context, q Querier, instrumentID int64, lisCode, name string) (*models.AssayInfo, error)
}
