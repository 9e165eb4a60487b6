package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type InstrumentRepository interface {
	FindByIdentity(ctx context.Context, q Querier, model, serialNumber, softwareVersion string) (*models.InstrumentInfo, error)
	Insert(ctx context.Context, q Querier, instrument models.InstrumentInfo) (*models.InstrumentInfo, error)
}
