package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type EntityResolver interface {
	ResolveInstrument(ctx context.Context, instrument models.InstrumentInfo) (*models.InstrumentInfo, error)
	ResolveAssay(ctx context.Context, instrumentID int64, lisCode string) (*models.AssayInfo, error)
	// CreateRun reports duplicate=true with the stored run when the message
	// was already ingested.
	CreateRun(ctx context.Context, q Querier, run models.RunInfo) (created *models.RunInfo, duplicate bool, err error)
	PersistResults(ctx context.Context, q Querier, records []models.ResultRecord) error
}
