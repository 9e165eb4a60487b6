package resolver

import (
	"context"
	"database/sql"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// entityResolver gets or creates instruments and assays on the pool. Runs and
// results are written through the querier handed in by the caller, normally
// a transaction.
type entityResolver struct {
	DB                   *sql.DB
	InstrumentRepository contracts.InstrumentRepository
	AssayRepository      contracts.AssayRepository
	RunRepository        contracts.RunRepository
	ResultRepository     contracts.ResultRepository
	Log                  *zap.Logger
}

func NewEntityResolver(
	db *sql.DB,
	instrumentRepository contracts.InstrumentRepository,
	assayRepository contracts.AssayRepository,
	runRepository contracts.RunRepository,
	resultRepository contracts.ResultRepository,
	logger *zap.Logger,
) contracts.EntityResolver {
	return &entityResolver{
		DB:                   db,
		InstrumentRepository: instrumentRepository,
		AssayRepository:      assayRepository,
		RunRepository:        runRepository,
		ResultRepository:     resultRepository,
		Log:                  logger,
	}
}

func (r *entityResolver) ResolveInstrument(ctx context.Context, instrument models.InstrumentInfo) (*models.InstrumentInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	r.Log.Info("entityResolver.ResolveInstrument called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInstrumentKey, instrument.String()),
	)

	find := func() (*models.InstrumentInfo, error) {
		return r.InstrumentRepository.FindByIdentity(ctx, r.DB, instrument.Model, instrument.SerialNumber, instrument.SoftwareVersion)
	}

	existing, err := find()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.Log.Info("entityResolver.ResolveInstrument found existing instrument",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInstrumentIDKey, existing.ID),
		)
		return existing, nil
	}

	created, err := r.InstrumentRepository.Insert(ctx, r.DB, instrument)
	if err == nil {
		r.Log.Info("entityResolver.ResolveInstrument created instrument",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInstrumentIDKey, created.ID),
		)
		return created, nil
	}
	if !exceptions.IsKind(err, exceptions.KindUniqueConstraintRace) {
		return nil, err
	}

	r.Log.Warn("entityResolver.ResolveInstrument lost insert race, retrying lookup",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return retryAfterRace(find, err)
}

// ResolveAssay creates missing assays with a placeholder name. An existing
// name is never overwritten.
func (r *entityResolver) ResolveAssay(ctx context.Context, instrumentID int64, lisCode string) (*models.AssayInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	r.Log.Info("entityResolver.ResolveAssay called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrumentID),
		zap.String(constvars.LoggingLisCodeKey, lisCode),
	)

	find := func() (*models.AssayInfo, error) {
		return r.AssayRepository.FindByLisCode(ctx, r.DB, instrumentID, lisCode)
	}

	existing, err := find()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := r.AssayRepository.Insert(ctx, r.DB, instrumentID, lisCode, constvars.AssayPlaceholderName)
	if err == nil {
		r.Log.Info("entityResolver.ResolveAssay created assay",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAssayIDKey, created.ID),
		)
		return created, nil
	}
	if !exceptions.IsKind(err, exceptions.KindUniqueConstraintRace) {
		return nil, err
	}

	r.Log.Warn("entityResolver.ResolveAssay lost insert race, retrying lookup",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return retryAfterRace(find, err)
}

func (r *entityResolver) CreateRun(ctx context.Context, q contracts.Querier, run models.RunInfo) (*models.RunInfo, bool, error) {
	requestID := utils.RequestIDFromContext(ctx)

	created, err := r.RunRepository.InsertIfAbsent(ctx, q, run)
	if err != nil {
		return nil, false, err
	}
	if created != nil {
		return created, false, nil
	}

	existing, err := r.RunRepository.FindByMessageGUID(ctx, q, run.InstrumentID, run.MessageGUID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, exceptions.ErrPostgresDBFindData(exceptions.ErrResourceNotFound(nil, constvars.ResourceRuns))
	}

	r.Log.Info("entityResolver.CreateRun message already ingested",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, existing.ID),
		zap.String(constvars.LoggingControlIDKey, existing.MessageGUID),
	)
	return existing, true, nil
}

func (r *entityResolver) PersistResults(ctx context.Context, q contracts.Querier, records []models.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.ResultRepository.InsertMany(ctx, q, records)
}

// retryAfterRace looks the row up once more after another writer won the
// insert. A second miss is a persistence failure.
func retryAfterRace[T any](find func() (*T, error), raceErr error) (*T, error) {
	existing, err := find()
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, exceptions.ErrPostgresDBFindData(raceErr)
	}
	return existing, nil
}
