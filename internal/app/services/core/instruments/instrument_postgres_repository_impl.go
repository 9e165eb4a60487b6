package instruments

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/drivers/database"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/queries"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type instrumentPostgresRepository struct {
	Log *zap.Logger
}

var (
	instrumentPostgresRepositoryInstance contracts.InstrumentRepository
	onceInstrumentPostgresRepository     sync.Once
)

func NewInstrumentPostgresRepository(logger *zap.Logger) contracts.InstrumentRepository {
	onceInstrumentPostgresRepository.Do(func() {
		instance := &instrumentPostgresRepository{
			Log: logger,
		}
		instrumentPostgresRepositoryInstance = instance
	})
	return instrumentPostgresRepositoryInstance
}

func (repo *instrumentPostgresRepository) FindByIdentity(ctx context.Context, q contracts.Querier, model, serialNumber, softwareVersion string) (*models.InstrumentInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("instrumentPostgresRepository.FindByIdentity called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInstrumentKey, model+"/"+serialNumber+"/"+softwareVersion),
	)

	var instrument models.InstrumentInfo
	err := q.QueryRowContext(ctx, queries.GetInstrumentByIdentity, model, serialNumber, softwareVersion).
		Scan(&instrument.ID, &instrument.Model, &instrument.SerialNumber, &instrument.SoftwareVersion)
	if errors.Is(err, sql.ErrNoRows) {
		repo.Log.Info("instrumentPostgresRepository.FindByIdentity no rows found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	} else if err != nil {
		repo.Log.Error("instrumentPostgresRepository.FindByIdentity error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	repo.Log.Info("instrumentPostgresRepository.FindByIdentity succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrument.ID),
	)
	return &instrument, nil
}

// Insert returns a UniqueConstraintRace error when another writer inserted
// the same identity first.
func (repo *instrumentPostgresRepository) Insert(ctx context.Context, q contracts.Querier, instrument models.InstrumentInfo) (*models.InstrumentInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("instrumentPostgresRepository.Insert called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInstrumentKey, instrument.String()),
	)

	var created models.InstrumentInfo
	err := q.QueryRowContext(ctx, queries.InsertInstrument, instrument.Model, instrument.SerialNumber, instrument.SoftwareVersion).
		Scan(&created.ID, &created.Model, &created.SerialNumber, &created.SoftwareVersion)
	if err != nil {
		if database.IsUniqueViolation(err) {
			repo.Log.Warn("instrumentPostgresRepository.Insert unique constraint race",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrUniqueConstraintRace(err, constvars.ResourceInstruments)
		}
		repo.Log.Error("instrumentPostgresRepository.Insert error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	repo.Log.Info("instrumentPostgresRepository.Insert succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, created.ID),
	)
	return &created, nil
}
