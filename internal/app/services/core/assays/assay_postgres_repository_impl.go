package assays

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

type assayPostgresRepository struct {
	Log *zap.Logger
}

var (
	assayPostgresRepositoryInstance contracts.AssayRepository
	onceAssayPostgresRepository     sync.Once
)

func NewAssayPostgresRepository(logger *zap.Logger) contracts.AssayRepository {
	onceAssayPostgresRepository.Do(func() {
		instance := &assayPostgresRepository{
			Log: logger,
		}
		assayPostgresRepositoryInstance = instance
	})
	return assayPostgresRepositoryInstance
}

func (repo *assayPostgresRepository) FindByLisCode(ctx context.Context, q contracts.Querier, instrumentID int64, lisCode string) (*models.AssayInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("assayPostgresRepository.FindByLisCode called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrumentID),
		zap.String(constvars.LoggingLisCodeKey, lisCode),
	)

	var assay models.AssayInfo
	err := q.QueryRowContext(ctx, queries.GetAssayByLisCode, instrumentID, lisCode).
		Scan(&assay.ID, &assay.InstrumentID, &assay.LisCode, &assay.Name)
	if errors.Is(err, sql.ErrNoRows) {
		repo.Log.Info("assayPostgresRepository.FindByLisCode no rows found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	} else if err != nil {
		repo.Log.Error("assayPostgresRepository.FindByLisCode error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	repo.Log.Info("assayPostgresRepository.FindByLisCode succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAssayIDKey, assay.ID),
	)
	return &assay, nil
}

func (repo *assayPostgresRepository) Insert(ctx context.Context, q contracts.Querier, instrumentID int64, lisCode, name string) (*models.AssayInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("assayPostgresRepository.Insert called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrumentID),
		zap.String(constvars.LoggingLisCodeKey, lisCode),
	)

	var assay models.AssayInfo
	err := q.QueryRowContext(ctx, queries.InsertAssay, instrumentID, lisCode, name).
		Scan(&assay.ID, &assay.InstrumentID, &assay.LisCode, &assay.Name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			repo.Log.Warn("assayPostgresRepository.Insert unique constraint race",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrUniqueConstraintRace(err, constvars.ResourceAssays)
		}
		repo.Log.Error("assayPostgresRepository.Insert error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	repo.Log.Info("assayPostgresRepository.Insert succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAssayIDKey, assay.ID),
	)
	return &assay, nil
}
