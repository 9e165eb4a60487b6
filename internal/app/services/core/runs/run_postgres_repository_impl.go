package runs

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

type runPostgresRepository struct {
	Log *zap.Logger
}

var (
	runPostgresRepositoryInstance contracts.RunRepository
	onceRunPostgresRepository     sync.Once
)

func NewRunPostgresRepository(logger *zap.Logger) contracts.RunRepository {
	onceRunPostgresRepository.Do(func() {
		instance := &runPostgresRepository{
			Log: logger,
		}
		runPostgresRepositoryInstance = instance
	})
	return runPostgresRepositoryInstance
}

func (repo *runPostgresRepository) InsertIfAbsent(ctx context.Context, q contracts.Querier, run models.RunInfo) (*models.RunInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("runPostgresRepository.InsertIfAbsent called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, run.InstrumentID),
		zap.String(constvars.LoggingControlIDKey, run.MessageGUID),
	)

	var created models.RunInfo
	err := q.QueryRowContext(ctx, queries.InsertRunIfAbsent, run.InstrumentID, run.MessageTimestamp, run.MessageGUID).
		Scan(&created.ID, &created.InstrumentID, &created.MessageTimestamp, &created.MessageGUID)
	if errors.Is(err, sql.ErrNoRows) {
		repo.Log.Info("runPostgresRepository.InsertIfAbsent run already exists",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	} else if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, exceptions.ErrUniqueConstraintRace(err, constvars.ResourceRuns)
		}
		repo.Log.Error("runPostgresRepository.InsertIfAbsent error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	repo.Log.Info("runPostgresRepository.InsertIfAbsent succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, created.ID),
	)
	return &created, nil
}

func (repo *runPostgresRepository) FindByMessageGUID(ctx context.Context, q contracts.Querier, instrumentID int64, messageGUID string) (*models.RunInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("runPostgresRepository.FindByMessageGUID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrumentID),
		zap.String(constvars.LoggingControlIDKey, messageGUID),
	)

	return repo.findOne(ctx, q, "runPostgresRepository.FindByMessageGUID", queries.GetRunByMessageGUID, instrumentID, messageGUID)
}

func (repo *runPostgresRepository) FindByID(ctx context.Context, q contracts.Querier, runID int64) (*models.RunInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("runPostgresRepository.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, runID),
	)

	return repo.findOne(ctx, q, "runPostgresRepository.FindByID", queries.GetRunByID, runID)
}

func (repo *runPostgresRepository) findOne(ctx context.Context, q contracts.Querier, operation, query string, args ...interface{}) (*models.RunInfo, error) {
	requestID := utils.RequestIDFromContext(ctx)

	var run models.RunInfo
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&run.ID, &run.InstrumentID, &run.MessageTimestamp, &run.MessageGUID)
	if errors.Is(err, sql.ErrNoRows) {
		repo.Log.Info(operation+" no rows found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	} else if err != nil {
		repo.Log.Error(operation+" error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}

	repo.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, run.ID),
	)
	return &run, nil
}

func (repo *runPostgresRepository) FindSummaries(ctx context.Context, q contracts.Querier, instrumentID int64, limit, offset int) ([]models.RunSummary, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("runPostgresRepository.FindSummaries called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, instrumentID),
	)

	rows, err := q.QueryContext(ctx, queries.GetRunSummaries, instrumentID, limit, offset)
	if err != nil {
		repo.Log.Error("runPostgresRepository.FindSummaries error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	summaries := make([]models.RunSummary, 0)
	for rows.Next() {
		var summary models.RunSummary
		err := rows.Scan(
			&summary.ID,
			&summary.InstrumentID,
			&summary.MessageTimestamp,
			&summary.MessageGUID,
			&summary.Instrument.Model,
			&summary.Instrument.SerialNumber,
			&summary.Instrument.SoftwareVersion,
			&summary.ResultCount,
		)
		if err != nil {
			repo.Log.Error("runPostgresRepository.FindSummaries error scanning row",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		summary.Instrument.ID = summary.InstrumentID
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		repo.Log.Error("runPostgresRepository.FindSummaries error iterating rows",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}

	repo.Log.Info("runPostgresRepository.FindSummaries succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingRunCountKey, len(summaries)),
	)
	return summaries, nil
}

func (repo *runPostgresRepository) CountSummaries(ctx context.Context, q contracts.Querier, instrumentID int64) (int, error) {
	requestID := utils.RequestIDFromContext(ctx)

	var total int
	if err := q.QueryRowContext(ctx, queries.CountRunSummaries, instrumentID).Scan(&total); err != nil {
		repo.Log.Error("runPostgresRepository.CountSummaries error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0, exceptions.ErrPostgresDBFindData(err)
	}
	return total, nil
}
