package results

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/queries"
	"limslite-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type resultPostgresRepository struct {
	Log *zap.Logger
}

var (
	resultPostgresRepositoryInstance contracts.ResultRepository
	onceResultPostgresRepository     sync.Once
)

func NewResultPostgresRepository(logger *zap.Logger) contracts.ResultRepository {
	onceResultPostgresRepository.Do(func() {
		instance := &resultPostgresRepository{
			Log: logger,
		}
		resultPostgresRepositoryInstance = instance
	})
	return resultPostgresRepositoryInstance
}

// InsertMany writes records in order. Run it on a transaction so a failure
// leaves none of them behind.
func (repo *resultPostgresRepository) InsertMany(ctx context.Context, q contracts.Querier, records []models.ResultRecord) error {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("resultPostgresRepository.InsertMany called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(records)),
	)

	for _, record := range records {
		controlCts, err := record.ControlCtColumn()
		if err != nil {
			repo.Log.Error("resultPostgresRepository.InsertMany error encoding control cts",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSampleIDKey, record.SampleID),
				zap.Error(err),
			)
			return exceptions.ErrCannotMarshalJSON(err)
		}

		flags := record.Flags
		if flags == nil {
			flags = []string{}
		}

		_, err = q.ExecContext(ctx, queries.InsertResult,
			record.RunID,
			record.AssayID,
			record.SampleRole,
			record.SampleType,
			record.SampleID,
			record.Result,
			record.Units,
			record.ResultStatus,
			record.OperatorUsername,
			pq.Array(flags),
			controlCts,
			record.Comments,
			record.DryWellID,
			record.MasterWellID,
			record.MasterWellPosition,
			nullTime(record.StartTimestamp),
			nullTime(record.EndTimestamp),
		)
		if err != nil {
			repo.Log.Error("resultPostgresRepository.InsertMany error executing query",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSampleIDKey, record.SampleID),
				zap.Error(err),
			)
			return exceptions.ErrPostgresDBInsertData(err)
		}
	}

	repo.Log.Info("resultPostgresRepository.InsertMany succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(records)),
	)
	return nil
}

func (repo *resultPostgresRepository) FindByRunID(ctx context.Context, q contracts.Querier, runID int64) ([]models.RunResultRow, error) {
	requestID := utils.RequestIDFromContext(ctx)
	repo.Log.Info("resultPostgresRepository.FindByRunID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, runID),
	)

	rows, err := q.QueryContext(ctx, queries.GetResultsByRunID, runID)
	if err != nil {
		repo.Log.Error("resultPostgresRepository.FindByRunID error executing query",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	results := make([]models.RunResultRow, 0)
	for rows.Next() {
		var (
			row        models.RunResultRow
			flags      []string
			startTime  sql.NullTime
			endTime    sql.NullTime
			controlCts []byte
		)
		err := rows.Scan(
			&row.ID,
			&row.RunID,
			&row.AssayID,
			&row.LisCode,
			&row.InstrumentSW,
			&row.Record.SampleRole,
			&row.Record.SampleType,
			&row.Record.SampleID,
			&row.Record.Result,
			&row.Record.Units,
			&row.Record.ResultStatus,
			&row.Record.OperatorUsername,
			pq.Array(&flags),
			&controlCts,
			&row.Record.Comments,
			&row.Record.DryWellID,
			&row.Record.MasterWellID,
			&row.Record.MasterWellPosition,
			&startTime,
			&endTime,
		)
		if err != nil {
			repo.Log.Error("resultPostgresRepository.FindByRunID error scanning row",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrPostgresDBFindData(err)
		}

		row.Record.RunID = row.RunID
		row.Record.AssayID = row.AssayID
		row.Record.LisCode = row.LisCode
		row.Record.Flags = flags
		row.Record.StartTimestamp = startTime.Time
		row.Record.EndTimestamp = endTime.Time
		if len(controlCts) > 0 {
			row.ControlCtRawJSON = controlCts
			if err := json.Unmarshal(controlCts, &row.Record.ControlCtValues); err != nil {
				repo.Log.Error("resultPostgresRepository.FindByRunID error decoding control cts",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Int64(constvars.LoggingRunIDKey, runID),
					zap.Error(err),
				)
				return nil, exceptions.ErrCannotParseJSON(err)
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		repo.Log.Error("resultPostgresRepository.FindByRunID error iterating rows",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}

	repo.Log.Info("resultPostgresRepository.FindByRunID succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(results)),
	)
	return results, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
