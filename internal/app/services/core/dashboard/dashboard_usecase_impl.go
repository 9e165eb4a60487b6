package dashboard

import (
	"context"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/dto/requests"
	"limslite-service/internal/pkg/dto/responses"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// dashboardUsecase serves read-only views over stored runs. It never writes.
type dashboardUsecase struct {
	DB               contracts.Querier
	RunRepository    contracts.RunRepository
	ResultRepository contracts.ResultRepository
	Log              *zap.Logger
}

func NewDashboardUsecase(
	db contracts.Querier,
	runRepository contracts.RunRepository,
	resultRepository contracts.ResultRepository,
	logger *zap.Logger,
) contracts.DashboardUsecase {
	return &dashboardUsecase{
		DB:               db,
		RunRepository:    runRepository,
		ResultRepository: resultRepository,
		Log:              logger,
	}
}

func (uc *dashboardUsecase) ListRuns(ctx context.Context, request *requests.ListRuns) ([]responses.Run, int, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("dashboardUsecase.ListRuns called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInstrumentIDKey, request.InstrumentID),
	)

	if err := utils.ValidateStruct(request); err != nil {
		uc.Log.Error("dashboardUsecase.ListRuns invalid request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, exceptions.ErrInputValidation(err)
	}

	total, err := uc.RunRepository.CountSummaries(ctx, uc.DB, request.InstrumentID)
	if err != nil {
		uc.Log.Error("dashboardUsecase.ListRuns error counting runs",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	offset := (request.Page - 1) * request.PageSize
	summaries, err := uc.RunRepository.FindSummaries(ctx, uc.DB, request.InstrumentID, request.PageSize, offset)
	if err != nil {
		uc.Log.Error("dashboardUsecase.ListRuns error fetching runs",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	response := make([]responses.Run, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, summary.ConvertIntoResponse())
	}

	uc.Log.Info("dashboardUsecase.ListRuns succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingRunCountKey, len(response)),
	)
	return response, total, nil
}

func (uc *dashboardUsecase) ListRunResults(ctx context.Context, runID int64) ([]responses.Result, error) {
	rows, err := uc.runResults(ctx, "dashboardUsecase.ListRunResults", runID)
	if err != nil {
		return nil, err
	}

	response := make([]responses.Result, 0, len(rows))
	for _, row := range rows {
		response = append(response, row.ConvertIntoResponse())
	}
	return response, nil
}

func (uc *dashboardUsecase) ExportRunResults(ctx context.Context, runID int64) ([]models.RunResultRow, error) {
	return uc.runResults(ctx, "dashboardUsecase.ExportRunResults", runID)
}

// runResults loads the results of an existing run. An unknown run is
// NotFound, while a run without results yields an empty list.
func (uc *dashboardUsecase) runResults(ctx context.Context, operation string, runID int64) ([]models.RunResultRow, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info(operation+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, runID),
	)

	run, err := uc.RunRepository.FindByID(ctx, uc.DB, runID)
	if err != nil {
		uc.Log.Error(operation+" error fetching run",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if run == nil {
		uc.Log.Warn(operation+" run not found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingRunIDKey, runID),
		)
		return nil, exceptions.ErrResourceNotFound(nil, constvars.ResourceRuns)
	}

	rows, err := uc.ResultRepository.FindByRunID(ctx, uc.DB, runID)
	if err != nil {
		uc.Log.Error(operation+" error fetching results",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info(operation+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(rows)),
	)
	return rows, nil
}
