package dashboard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/dto/requests"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type DashboardController struct {
	Log              *zap.Logger
	DashboardUsecase contracts.DashboardUsecase
	Now              func() time.Time
}

func NewDashboardController(logger *zap.Logger, dashboardUsecase contracts.DashboardUsecase) *DashboardController {
	return &DashboardController{
		Log:              logger,
		DashboardUsecase: dashboardUsecase,
		Now:              time.Now,
	}
}

func (ctrl *DashboardController) ListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := utils.RequestIDFromContext(r.Context())
	ctrl.Log.Info("DashboardController.ListRuns called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	request := &requests.ListRuns{Pagination: *utils.BuildPaginationRequest(r)}
	if raw := r.URL.Query().Get("instrument_id"); raw != "" {
		instrumentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, "instrument_id"))
			return
		}
		request.InstrumentID = instrumentID
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	runs, total, err := ctrl.DashboardUsecase.ListRuns(ctx, request)
	if err != nil {
		ctrl.respondUsecaseError(w, "DashboardController.ListRuns", requestID, err)
		return
	}

	pagination := utils.BuildPaginationResponse(total, request.Page, request.PageSize, r.URL.Path)
	ctrl.Log.Info("DashboardController.ListRuns succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingRunCountKey, len(runs)),
	)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.ResponseRunsFetched, pagination, runs)
}

func (ctrl *DashboardController) ListRunResults(w http.ResponseWriter, r *http.Request) {
	requestID := utils.RequestIDFromContext(r.Context())
	ctrl.Log.Info("DashboardController.ListRunResults called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	runID, err := utils.ParseIDParam(chi.URLParam(r, constvars.URLParamRunID))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamRunID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	results, err := ctrl.DashboardUsecase.ListRunResults(ctx, runID)
	if err != nil {
		ctrl.respondUsecaseError(w, "DashboardController.ListRunResults", requestID, err)
		return
	}

	ctrl.Log.Info("DashboardController.ListRunResults succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(results)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseResultsFetched, results)
}

// ExportRunResults streams the results of one run as a CSV attachment.
func (ctrl *DashboardController) ExportRunResults(w http.ResponseWriter, r *http.Request) {
	requestID := utils.RequestIDFromContext(r.Context())
	ctrl.Log.Info("DashboardController.ExportRunResults called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	runID, err := utils.ParseIDParam(chi.URLParam(r, constvars.URLParamRunID))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamRunID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := ctrl.DashboardUsecase.ExportRunResults(ctx, runID)
	if err != nil {
		ctrl.respondUsecaseError(w, "DashboardController.ExportRunResults", requestID, err)
		return
	}

	fileName := fmt.Sprintf(constvars.ResultsCSVFileNameFormat, ctrl.Now().Format(constvars.ResultsCSVTimeLayout), runID)
	w.Header().Set(constvars.HeaderContentType, constvars.MIMETextCSV)
	w.Header().Set(constvars.HeaderContentDisposition, fmt.Sprintf(constvars.HeaderAttachmentFormat, fileName))
	w.WriteHeader(constvars.StatusOK)

	if err := writeResultsCSV(w, rows); err != nil {
		// headers are already sent
		ctrl.Log.Error("DashboardController.ExportRunResults error writing csv",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}

	ctrl.Log.Info("DashboardController.ExportRunResults succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResultCountKey, len(rows)),
	)
}

func (ctrl *DashboardController) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseServiceHealthy, nil)
}

func (ctrl *DashboardController) respondUsecaseError(w http.ResponseWriter, operation, requestID string, err error) {
	ctrl.Log.Error(operation+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}

func writeResultsCSV(w http.ResponseWriter, rows []models.RunResultRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.ResultsCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.CSVRecord()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
