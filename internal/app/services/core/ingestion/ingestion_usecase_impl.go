package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/drivers/database"
	"limslite-service/internal/app/models"
	"limslite-service/internal/app/services/shared/metrics"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/hl7"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type ingestionUsecase struct {
	DB                   *sql.DB
	EntityResolver       contracts.EntityResolver
	LockerService        contracts.LockerService
	MessageArchiver      contracts.MessageArchiver
	RunEventPublisher    contracts.RunEventPublisher
	Metrics              *metrics.IngestMetrics
	SkipInvalidSpecimens bool
	MessageLockTTL       time.Duration
	Log                  *zap.Logger
}

type Options struct {
	SkipInvalidSpecimens bool
	MessageLockTTL       time.Duration
}

func NewIngestionUsecase(
	db *sql.DB,
	entityResolver contracts.EntityResolver,
	lockerService contracts.LockerService,
	messageArchiver contracts.MessageArchiver,
	runEventPublisher contracts.RunEventPublisher,
	ingestMetrics *metrics.IngestMetrics,
	options Options,
	logger *zap.Logger,
) contracts.IngestionUsecase {
	return &ingestionUsecase{
		DB:                   db,
		EntityResolver:       entityResolver,
		LockerService:        lockerService,
		MessageArchiver:      messageArchiver,
		RunEventPublisher:    runEventPublisher,
		Metrics:              ingestMetrics,
		SkipInvalidSpecimens: options.SkipInvalidSpecimens,
		MessageLockTTL:       options.MessageLockTTL,
		Log:                  logger,
	}
}

// Ingest stores the run and results of one extracted message. Instruments
// and assays are resolved on the pool; the run and its results are written
// in one transaction. A message that was already stored is reported as a
// duplicate and nothing is written.
func (uc *ingestionUsecase) Ingest(ctx context.Context, extraction *models.MessageExtraction, raw []byte) (*models.IngestOutcome, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("ingestionUsecase.Ingest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingControlIDKey, extraction.ControlID),
		zap.Int(constvars.LoggingResultCountKey, len(extraction.Results)),
		zap.Int(constvars.LoggingSkippedCountKey, len(extraction.Failures)),
	)

	if err := uc.applySpecimenPolicy(extraction); err != nil {
		uc.Log.Error("ingestionUsecase.Ingest specimen policy rejected message",
			append([]zap.Field{zap.String(constvars.LoggingRequestIDKey, requestID)}, utils.ErrorFields(err)...)...,
		)
		return nil, err
	}

	lockKey := fmt.Sprintf(constvars.RedisKeyMessageLockFormat, extraction.ControlID)
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, uc.MessageLockTTL)
	if err != nil {
		uc.Log.Warn("ingestionUsecase.Ingest lock unavailable, continuing without it",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	} else if !acquired {
		return nil, exceptions.ErrMessageInProgress(nil)
	} else {
		defer func() {
			if err := uc.LockerService.Unlock(ctx, lockKey, lockValue); err != nil {
				uc.Log.Warn("ingestionUsecase.Ingest error releasing lock",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Error(err),
				)
			}
		}()
	}

	// an archive failure is logged and does not block persistence
	_ = utils.LogOperation(uc.Log, "ingestionUsecase.Ingest archive", requestID, func() error {
		_, err := uc.MessageArchiver.Archive(ctx, extraction.ControlID, time.Now(), raw)
		return err
	})

	start := time.Now()
	outcome, err := uc.persist(ctx, extraction)
	uc.Metrics.ObserveStage(metrics.StagePersist, time.Since(start))
	if err != nil {
		uc.Log.Error("ingestionUsecase.Ingest error persisting message",
			append([]zap.Field{zap.String(constvars.LoggingRequestIDKey, requestID)}, utils.ErrorFields(err)...)...,
		)
		return nil, err
	}
	outcome.Skipped = extraction.Failures
	uc.Metrics.ResultsCommitted(outcome.ResultCount)

	event := models.RunIngestedEvent{
		RunID:        outcome.Run.ID,
		InstrumentID: outcome.Instrument.ID,
		MsgGUID:      outcome.Run.MessageGUID,
		MsgTimestamp: outcome.Run.MessageTimestamp,
		ResultCount:  outcome.ResultCount,
		Duplicate:    outcome.Duplicate,
	}
	if err := uc.RunEventPublisher.PublishRunIngested(ctx, event); err != nil {
		uc.Log.Warn("ingestionUsecase.Ingest error publishing run event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	uc.Log.Info("ingestionUsecase.Ingest succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingRunIDKey, outcome.Run.ID),
		zap.Int(constvars.LoggingResultCountKey, outcome.ResultCount),
		zap.Bool(constvars.LoggingDuplicateKey, outcome.Duplicate),
	)
	return outcome, nil
}

func (uc *ingestionUsecase) persist(ctx context.Context, extraction *models.MessageExtraction) (*models.IngestOutcome, error) {
	instrument, err := uc.EntityResolver.ResolveInstrument(ctx, extraction.Instrument)
	if err != nil {
		return nil, err
	}

	assayIDs := make(map[string]int64)
	records := make([]models.ResultRecord, len(extraction.Results))
	for i, record := range extraction.Results {
		assayID, ok := assayIDs[record.LisCode]
		if !ok {
			assay, err := uc.EntityResolver.ResolveAssay(ctx, instrument.ID, record.LisCode)
			if err != nil {
				return nil, err
			}
			assayID = assay.ID
			assayIDs[record.LisCode] = assayID
		}
		record.AssayID = assayID
		records[i] = record
	}

	outcome := &models.IngestOutcome{Instrument: *instrument}
	err = database.WithTransaction(ctx, uc.DB, func(tx *sql.Tx) error {
		run, duplicate, err := uc.EntityResolver.CreateRun(ctx, tx, models.RunInfo{
			InstrumentID:     instrument.ID,
			MessageTimestamp: extraction.MessageTimestamp,
			MessageGUID:      extraction.ControlID,
		})
		if err != nil {
			return err
		}
		outcome.Run = *run
		outcome.Duplicate = duplicate
		if duplicate {
			return nil
		}

		for i := range records {
			records[i].RunID = run.ID
		}
		if err := uc.EntityResolver.PersistResults(ctx, tx, records); err != nil {
			return err
		}
		outcome.ResultCount = len(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applySpecimenPolicy fails the message when any specimen could not be
// extracted, unless skipping is enabled and at least one specimen is valid.
func (uc *ingestionUsecase) applySpecimenPolicy(extraction *models.MessageExtraction) error {
	if len(extraction.Failures) == 0 {
		return nil
	}
	if uc.SkipInvalidSpecimens && len(extraction.Results) > 0 {
		return nil
	}

	paths := make([]string, 0, len(extraction.Failures))
	reasons := make([]string, 0, len(extraction.Failures))
	for _, failure := range extraction.Failures {
		paths = append(paths, fmt.Sprintf("%s[%d]", hl7.GroupSpecimen, failure.Index))
		reasons = append(reasons, failure.Err.Error())
	}
	// the reasons are flattened so the listing is not folded into the
	// first failure's error
	return exceptions.ErrFieldExtraction(errors.New(strings.Join(reasons, "; ")), strings.Join(paths, ", "))
}
