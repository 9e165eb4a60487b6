package mllp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"limslite-service/internal/app/config"
	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/services/shared/metrics"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/hl7"
	"limslite-service/internal/pkg/mllp"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// Connection states
const (
	StateAwaitingFrame = "awaiting_frame"
	StateParsing       = "parsing"
	StateExtracting    = "extracting"
	StatePersisting    = "persisting"
	StateAcknowledging = "acknowledging"
	StateClosed        = "closed"
)

const maxAckTextLength = 200

// Handler drives one connection through frame, parse, extract, persist and
// acknowledge. It holds no per-connection state, so one Handler serves every
// connection.
type Handler struct {
	MLLP             config.AppMLLP
	Responder        hl7.Responder
	Mapper           contracts.MessageMapper
	IngestionUsecase contracts.IngestionUsecase
	Metrics          *metrics.IngestMetrics
	Log              *zap.Logger
	Now              func() time.Time
}

func NewHandler(
	internalConfig *config.InternalConfig,
	mapper contracts.MessageMapper,
	ingestionUsecase contracts.IngestionUsecase,
	ingestMetrics *metrics.IngestMetrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		MLLP: internalConfig.MLLP,
		Responder: hl7.Responder{
			Application: internalConfig.Lab.RespondingApplication,
			Facility:    internalConfig.Lab.RespondingFacility,
			LabName:     internalConfig.Lab.Name,
		},
		Mapper:           mapper,
		IngestionUsecase: ingestionUsecase,
		Metrics:          ingestMetrics,
		Log:              logger,
		Now:              time.Now,
	}
}

// Serve owns conn until it returns and always closes it.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) {
	connectionID := utils.GenerateConnectionID()
	ctx = utils.ContextWithRequestID(ctx, connectionID)
	log := h.Log.With(
		zap.String(constvars.LoggingRequestIDKey, connectionID),
		zap.String(constvars.LoggingRemoteAddrKey, conn.RemoteAddr().String()),
	)
	defer func() {
		conn.Close()
		log.Info("mllp.Handler.Serve connection closed", zap.String(constvars.LoggingStateKey, StateClosed))
	}()
	log.Info("mllp.Handler.Serve connection accepted")

	reader := mllp.NewReader(conn, h.MLLP.MaxFrameSize())
	for {
		log.Debug("mllp.Handler.Serve state", zap.String(constvars.LoggingStateKey, StateAwaitingFrame))
		if timeout := h.MLLP.ReadTimeout(); timeout > 0 {
			_ = conn.SetReadDeadline(h.Now().Add(timeout))
		}

		payload, err := reader.ReadFrame()
		if err != nil {
			h.handleReadError(conn, log, err)
			return
		}
		h.Metrics.FrameRead(metrics.FrameAccepted)
		log.Info("mllp.Handler.Serve frame received", zap.Int(constvars.LoggingFrameSizeKey, len(payload)))

		ack := h.Process(ctx, payload)

		log.Debug("mllp.Handler.Serve state", zap.String(constvars.LoggingStateKey, StateAcknowledging))
		if err := h.write(conn, ack); err != nil {
			log.Error("mllp.Handler.Serve error writing acknowledgment", zap.Error(err))
			return
		}

		if !h.MLLP.KeepAlive {
			return
		}
	}
}

func (h *Handler) handleReadError(conn net.Conn, log *zap.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Info("mllp.Handler.Serve peer closed connection")
	case errors.As(err, &netErr) && netErr.Timeout():
		h.Metrics.FrameRead(metrics.FrameTimeout)
		log.Warn("mllp.Handler.Serve read deadline exceeded")
	case exceptions.IsKind(err, exceptions.KindFrameRejected):
		h.Metrics.FrameRead(metrics.FrameRejected)
		log.Warn("mllp.Handler.Serve frame rejected", utils.ErrorFields(err)...)
		if writeErr := h.write(conn, []byte(constvars.FrameRejectionNotice)); writeErr != nil {
			log.Error("mllp.Handler.Serve error writing rejection notice", zap.Error(writeErr))
		}
	case exceptions.IsKind(err, exceptions.KindFrameTooLarge):
		h.Metrics.FrameRead(metrics.FrameTooLarge)
		log.Warn("mllp.Handler.Serve frame too large", utils.ErrorFields(err)...)
	default:
		log.Error("mllp.Handler.Serve error reading frame", zap.Error(err))
	}
}

func (h *Handler) write(conn net.Conn, data []byte) error {
	if timeout := h.MLLP.WriteTimeout(); timeout > 0 {
		_ = conn.SetWriteDeadline(h.Now().Add(timeout))
	}
	_, err := conn.Write(data)
	return err
}

// Process turns one frame payload into a framed acknowledgment. It never
// fails: every error becomes an AE or AR acknowledgment.
func (h *Handler) Process(ctx context.Context, payload []byte) (response []byte) {
	requestID := utils.RequestIDFromContext(ctx)
	started := h.Now()
	defer func() {
		if rec := recover(); rec != nil {
			h.Log.Error("mllp.Handler.Process recovered from panic",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			response = h.rejectUnparsed(ctx, payload, exceptions.ErrServerProcess(fmt.Errorf("panic: %v", rec)))
		}
		h.Metrics.ObserveStage(metrics.StageTotal, h.Now().Sub(started))
	}()

	h.Log.Debug("mllp.Handler.Process state",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingStateKey, StateParsing),
	)
	message, err := hl7.Parse(string(payload))
	h.Metrics.ObserveStage(metrics.StageParse, h.Now().Sub(started))
	if err != nil {
		return h.rejectUnparsed(ctx, payload, err)
	}

	if messageType := message.MessageType(); messageType != constvars.HL7MessageTypeOULR22 {
		err := exceptions.ErrUnsupportedMessage(nil, messageType)
		return h.ack(ctx, message, hl7.AckReject, err)
	}

	root, err := hl7.Build(message, h.Mapper.Structure())
	if err != nil {
		return h.ack(ctx, message, hl7.AckError, err)
	}

	h.Log.Debug("mllp.Handler.Process state",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingStateKey, StateExtracting),
	)
	extractStarted := h.Now()
	extraction, err := h.Mapper.Extract(ctx, message, root)
	h.Metrics.ObserveStage(metrics.StageExtract, h.Now().Sub(extractStarted))
	if err != nil {
		return h.ack(ctx, message, hl7.AckError, err)
	}

	h.Log.Debug("mllp.Handler.Process state",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingStateKey, StatePersisting),
	)
	if _, err := h.IngestionUsecase.Ingest(ctx, extraction, payload); err != nil {
		return h.ack(ctx, message, hl7.AckError, err)
	}
	return h.ack(ctx, message, hl7.AckAccept, nil)
}

// rejectUnparsed answers a payload the parser refused. When the header line
// alone still parses its control id is echoed with AE; otherwise the sender
// gets AR with an empty id.
func (h *Handler) rejectUnparsed(ctx context.Context, payload []byte, err error) []byte {
	normalized := string(mllp.NormalizeLineEndings(payload))
	headerLine, _, _ := strings.Cut(strings.TrimLeft(normalized, string(hl7.SegmentTerminator)), string(hl7.SegmentTerminator))

	header, headerErr := hl7.Parse(headerLine)
	if headerErr != nil || header.ControlID() == "" {
		return h.ack(ctx, nil, hl7.AckReject, err)
	}
	return h.ack(ctx, header, hl7.AckError, err)
}

func (h *Handler) ack(ctx context.Context, message *hl7.Message, kind hl7.AckKind, cause error) []byte {
	requestID := utils.RequestIDFromContext(ctx)

	request := hl7.AckRequest{Kind: kind}
	if message != nil {
		request.ControlID = message.ControlID()
		request.SendingApplication = message.SendingApplication()
	}

	fields := []zap.Field{
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingControlIDKey, request.ControlID),
		zap.String(constvars.LoggingAckCodeKey, string(kind)),
	}
	if cause != nil {
		request.Text = ackText(cause)
		h.Log.Warn("mllp.Handler.Process message not accepted", append(fields, utils.ErrorFields(cause)...)...)
	} else {
		h.Log.Info("mllp.Handler.Process message accepted", fields...)
	}

	ack, err := hl7.BuildAck(h.Responder, request, h.Now())
	if err != nil {
		// unreachable with the kinds used above
		h.Log.Error("mllp.Handler.Process error building acknowledgment", append(fields, zap.Error(err))...)
		return nil
	}
	h.Metrics.AckSent(string(kind))
	return ack
}

// ackText is the MSA-3 text for cause: the developer message without
// caller locations, cut to a length instruments accept.
func ackText(cause error) string {
	text := cause.Error()
	var customErr *exceptions.CustomError
	if errors.As(cause, &customErr) && customErr.DevMessage != "" {
		text = customErr.DevMessage
	}
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > maxAckTextLength {
		cut := maxAckTextLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
