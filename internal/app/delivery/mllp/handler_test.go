package mllp

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"limslite-service/internal/app/config"
	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/app/services/core/assays"
	"limslite-service/internal/app/services/core/ingestion"
	"limslite-service/internal/app/services/core/instruments"
	"limslite-service/internal/app/services/core/resolver"
	"limslite-service/internal/app/services/core/results"
	"limslite-service/internal/app/services/core/runs"
	"limslite-service/internal/app/services/profiles/c4800"
	"limslite-service/internal/app/services/shared/noop"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/hl7"
	"limslite-service/internal/pkg/mllp"
	"limslite-service/internal/pkg/queries"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIngestion struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeIngestion) Ingest(ctx context.Context, extraction *models.MessageExtraction, raw []byte) (*models.IngestOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.IngestOutcome{Instrument: extraction.Instrument, ResultCount: len(extraction.Results)}, nil
}

func (f *fakeIngestion) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func loadFixture(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "testdata", "c4800.hl7"))
	require.NoError(t, err)
	return raw
}

func testConfig(keepAlive bool) *config.InternalConfig {
	return &config.InternalConfig{
		MLLP: config.AppMLLP{
			Address:                 "127.0.0.1:0",
			ReadTimeoutInSeconds:    5,
			WriteTimeoutInSeconds:   5,
			MaxFrameSizeInKilobyte:  64,
			KeepAlive:               keepAlive,
			PartialSpecimenPolicy:   constvars.PartialSpecimenPolicyReject,
			MessageLockTTLInSeconds: 30,
		},
		Lab: config.AppLab{
			RespondingApplication: "LIS",
			RespondingFacility:    "LIS Facility",
			Name:                  "ILB/VL-EID",
		},
	}
}

func newTestHandler(usecase contracts.IngestionUsecase, keepAlive bool) *Handler {
	logger := zap.NewNop()
	return NewHandler(testConfig(keepAlive), c4800.NewC4800Mapper(time.UTC, logger), usecase, nil, logger)
}

// exchange writes input to a served pipe and returns everything the handler
// wrote back before closing.
func exchange(t *testing.T, handler *Handler, input []byte) []byte {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		handler.Serve(context.Background(), server)
		close(done)
	}()

	go func() {
		_, _ = client.Write(input)
	}()

	output, err := io.ReadAll(client)
	require.NoError(t, err)
	client.Close()
	<-done
	return output
}

func parseAck(t *testing.T, framed []byte) (code, controlID, text string) {
	t.Helper()
	payload, err := mllp.Unwrap(framed)
	require.NoError(t, err)
	message, err := hl7.Parse(string(payload))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(message.Segments), 2)

	msa := message.Segments[1]
	require.Equal(t, "MSA", msa.Name)
	code, _ = msa.Value(1, 0, 0, 0, message.Delimiters)
	controlID, _ = msa.Value(2, 0, 0, 0, message.Delimiters)
	text, _ = msa.Value(3, 0, 0, 0, message.Delimiters)
	return code, controlID, text
}

func TestHandler_EndToEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zap.NewNop()
	entityResolver := resolver.NewEntityResolver(
		db,
		instruments.NewInstrumentPostgresRepository(logger),
		assays.NewAssayPostgresRepository(logger),
		runs.NewRunPostgresRepository(logger),
		results.NewResultPostgresRepository(logger),
		logger,
	)
	usecase := ingestion.NewIngestionUsecase(db, entityResolver, noop.NewLocker(), noop.NewArchiver(), noop.NewPublisher(), nil,
		ingestion.Options{MessageLockTTL: time.Second}, logger)

	instrumentColumns := []string{"id", "model", "sn", "sw_version"}
	assayColumns := []string{"id", "instrument_id", "lis_code", "name"}
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WithArgs("c4800", "C4800-00123", "2.1.0.1522").
		WillReturnRows(sqlmock.NewRows(instrumentColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
		WithArgs("c4800", "C4800-00123", "2.1.0.1522").
		WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(1, "c4800", "C4800-00123", "2.1.0.1522"))
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetAssayByLisCode)).
		WithArgs(int64(1), "HIV-1").
		WillReturnRows(sqlmock.NewRows(assayColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertAssay)).
		WithArgs(int64(1), "HIV-1", constvars.AssayPlaceholderName).
		WillReturnRows(sqlmock.NewRows(assayColumns).AddRow(1, 1, "HIV-1", constvars.AssayPlaceholderName))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertRunIfAbsent)).
		WithArgs(int64(1), sqlmock.AnyArg(), "MSG-000123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "instrument_id", "msg_ts", "msg_guid"}).
			AddRow(1, 1, time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC), "MSG-000123"))
	mock.ExpectExec(regexp.QuoteMeta(queries.InsertResult)).
		WithArgs(int64(1), int64(1), "P", "PLASMA", "PT-0001", "1.23E+04", "cp/mL", "F", "labtech01",
			sqlmock.AnyArg(), nil, "Repeat requested & verified", "DWP-0777", "MWP-0042", "A1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(queries.InsertResult)).
		WithArgs(int64(1), int64(1), "Q", "NEGCONTROL", "NC-0001", sqlmock.AnyArg(), "cp/mL", "F", "labtech01",
			sqlmock.AnyArg(), nil, "", "DWP-0777", "MWP-0042", "A2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	output := exchange(t, newTestHandler(usecase, false), mllp.Frame(loadFixture(t)))

	code, controlID, _ := parseAck(t, output)
	assert.Equal(t, constvars.AckCodeAccept, code)
	assert.Equal(t, "MSG-000123", controlID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_MalformedFramingIsRejected(t *testing.T) {
	usecase := &fakeIngestion{}

	output := exchange(t, newTestHandler(usecase, false), []byte("MSH|^~\\&|no start block\r"))

	assert.Equal(t, constvars.FrameRejectionNotice, string(output))
	assert.Equal(t, 0, usecase.Calls())
}

func TestHandler_FrameTooLargeClosesSilently(t *testing.T) {
	usecase := &fakeIngestion{}
	oversized := mllp.Frame([]byte("MSH|^~\\&|" + strings.Repeat("A", 70*1024)))

	output := exchange(t, newTestHandler(usecase, false), oversized)

	assert.Empty(t, output)
	assert.Equal(t, 0, usecase.Calls())
}

func TestHandler_KeepAliveServesSeveralFrames(t *testing.T) {
	usecase := &fakeIngestion{}
	fixture := loadFixture(t)
	second := []byte(strings.Replace(string(fixture), "MSG-000123", "MSG-000124", 1))
	input := append(mllp.Frame(fixture), mllp.Frame(second)...)

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		newTestHandler(usecase, true).Serve(context.Background(), server)
		close(done)
	}()
	go func() {
		_, _ = client.Write(input)
	}()

	reader := mllp.NewReader(client, 0)
	for _, expected := range []string{"MSG-000123", "MSG-000124"} {
		payload, err := reader.ReadFrame()
		require.NoError(t, err)
		code, controlID, _ := parseAck(t, mllp.Frame(payload))
		assert.Equal(t, constvars.AckCodeAccept, code)
		assert.Equal(t, expected, controlID)
	}

	client.Close()
	<-done
	assert.Equal(t, 2, usecase.Calls())
}

func TestHandler_Process(t *testing.T) {
	fixture := string(loadFixture(t))

	tests := []struct {
		name      string
		payload   string
		usecase   *fakeIngestion
		code      string
		controlID string
		text      string
		calls     int
	}{
		{
			name:      "accepted",
			payload:   fixture,
			usecase:   &fakeIngestion{},
			code:      constvars.AckCodeAccept,
			controlID: "MSG-000123",
			calls:     1,
		},
		{
			name:      "persistence failure",
			payload:   fixture,
			usecase:   &fakeIngestion{err: exceptions.ErrPostgresDBInsertData(errors.New("connection refused"))},
			code:      constvars.AckCodeError,
			controlID: "MSG-000123",
			text:      "failed to insert data into database",
			calls:     1,
		},
		{
			name:      "message in progress",
			payload:   fixture,
			usecase:   &fakeIngestion{err: exceptions.ErrMessageInProgress(nil)},
			code:      constvars.AckCodeError,
			controlID: "MSG-000123",
			text:      "in progress",
			calls:     1,
		},
		{
			name:      "unsupported message type",
			payload:   strings.Replace(fixture, "OUL^R22^OUL_R22", "ORU^R01^ORU_R01", 1),
			usecase:   &fakeIngestion{},
			code:      constvars.AckCodeReject,
			controlID: "MSG-000123",
			text:      "ORU^R01",
		},
		{
			name:      "software version missing",
			payload:   strings.Replace(fixture, "cobas 4800 SW 2.1.0.1522", "cobas 4800", 1),
			usecase:   &fakeIngestion{},
			code:      constvars.AckCodeError,
			controlID: "MSG-000123",
			text:      "version",
		},
		{
			name:      "unknown segment",
			payload:   strings.TrimRight(fixture, "\r\n") + "\rZZZ|1",
			usecase:   &fakeIngestion{},
			code:      constvars.AckCodeError,
			controlID: "MSG-000123",
			text:      "ZZZ",
		},
		{
			name:      "bad segment after a readable header",
			payload:   strings.Replace(fixture, "ORC|SC", "O|SC", 1),
			usecase:   &fakeIngestion{},
			code:      constvars.AckCodeError,
			controlID: "MSG-000123",
		},
		{
			name:    "unreadable header",
			payload: "PID|1||PT-0001",
			usecase: &fakeIngestion{},
			code:    constvars.AckCodeReject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(tt.usecase, false)

			ack := handler.Process(context.Background(), mllp.NormalizeLineEndings([]byte(tt.payload)))

			code, controlID, text := parseAck(t, ack)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.controlID, controlID)
			if tt.text != "" {
				assert.Contains(t, text, tt.text)
			}
			assert.Equal(t, tt.calls, tt.usecase.Calls())
		})
	}
}

type panickingIngestion struct{}

func (panickingIngestion) Ingest(ctx context.Context, extraction *models.MessageExtraction, raw []byte) (*models.IngestOutcome, error) {
	panic("nil map write")
}

func TestHandler_ProcessRecoversFromPanic(t *testing.T) {
	handler := newTestHandler(panickingIngestion{}, false)

	ack := handler.Process(context.Background(), mllp.NormalizeLineEndings(loadFixture(t)))

	code, controlID, _ := parseAck(t, ack)
	assert.Equal(t, constvars.AckCodeError, code)
	assert.Equal(t, "MSG-000123", controlID)
}

func TestAckText(t *testing.T) {
	t.Run("keeps short messages", func(t *testing.T) {
		assert.Equal(t, "line one line two", ackText(errors.New("line one\rline two")))
	})

	t.Run("cuts on a rune boundary", func(t *testing.T) {
		text := ackText(errors.New(strings.Repeat("a", maxAckTextLength-1) + "é and more"))

		assert.True(t, utf8.ValidString(text))
		assert.Equal(t, strings.Repeat("a", maxAckTextLength-1), text)
	})

	t.Run("uses the developer message", func(t *testing.T) {
		err := exceptions.ErrMessageInProgress(nil)
		assert.Equal(t, err.DevMessage, ackText(err))
	})
}
