package resolver

import (
	"context"
	"regexp"
	"testing"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/app/services/core/assays"
	"limslite-service/internal/app/services/core/instruments"
	"limslite-service/internal/app/services/core/results"
	"limslite-service/internal/app/services/core/runs"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/queries"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	instrumentColumns = []string{"id", "model", "sn", "sw_version"}
	assayColumns      = []string{"id", "instrument_id", "lis_code", "name"}
	runColumns        = []string{"id", "instrument_id", "msg_ts", "msg_guid"}
)

func newTestResolver(t *testing.T) (contracts.EntityResolver, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	resolver := NewEntityResolver(
		db,
		instruments.NewInstrumentPostgresRepository(logger),
		assays.NewAssayPostgresRepository(logger),
		runs.NewRunPostgresRepository(logger),
		results.NewResultPostgresRepository(logger),
		logger,
	)
	return resolver, mock
}

func TestEntityResolver_ResolveInstrument_IsIdempotent(t *testing.T) {
	resolver, mock := newTestResolver(t)
	info := models.InstrumentInfo{Model: "C4800", SerialNumber: "C4800-00123", SoftwareVersion: "2.1.0.1522"}

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WithArgs("C4800", "C4800-00123", "2.1.0.1522").
		WillReturnRows(sqlmock.NewRows(instrumentColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
		WithArgs("C4800", "C4800-00123", "2.1.0.1522").
		WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(5, "C4800", "C4800-00123", "2.1.0.1522"))
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WithArgs("C4800", "C4800-00123", "2.1.0.1522").
		WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(5, "C4800", "C4800-00123", "2.1.0.1522"))

	first, err := resolver.ResolveInstrument(context.Background(), info)
	require.NoError(t, err)
	second, err := resolver.ResolveInstrument(context.Background(), info)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_ResolveInstrument_RetriesLookupAfterRace(t *testing.T) {
	resolver, mock := newTestResolver(t)
	info := models.InstrumentInfo{Model: "C4800", SerialNumber: "C4800-00123", SoftwareVersion: "2.1.0.1522"}

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WillReturnRows(sqlmock.NewRows(instrumentColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(8, "C4800", "C4800-00123", "2.1.0.1522"))

	instrument, err := resolver.ResolveInstrument(context.Background(), info)

	require.NoError(t, err)
	assert.Equal(t, int64(8), instrument.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_ResolveInstrument_SecondMissIsPersistenceError(t *testing.T) {
	resolver, mock := newTestResolver(t)
	info := models.InstrumentInfo{Model: "C4800", SerialNumber: "C4800-00123", SoftwareVersion: "2.1.0.1522"}

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WillReturnRows(sqlmock.NewRows(instrumentColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WillReturnRows(sqlmock.NewRows(instrumentColumns))

	_, err := resolver.ResolveInstrument(context.Background(), info)

	assert.Equal(t, exceptions.KindPersistenceError, exceptions.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_ResolveAssay_CreatesPlaceholder(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetAssayByLisCode)).
		WithArgs(int64(5), "HIV-1").
		WillReturnRows(sqlmock.NewRows(assayColumns))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertAssay)).
		WithArgs(int64(5), "HIV-1", constvars.AssayPlaceholderName).
		WillReturnRows(sqlmock.NewRows(assayColumns).AddRow(2, 5, "HIV-1", constvars.AssayPlaceholderName))

	assay, err := resolver.ResolveAssay(context.Background(), 5, "HIV-1")

	require.NoError(t, err)
	assert.Equal(t, int64(2), assay.ID)
	assert.Equal(t, constvars.AssayPlaceholderName, assay.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_ResolveAssay_KeepsExistingName(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetAssayByLisCode)).
		WithArgs(int64(5), "HIV-1").
		WillReturnRows(sqlmock.NewRows(assayColumns).AddRow(2, 5, "HIV-1", "HIV-1 Viral Load"))

	assay, err := resolver.ResolveAssay(context.Background(), 5, "HIV-1")

	require.NoError(t, err)
	assert.Equal(t, "HIV-1 Viral Load", assay.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_CreateRun(t *testing.T) {
	timestamp := time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)
	run := models.RunInfo{InstrumentID: 5, MessageTimestamp: timestamp, MessageGUID: "MSG-000123"}

	t.Run("new run", func(t *testing.T) {
		resolver, mock := newTestResolver(t)

		mock.ExpectQuery(regexp.QuoteMeta(queries.InsertRunIfAbsent)).
			WillReturnRows(sqlmock.NewRows(runColumns).AddRow(30, 5, timestamp, "MSG-000123"))

		created, duplicate, err := resolver.CreateRun(context.Background(), resolverDB(t, resolver), run)

		require.NoError(t, err)
		assert.False(t, duplicate)
		assert.Equal(t, int64(30), created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redelivered message", func(t *testing.T) {
		resolver, mock := newTestResolver(t)

		mock.ExpectQuery(regexp.QuoteMeta(queries.InsertRunIfAbsent)).
			WillReturnRows(sqlmock.NewRows(runColumns))
		mock.ExpectQuery(regexp.QuoteMeta(queries.GetRunByMessageGUID)).
			WithArgs(int64(5), "MSG-000123").
			WillReturnRows(sqlmock.NewRows(runColumns).AddRow(30, 5, timestamp, "MSG-000123"))

		existing, duplicate, err := resolver.CreateRun(context.Background(), resolverDB(t, resolver), run)

		require.NoError(t, err)
		assert.True(t, duplicate)
		assert.Equal(t, int64(30), existing.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntityResolver_PersistResults_SkipsEmpty(t *testing.T) {
	resolver, mock := newTestResolver(t)

	err := resolver.PersistResults(context.Background(), resolverDB(t, resolver), nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func resolverDB(t *testing.T, resolver contracts.EntityResolver) contracts.Querier {
	t.Helper()
	impl, ok := resolver.(*entityResolver)
	require.True(t, ok)
	return impl.DB
}
