package instruments

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/queries"
	"limslite-service/internal/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var instrumentColumns = []string{"id", "model", "sn", "sw_version"}

func TestInstrumentPostgresRepository_FindByIdentity(t *testing.T) {
	repo := NewInstrumentPostgresRepository(zap.NewNop())

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
			WithArgs("c4800", "SN-1", "2.1.0.1522").
			WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(7, "c4800", "SN-1", "2.1.0.1522"))

		instrument, err := repo.FindByIdentity(context.Background(), db, "c4800", "SN-1", "2.1.0.1522")

		require.NoError(t, err)
		assert.Equal(t, &models.InstrumentInfo{ID: 7, Model: "c4800", SerialNumber: "SN-1", SoftwareVersion: "2.1.0.1522"}, instrument)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent returns nil", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
			WillReturnRows(sqlmock.NewRows(instrumentColumns))

		instrument, err := repo.FindByIdentity(context.Background(), db, "c4800", "SN-1", "2.1.0.1522")

		assert.NoError(t, err)
		assert.Nil(t, instrument)
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
			WillReturnError(errors.New("connection reset"))

		_, err = repo.FindByIdentity(context.Background(), db, "c4800", "SN-1", "2.1.0.1522")

		assert.True(t, exceptions.IsKind(err, exceptions.KindPersistenceError))
	})
}

func TestInstrumentPostgresRepository_LogsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := &instrumentPostgresRepository{Log: zap.New(core)}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstrumentByIdentity)).
		WillReturnRows(sqlmock.NewRows(instrumentColumns))

	ctx := utils.ContextWithRequestID(context.Background(), "LIMS_MLLP_conn-1")
	_, err = repo.FindByIdentity(ctx, db, "c4800", "SN-1", "2.1.0.1522")
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "LIMS_MLLP_conn-1", entry.ContextMap()[constvars.LoggingRequestIDKey], entry.Message)
	}
}

func TestInstrumentPostgresRepository_Insert(t *testing.T) {
	repo := NewInstrumentPostgresRepository(zap.NewNop())
	info := models.InstrumentInfo{Model: "c4800", SerialNumber: "SN-1", SoftwareVersion: "2.1.0.1522"}

	t.Run("created", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
			WithArgs("c4800", "SN-1", "2.1.0.1522").
			WillReturnRows(sqlmock.NewRows(instrumentColumns).AddRow(9, "c4800", "SN-1", "2.1.0.1522"))

		created, err := repo.Insert(context.Background(), db, info)

		require.NoError(t, err)
		assert.Equal(t, int64(9), created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a race", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstrument)).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err = repo.Insert(context.Background(), db, info)

		assert.True(t, exceptions.IsKind(err, exceptions.KindUniqueConstraintRace))
	})
}
