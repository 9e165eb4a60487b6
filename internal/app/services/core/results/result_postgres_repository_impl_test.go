package results

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/queries"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var resultColumns = []string{
	"id", "run_id", "assay_id", "lis_code", "sw_version", "sample_role", "sample_type", "sample_id",
	"result", "units", "result_status", "username", "flags", "cntrl_cts", "comments", "dwp_id",
	"mwp_id", "mwp_position", "start_ts", "end_ts",
}

func TestResultPostgresRepository_InsertMany(t *testing.T) {
	repo := NewResultPostgresRepository(zap.NewNop())
	records := []models.ResultRecord{
		{RunID: 1, AssayID: 2, SampleRole: "P", SampleID: "PT-0001", Result: "1.23E+04", Units: "cp/mL", Flags: []string{"HIGH"}},
		{RunID: 1, AssayID: 2, SampleRole: "Q", SampleID: "NC-0001", ControlCtValues: map[string]float64{"HEX": 31.5}},
	}

	t.Run("all rows written", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(queries.InsertResult)).
			WithArgs(int64(1), int64(2), "P", "", "PT-0001", "1.23E+04", "cp/mL", "", "",
				sqlmock.AnyArg(), nil, "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(queries.InsertResult)).
			WithArgs(int64(1), int64(2), "Q", "", "NC-0001", "", "", "", "",
				sqlmock.AnyArg(), `{"HEX":31.5}`, "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))

		err = repo.InsertMany(context.Background(), db, records)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at first failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(queries.InsertResult)).
			WillReturnError(errors.New("disk full"))

		err = repo.InsertMany(context.Background(), db, records)

		assert.True(t, exceptions.IsKind(err, exceptions.KindPersistenceError))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResultPostgresRepository_FindByRunID(t *testing.T) {
	repo := NewResultPostgresRepository(zap.NewNop())
	start := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 15, 13, 30, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queries.GetResultsByRunID)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(resultColumns).
			AddRow(10, 1, 2, "HIV-1", "2.1.0.1522", "P", "PLASMA", "PT-0001", "1.23E+04", "cp/mL", "F",
				"labtech01", "{HIGH,LOW}", nil, "Repeat requested", "DWP-0777", "MWP-0042", "A1", start, end).
			AddRow(11, 1, 2, "HIV-1", "2.1.0.1522", "Q", "", "NC-0001", "Target Not Detected", "", "F",
				"", "{}", []byte(`{"FAM":0,"HEX":31.5}`), "", "", "MWP-0042", "A2", nil, nil))

	rows, err := repo.FindByRunID(context.Background(), db, 1)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "HIV-1", rows[0].LisCode)
	assert.Equal(t, []string{"HIGH", "LOW"}, rows[0].Record.Flags)
	assert.Nil(t, rows[0].ControlCtRawJSON)
	assert.Equal(t, start, rows[0].Record.StartTimestamp)
	assert.Equal(t, "labtech01", rows[0].Record.OperatorUsername)

	assert.Equal(t, map[string]float64{"FAM": 0, "HEX": 31.5}, rows[1].Record.ControlCtValues)
	assert.Empty(t, rows[1].Record.Flags)
	assert.True(t, rows[1].Record.EndTimestamp.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}
