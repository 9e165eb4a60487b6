package c4800

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/hl7"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "..", "testdata", "c4800.hl7"))
	require.NoError(t, err)
	return string(raw)
}

func extract(t *testing.T, payload string) (*models.MessageExtraction, error) {
	t.Helper()
	mapper := NewC4800Mapper(time.UTC, zap.NewNop())

	message, err := hl7.Parse(payload)
	require.NoError(t, err)
	root, err := hl7.Build(message, mapper.Structure())
	require.NoError(t, err)

	return mapper.Extract(context.Background(), message, root)
}

func TestExtract_Fixture(t *testing.T) {
	extraction, err := extract(t, loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "MSG-000123", extraction.ControlID)
	assert.True(t, extraction.MessageTimestamp.Equal(time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, models.InstrumentInfo{Model: "c4800", SerialNumber: "C4800-00123", SoftwareVersion: "2.1.0.1522"}, extraction.Instrument)
	assert.Empty(t, extraction.Failures)
	require.Len(t, extraction.Results, 2)

	patient := extraction.Results[0]
	assert.Equal(t, "P", patient.SampleRole)
	assert.Equal(t, "PLASMA", patient.SampleType)
	assert.Equal(t, "PT-0001", patient.SampleID)
	assert.Equal(t, "HIV-1", patient.LisCode)
	assert.Equal(t, "1.23E+04", patient.Result)
	assert.Equal(t, "cp/mL", patient.Units)
	assert.Equal(t, "F", patient.ResultStatus)
	assert.Equal(t, "labtech01", patient.OperatorUsername)
	assert.Equal(t, []string{"HIGH", "LOW"}, patient.Flags)
	assert.Nil(t, patient.ControlCtValues)
	assert.Equal(t, "Repeat requested & verified", patient.Comments)
	assert.Equal(t, "DWP-0777", patient.DryWellID)
	assert.Equal(t, "MWP-0042", patient.MasterWellID)
	assert.Equal(t, "A1", patient.MasterWellPosition)
	assert.Equal(t, time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC), patient.StartTimestamp)
	assert.Equal(t, time.Date(2023, 6, 15, 13, 30, 0, 0, time.UTC), patient.EndTimestamp)

	control := extraction.Results[1]
	assert.Equal(t, "Q", control.SampleRole)
	assert.Equal(t, "NEGCONTROL", control.SampleType)
	assert.Equal(t, "NC-0001", control.SampleID)
	assert.Equal(t, "Target Not Detected", control.Result)
	assert.Empty(t, control.Flags)
	assert.Nil(t, control.ControlCtValues)
	assert.Empty(t, control.Comments)
	assert.Equal(t, "A2", control.MasterWellPosition)
}

func TestExtract_PositiveControlReadsCts(t *testing.T) {
	payload := strings.Replace(loadFixture(t), "INV|NEGCONTROL", "INV|POSCONTROL", 1)

	extraction, err := extract(t, payload)
	require.NoError(t, err)
	require.Len(t, extraction.Results, 2)

	assert.Equal(t, "POSCONTROL", extraction.Results[1].SampleType)
	assert.Equal(t, map[string]float64{"FAM": 0, "HEX": 31.5}, extraction.Results[1].ControlCtValues)
}

func TestExtract_UnknownSoftwareVersion(t *testing.T) {
	payload := strings.Replace(loadFixture(t), "cobas 4800 SW 2.1.0.1522", "cobas 4800 SW", 1)

	_, err := extract(t, payload)

	assert.Equal(t, exceptions.KindVersionPatternNotFound, exceptions.KindOf(err))
}

func TestExtract_BadSpecimenDoesNotAbortSiblings(t *testing.T) {
	payload := strings.Replace(loadFixture(t), "SPM|2|NC-0001&ROCHE|||||||||Q^Control", "SPM|2|NC-0001&ROCHE", 1)

	extraction, err := extract(t, payload)
	require.NoError(t, err)

	require.Len(t, extraction.Results, 1)
	assert.Equal(t, "PT-0001", extraction.Results[0].SampleID)
	require.Len(t, extraction.Failures, 1)
	assert.Equal(t, 1, extraction.Failures[0].Index)
	assert.Equal(t, "NC-0001", extraction.Failures[0].SampleID)
	assert.True(t, exceptions.IsKind(extraction.Failures[0].Err, exceptions.KindFieldExtractionError))
	assert.Contains(t, extraction.Failures[0].Err.Error(), "SPECIMEN[1].SPM[0]-11.1")
}

func TestExtract_MissingContainerFailsSpecimen(t *testing.T) {
	payload := strings.Replace(loadFixture(t), "SAC|||DWP\nINV|DWP||||DWP-0777\n", "", 1)

	extraction, err := extract(t, payload)
	require.NoError(t, err)

	require.Len(t, extraction.Results, 1)
	assert.Equal(t, "NC-0001", extraction.Results[0].SampleID)
	assert.Equal(t, "DWP-0777", extraction.Results[0].DryWellID)
	require.Len(t, extraction.Failures, 1)
	assert.Equal(t, 0, extraction.Failures[0].Index)
	assert.True(t, exceptions.IsKind(extraction.Failures[0].Err, exceptions.KindFieldExtractionError))
	assert.Contains(t, extraction.Failures[0].Err.Error(), "SPECIMEN[0].CONTAINER[2].INV[0]-5.1")
}

func TestExtract_MissingControlID(t *testing.T) {
	payload := strings.Replace(loadFixture(t), "|MSG-000123|", "||", 1)

	_, err := extract(t, payload)

	assert.Equal(t, exceptions.KindFieldExtractionError, exceptions.KindOf(err))
}

func TestProcessResult(t *testing.T) {
	tests := map[string]string{
		"12345678cp/mL": "12345678",
		"1.23E+04CP/ML": "1.23E+04",
		"TND":           "TND",
		"500cp/mL":      "500",
		"":              "",
	}
	for raw, expected := range tests {
		assert.Equal(t, expected, ProcessResult(raw), raw)
	}
}

func TestParseFlags(t *testing.T) {
	assert.Equal(t, []string{}, ParseFlags("NT NONE"))
	assert.Equal(t, []string{"HIGH", "LOW"}, ParseFlags("NT HIGH,LOW"))
	assert.Equal(t, []string{"NONE", "HIGH"}, ParseFlags("FLNONE,HIGH"))
	assert.Equal(t, []string{}, ParseFlags(""))
	assert.Equal(t, []string{}, ParseFlags("FL"))
}

func TestParseControlCts(t *testing.T) {
	cts, err := ParseControlCts("FAM,28.1;HEX,31.5;")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"FAM": 28.1, "HEX": 31.5}, cts)

	_, err = ParseControlCts("FAM;HEX,31.5")
	assert.Error(t, err)

	_, err = ParseControlCts("FAM,abc")
	assert.Error(t, err)

	_, err = ParseControlCts("")
	assert.Error(t, err)
}

func TestParseSoftwareVersion(t *testing.T) {
	version, ok := ParseSoftwareVersion("cobas 4800 SW 2.1.0.1522")
	assert.True(t, ok)
	assert.Equal(t, "2.1.0.1522", version)

	_, ok = ParseSoftwareVersion("cobas 4800 SW 2.1.0.15")
	assert.False(t, ok)
}
