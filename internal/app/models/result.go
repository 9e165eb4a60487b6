package models

import (
	"strings"
	"time"

	"limslite-service/internal/pkg/dto/responses"

	"github.com/goccy/go-json"
)

// ResultRecord is one specimen result. LisCode is carried from extraction
// so the assay can be resolved; it is not a results column.
type ResultRecord struct {
	RunID              int64              `json:"run_id"`
	AssayID            int64              `json:"assay_id"`
	LisCode            string             `json:"lis_code" validate:"required"`
	SampleRole         string             `json:"sample_role" validate:"required,oneof=P Q"`
	SampleType         string             `json:"sample_type"`
	SampleID           string             `json:"sample_id" validate:"required"`
	Result             string             `json:"result"`
	Units              string             `json:"units"`
	ResultStatus       string             `json:"result_status"`
	OperatorUsername   string             `json:"username"`
	Flags              []string           `json:"flags"`
	ControlCtValues    map[string]float64 `json:"cntrl_cts"`
	Comments           string             `json:"comments"`
	DryWellID          string             `json:"dwp_id"`
	MasterWellID       string             `json:"mwp_id"`
	MasterWellPosition string             `json:"mwp_position"`
	StartTimestamp     time.Time          `json:"start_ts"`
	EndTimestamp       time.Time          `json:"end_ts"`
}

// ControlCtColumn renders ControlCtValues for the jsonb column. Specimens
// without control values store NULL.
func (r ResultRecord) ControlCtColumn() (interface{}, error) {
	if len(r.ControlCtValues) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(r.ControlCtValues)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// RunResultRow is a stored result joined with its assay LIS code and the
// instrument software version.
type RunResultRow struct {
	ID               int64
	RunID            int64
	AssayID          int64
	LisCode          string
	InstrumentSW     string
	Record           ResultRecord
	ControlCtRawJSON []byte
}

func (r RunResultRow) ConvertIntoResponse() responses.Result {
	return responses.Result{
		ID:         r.ID,
		RunID:      r.RunID,
		AssayID:    r.AssayID,
		LisCode:    r.LisCode,
		SampleRole: r.Record.SampleRole,
		SampleType: r.Record.SampleType,
		SampleID:   r.Record.SampleID,
		Result:     r.Record.Result,
		Units:      r.Record.Units,
		Status:     r.Record.ResultStatus,
		Username:   r.Record.OperatorUsername,
		Flags:      r.Record.Flags,
		ControlCts: r.Record.ControlCtValues,
		Comments:   r.Record.Comments,
		MwpID:      r.Record.MasterWellID,
		MwpPos:     r.Record.MasterWellPosition,
		DwpID:      r.Record.DryWellID,
		StartTime:  optionalTime(r.Record.StartTimestamp),
		EndTime:    optionalTime(r.Record.EndTimestamp),
	}
}

// ResultsCSVHeader is the column order of the results export.
var ResultsCSVHeader = []string{
	"assay", "instrument_sw", "sample_role", "sample_type", "sample_id", "result", "units",
	"result_status", "username", "flags", "cntrl_cts", "comments", "dwp_id", "mwp_id",
	"mwp_position", "start_ts", "end_ts",
}

func (r RunResultRow) CSVRecord() []string {
	return []string{
		r.LisCode,
		r.InstrumentSW,
		r.Record.SampleRole,
		r.Record.SampleType,
		r.Record.SampleID,
		r.Record.Result,
		r.Record.Units,
		r.Record.ResultStatus,
		r.Record.OperatorUsername,
		strings.Join(r.Record.Flags, ","),
		string(r.ControlCtRawJSON),
		r.Record.Comments,
		r.Record.DryWellID,
		r.Record.MasterWellID,
		r.Record.MasterWellPosition,
		formatCSVTime(r.Record.StartTimestamp),
		formatCSVTime(r.Record.EndTimestamp),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
