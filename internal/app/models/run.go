package models

import (
	"time"

	"limslite-service/internal/pkg/dto/responses"
)

type RunInfo struct {
	ID               int64     `json:"id"`
	InstrumentID     int64     `json:"instrument_id"`
	MessageTimestamp time.Time `json:"msg_ts"`
	MessageGUID      string    `json:"msg_guid"`
}

// RunSummary is a run joined with its instrument for listing.
type RunSummary struct {
	RunInfo
	Instrument  InstrumentInfo
	ResultCount int
}

func (r RunSummary) ConvertIntoResponse() responses.Run {
	timestamp := r.MessageTimestamp
	return responses.Run{
		ID:           r.ID,
		InstrumentID: r.InstrumentID,
		Model:        r.Instrument.Model,
		SerialNumber: r.Instrument.SerialNumber,
		SWVersion:    r.Instrument.SoftwareVersion,
		MsgGUID:      r.MessageGUID,
		MsgTimestamp: &timestamp,
		ResultCount:  r.ResultCount,
	}
}

// RunIngestedEvent is published once a run and its results are committed.
type RunIngestedEvent struct {
	RunID        int64     `json:"run_id"`
	InstrumentID int64     `json:"instrument_id"`
	MsgGUID      string    `json:"msg_guid"`
	MsgTimestamp time.Time `json:"msg_ts"`
	ResultCount  int       `json:"result_count"`
	Duplicate    bool      `json:"duplicate"`
}
