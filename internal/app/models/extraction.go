package models

import "time"

// MessageExtraction is everything the mapper reads out of one inbound
// message.
type MessageExtraction struct {
	ControlID        string
	MessageTimestamp time.Time
	Instrument       InstrumentInfo
	Results          []ResultRecord
	Failures         []SpecimenFailure
}

// SpecimenFailure records why one specimen group could not be extracted.
type SpecimenFailure struct {
	Index    int
	SampleID string
	Err      error
}

// IngestOutcome is what the ingestion usecase reports back for one message.
type IngestOutcome struct {
	Instrument  InstrumentInfo
	Run         RunInfo
	ResultCount int
	Duplicate   bool
	Skipped     []SpecimenFailure
}
