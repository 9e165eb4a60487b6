package models

// AssayInfo is identified by instrument and LIS code. Name holds a
// placeholder until someone renames the assay outside this service.
type AssayInfo struct {
	ID           int64  `json:"id"`
	InstrumentID int64  `json:"instrument_id"`
	LisCode      string `json:"lis_code"`
	Name         string `json:"name"`
}
