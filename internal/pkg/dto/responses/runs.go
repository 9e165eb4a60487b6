package responses

import "time"

type Run struct {
	ID           int64      `json:"id"`
	InstrumentID int64      `json:"instrument_id"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	SWVersion    string     `json:"sw_version"`
	MsgGUID      string     `json:"msg_guid"`
	MsgTimestamp *time.Time `json:"msg_timestamp,omitempty"`
	ResultCount  int        `json:"result_count"`
}

type Result struct {
	ID         int64              `json:"id"`
	RunID      int64              `json:"run_id"`
	AssayID    int64              `json:"assay_id"`
	LisCode    string             `json:"lis_code"`
	SampleRole string             `json:"sample_role"`
	SampleType string             `json:"sample_type"`
	SampleID   string             `json:"sample_id"`
	Result     string             `json:"result"`
	Units      string             `json:"units"`
	Status     string             `json:"status"`
	Username   string             `json:"username"`
	Flags      []string           `json:"flags"`
	ControlCts map[string]float64 `json:"cntrl_cts,omitempty"`
	Comments   string             `json:"comments,omitempty"`
	MwpID      string             `json:"mwp_id"`
	MwpPos     string             `json:"mwp_pos"`
	DwpID      string             `json:"dwp_id"`
	StartTime  *time.Time         `json:"start_time,omitempty"`
	EndTime    *time.Time         `json:"end_time,omitempty"`
}
