package requests

type ListRuns struct {
	Pagination
	InstrumentID int64 `json:"instrument_id" validate:"gte=0"`
}
