package queries

const (
	GetAssayByLisCode = `
		SELECT id, instrument_id, lis_code, name
		FROM assays
		WHERE instrument_id = $1 AND lis_code = $2
	`

	InsertAssay = `
		INSERT INTO assays (instrument_id, lis_code, name)
		VALUES ($1, $2, $3)
		RETURNING id, instrument_id, lis_code, name
	`
)
