package queries

const (
	GetInstrumentByIdentity = `
		SELECT id, model, sn, sw_version
		FROM instruments
		WHERE model = $1 AND sn = $2 AND sw_version = $3
	`

	InsertInstrument = `
		INSERT INTO instruments (model, sn, sw_version)
		VALUES ($1, $2, $3)
		RETURNING id, model, sn, sw_version
	`
)
