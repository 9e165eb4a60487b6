package queries

const (
	InsertRunIfAbsent = `
		INSERT INTO runs (instrument_id, msg_ts, msg_guid)
		VALUES ($1, $2, $3)
		ON CONFLICT (instrument_id, msg_guid) DO NOTHING
		RETURNING id, instrument_id, msg_ts, msg_guid
	`

	GetRunByMessageGUID = `
		SELECT id, instrument_id, msg_ts, msg_guid
		FROM runs
		WHERE instrument_id = $1 AND msg_guid = $2
	`

	GetRunByID = `
		SELECT id, instrument_id, msg_ts, msg_guid
		FROM runs
		WHERE id = $1
	`

	GetRunSummaries = `
		SELECT
			r.id,
			r.instrument_id,
			r.msg_ts,
			r.msg_guid,
			i.model,
			i.sn,
			i.sw_version,
			(SELECT COUNT(*) FROM results res WHERE res.run_id = r.id) AS result_count
		FROM runs r
		JOIN instruments i ON i.id = r.instrument_id
		WHERE ($1::bigint = 0 OR r.instrument_id = $1)
		ORDER BY r.msg_ts DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`

	CountRunSummaries = `
		SELECT COUNT(*)
		FROM runs r
		WHERE ($1::bigint = 0 OR r.instrument_id = $1)
	`
)
