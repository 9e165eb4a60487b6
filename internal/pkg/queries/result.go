package queries

const (
	InsertResult = `
		INSERT INTO results (
			run_id,
			assay_id,
			sample_role,
			sample_type,
			sample_id,
			result,
			units,
			result_status,
			username,
			flags,
			cntrl_cts,
			comments,
			dwp_id,
			mwp_id,
			mwp_position,
			start_ts,
			end_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	GetResultsByRunID = `
		SELECT
			res.id,
			res.run_id,
			res.assay_id,
			a.lis_code,
			i.sw_version,
			res.sample_role,
			res.sample_type,
			res.sample_id,
			res.result,
			res.units,
			res.result_status,
			res.username,
			res.flags,
			res.cntrl_cts,
			res.comments,
			res.dwp_id,
			res.mwp_id,
			res.mwp_position,
			res.start_ts,
			res.end_ts
		FROM results res
		JOIN assays a ON a.id = res.assay_id
		JOIN instruments i ON i.id = a.instrument_id
		WHERE res.run_id = $1
		ORDER BY res.id
	`
)
