package constvars

const (
	MIMETextPlain            = "text/plain"
	MIMETextCSV              = "text/csv"
	MIMEApplicationJSON      = "application/json"
	MIMETextPlainCharsetUTF8 = "text/plain; charset=utf-8"
	MIMEApplicationHL7       = "x-application/hl7-v2+er7"
)

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderXRequestID         = "X-Request-ID"
	HeaderAttachmentFormat   = "attachment; filename=%q"
)

const (
	URLParamRunID = "runID"
)

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusUnprocessableEntity = 422
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)
