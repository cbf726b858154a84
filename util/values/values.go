package values

type contextKey string

const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	Failed         = "failed"
	BadRequestBody = "bad_request"
	Unprocessable  = "unprocessable"
	NotAllowed     = "not_allowed"
	Conflict       = "conflict"
	NotFound       = "not_found"
	NotAuthorised  = "not_authorised"
	TokenExpired   = "token_expired"
	QuotaExceeded  = "quota_exceeded"
)

const (
	HeaderRequestSource = "X-Request-Source"
	HeaderRequestID     = "X-Request-ID"
)

const (
	ContextTracingKey contextKey = "tracing"
	ContextUserIDKey  contextKey = "user_id"
)
