package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldClient     = "client"
	FieldStatus     = "status"
	FieldRows       = "rows"
	FieldIssues     = "issues"
	FieldReason     = "reason"
	FieldBackend    = "backend"
	FieldFetchedAt  = "fetched_at"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpSync     = "sync"
	OpEvaluate = "evaluate"
	OpRefresh  = "refresh"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
