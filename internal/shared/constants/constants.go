package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyUserUID   = "user_uid"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableUsageEvents    = "usage_events"
	TableMonthlyUsage   = "monthly_usage"
	TableUserPlanStates = "user_plan_states"
)
