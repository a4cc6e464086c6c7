package constvars

const (
	LoggingRequestIDKey  = "request_id"
	LoggingClaimIDKey    = "claim_id"
	LoggingClaimNumber   = "claim_number"
	LoggingSessionIDKey  = "session_id"
	LoggingStageKey      = "stage"
	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"
)
