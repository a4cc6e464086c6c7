package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Claim-related messages
	ClaimAcceptedMessage  = "claim processing started"
	ClaimGetSuccess       = "get claim successfully"
	ClaimListSuccess      = "get claims successfully"
	TariffCreatedSuccess  = "tariff created successfully"
	HealthCheckSuccess    = "healthy"
)
