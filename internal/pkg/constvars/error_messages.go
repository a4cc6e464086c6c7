package constvars

// Client-facing messages. Kept generic so internal details never leak.
const (
	ErrClientCannotProcessRequest          = "cannot process your request"
	ErrClientSomethingWrongWithApplication = "something wrong with the application, please contact admin"
	ErrClientNotAuthorized                 = "you are not authorized"
	ErrClientServerLongRespond             = "server takes too long to respond"
	ErrClientTooManyRequests               = "too many requests, please try again later"
	ErrClientNoDocumentsProvided           = "no valid documents provided"
	ErrClientUnsupportedFileType           = "unsupported file type, only pdf and common image formats are accepted"
	ErrClientFileTooLarge                  = "one of the uploaded files exceeds the maximum allowed size"
	ErrClientInvalidTariffPayload          = "invalid tariffs payload, provide a JSON object or array of objects"
	ErrClientClaimNotFound                 = "claim not found"
)

// Developer messages carried on CustomError for logging.
const (
	ErrDevValidationFailed              = "validation failed"
	ErrDevCannotParseJSON               = "cannot parse JSON from request"
	ErrDevCannotParseMultipartForm      = "cannot parse multipart form data"
	ErrDevMissingRequestID              = "request id not found in context"
	ErrDevServerProcess                 = "the server cannot process the request"
	ErrDevServerDeadlineExceeded        = "the server took too long to respond"
	ErrDevInvalidAPIKey                 = "the provided api key is invalid"
	ErrDevDailyQuotaExceeded            = "daily request quota exceeded for client ip"
	ErrDevClaimNotFound                 = "claim document not found"
	ErrDevCannotMarshalJSON             = "cannot marshal data into JSON"
	ErrDevMongoDBFindDocument           = "mongodb failed to find document"
	ErrDevMongoDBNotObjectID            = "mongodb document id is not a valid object id"
	ErrDevMongoDBInsertDocument         = "mongodb failed to insert document"
	ErrDevMongoDBUpdateDocument         = "mongodb failed to update document"
	ErrDevMongoDBIterateDocuments       = "mongodb failed to iterate documents"
	ErrDevRedisPublish                  = "redis failed to publish message"
	ErrDevRedisIncrement                = "redis failed to increment value"
	ErrDevMinioCreateObject             = "minio failed to create object in bucket '%s'"
	ErrDevMinioGetObject                = "minio failed to get object from bucket '%s'"
	ErrDevMinioRemoveObject             = "minio failed to remove object from bucket '%s'"
	ErrDevRabbitMQPublishMessage        = "rabbitmq failed to publish message to queue '%s'"
	ErrDevRabbitMQConsume               = "rabbitmq failed to start consuming queue '%s'"
	ErrDevOracleCreateRequest           = "extraction oracle request could not be built"
	ErrDevOracleSendRequest             = "extraction oracle request failed"
	ErrDevOracleRateLimited             = "extraction oracle rate limit exhausted after retries"
	ErrDevOracleEmptyResponse           = "extraction oracle returned an empty response"
	ErrDevOracleMalformedResponse       = "extraction oracle returned unrepairable JSON"
)

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of [%s]",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"numeric":  "must be a number",
	"uuid":     "must be a valid UUID",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gt":    true,
	"gte":   true,
}
