package config

import (
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "claimlens"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "claim-documents"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", ":8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "/v1"),
			APIKey:                     utils.GetEnvString("APP_API_KEY", ""),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 10),
			ShutdownTimeout:            utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 60),
			DailyRequestQuota:          utils.GetEnvInt("APP_DAILY_REQUEST_QUOTA", 25),
		},
		Gemini: Gemini{
			APIKey:           utils.GetEnvString("GEMINI_API_KEY", ""),
			Model:            utils.GetEnvString("GEMINI_MODEL", "gemini-2.0-flash-lite"),
			BaseURL:          utils.GetEnvString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature:      utils.GetEnvFloat("GEMINI_TEMPERATURE", 0.0),
			TopP:             utils.GetEnvFloat("GEMINI_TOP_P", 0.1),
			TopK:             utils.GetEnvInt("GEMINI_TOP_K", 32),
			MaxOutputTokens:  utils.GetEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 8192),
			MaxRetries:       utils.GetEnvInt("GEMINI_MAX_RETRIES", 3),
			RetryBaseSeconds: utils.GetEnvInt("GEMINI_RETRY_BASE_SECONDS", 2),
			RequestsPerMin:   utils.GetEnvInt("GEMINI_REQUESTS_PER_MINUTE", 30),
		},
		Pipeline: Pipeline{
			AnalysisMode:      utils.GetEnvString("PIPELINE_ANALYSIS_MODE", constvars.AnalysisModeChunked),
			OracleConcurrency: utils.GetEnvInt("PIPELINE_ORACLE_CONCURRENCY", 3),
			WorkerPrefetch:    utils.GetEnvInt("PIPELINE_WORKER_PREFETCH", 2),
			ClaimQueueName:    utils.GetEnvString("PIPELINE_CLAIM_QUEUE_NAME", "claim_processing_queue"),
			MaxUploadSizeInMB: utils.GetEnvInt64("PIPELINE_MAX_UPLOAD_SIZE_IN_MB", 16),
			PassThreshold:     utils.GetEnvFloat("PIPELINE_PASS_THRESHOLD", constvars.AccuracyPassThreshold),
			CostPerPageINR:    utils.GetEnvFloat("PIPELINE_COST_PER_PAGE_INR", constvars.CostPerPageINR),
		},
	}
}
