package config

import (
	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type (
	Bootstrap struct {
		Router         *chi.Mux
		MongoDB        *mongo.Client
		Redis          *redis.Client
		RabbitMQ       *amqp.Connection
		Minio          *minio.Client
		Logger         *logrus.Logger
		ZapLogger      *zap.Logger
		DriverConfig   *DriverConfig
		InternalConfig *InternalConfig
	}

	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		RabbitMQ RabbitMQ
		Minio    Minio
		Logger   Logger
	}

	InternalConfig struct {
		App      App
		Gemini   Gemini
		Pipeline Pipeline
	}

	App struct {
		Env                        string
		Port                       string
		Version                    string
		Address                    string
		EndpointPrefix             string
		APIKey                     string
		MaxRequests                int
		MaxTimeRequestsPerSeconds  int
		ShutdownTimeout            int
		RequestBodyLimitInMegabyte int
		DailyRequestQuota          int
	}

	Gemini struct {
		APIKey           string
		Model            string
		BaseURL          string
		Temperature      float64
		TopP             float64
		TopK             int
		MaxOutputTokens  int
		MaxRetries       int
		RetryBaseSeconds int
		RequestsPerMin   int
	}

	Pipeline struct {
		AnalysisMode      string
		OracleConcurrency int
		WorkerPrefetch    int
		ClaimQueueName    string
		MaxUploadSizeInMB int64
		PassThreshold     float64
		CostPerPageINR    float64
	}

	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port       string
		Host       string
		Username   string
		Password   string
		BucketName string
		UseSSL     bool
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
