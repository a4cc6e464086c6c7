package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/app/delivery/http/controllers"
	"claimlens-service/internal/app/delivery/http/middlewares"
	"claimlens-service/internal/app/delivery/http/routers"
	"claimlens-service/internal/app/drivers/database"
	"claimlens-service/internal/app/drivers/logger"
	"claimlens-service/internal/app/drivers/messaging"
	minioDriver "claimlens-service/internal/app/drivers/storage"
	"claimlens-service/internal/app/services/core/claims"
	"claimlens-service/internal/app/services/core/pipeline"
	"claimlens-service/internal/app/services/shared/claimqueue"
	"claimlens-service/internal/app/services/shared/gemini"
	"claimlens-service/internal/app/services/shared/progress"
	"claimlens-service/internal/app/services/shared/redisrepo"
	"claimlens-service/internal/app/services/shared/storage"

	"github.com/go-chi/chi/v5"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewLogrusLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := minioDriver.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoClient,
		Redis:          redisClient,
		RabbitMQ:       rabbitConn,
		Minio:          minioClient,
		Logger:         log,
		ZapLogger:      zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	worker := bootstrapTheApp(bootstrap)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go func() {
		if err := worker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Fatalf("Claim worker stopped: %v", err)
		}
	}()

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	stopWorker()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapTheApp(bootstrap config.Bootstrap) *claims.Worker {
	zapLogger := bootstrap.ZapLogger
	internalConfig := bootstrap.InternalConfig

	// Shared services
	redisRepository := redisrepo.NewRedisRepository(bootstrap.Redis)
	progressPublisher := progress.NewRedisProgress(bootstrap.Redis, zapLogger)
	documentStorage := storage.NewMinioStorage(bootstrap.Minio, bootstrap.DriverConfig.Minio.BucketName)
	oracle := gemini.NewClient(internalConfig.Gemini, zapLogger)

	claimQueue, err := claimqueue.NewService(
		bootstrap.RabbitMQ,
		zapLogger,
		internalConfig.Pipeline.ClaimQueueName,
		internalConfig.Pipeline.WorkerPrefetch,
	)
	if err != nil {
		bootstrap.Logger.Fatalf("Failed to initialize claim queue: %v", err)
	}

	// Repositories
	claimRepository := claims.NewClaimMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	tariffRepository := claims.NewTariffMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)

	// Pipeline
	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewClassifier(oracle, zapLogger),
		pipeline.NewCaseContextExtractor(oracle, zapLogger),
		pipeline.NewInvoiceExtractor(oracle, zapLogger),
		pipeline.NewReportAssessor(oracle, zapLogger),
		pipeline.NewApprovalVerifier(oracle, zapLogger),
		pipeline.NewRequirementsPlanner(oracle, zapLogger),
		pipeline.NewReconciliationEngine(tariffRepository, internalConfig.Pipeline.PassThreshold, zapLogger),
		progressPublisher,
		pipeline.OrchestratorConfig{
			OracleConcurrency: internalConfig.Pipeline.OracleConcurrency,
			CostPerPageINR:    internalConfig.Pipeline.CostPerPageINR,
		},
		zapLogger,
	)

	// Usecases
	claimUsecase := claims.NewClaimUsecase(
		claimRepository,
		tariffRepository,
		documentStorage,
		claimQueue,
		orchestrator,
		internalConfig,
		zapLogger,
	)
	tariffUsecase := claims.NewTariffUsecase(tariffRepository, zapLogger)

	// Controllers
	claimController := controllers.NewClaimController(zapLogger, claimUsecase, progressPublisher, internalConfig)
	tariffController := controllers.NewTariffController(zapLogger, tariffUsecase)
	healthController := controllers.NewHealthController(zapLogger, internalConfig)

	// Middlewares and routes
	mw := middlewares.NewMiddlewares(zapLogger, internalConfig, redisRepository)
	routers.SetupRoutes(bootstrap.Router, internalConfig, mw, claimController, tariffController, healthController)

	return claims.NewWorker(claimQueue, claimUsecase, zapLogger)
}
