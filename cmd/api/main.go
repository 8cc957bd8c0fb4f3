package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-management-backend/config"
	_ "resume-management-backend/docs" // Important for Swagger
	v1 "resume-management-backend/internal/delivery/http/v1"
	"resume-management-backend/internal/repository/postgres"
	"resume-management-backend/internal/usecase"
	"resume-management-backend/pkg/auth"
	"resume-management-backend/pkg/blobstore"
	"resume-management-backend/pkg/database"
	"resume-management-backend/pkg/extractor"
	"resume-management-backend/pkg/extractor/ner"
	"resume-management-backend/pkg/logger"
	"resume-management-backend/pkg/redis"
	"resume-management-backend/pkg/security"
	"resume-management-backend/pkg/validation"
)

// @title           Resume Management API
// @version         1.0
// @description     Upload PDF resumes, extract their fields and manage the stored records.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting resume backend", "port", cfg.Port, "blob_backend", cfg.BlobBackend)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	redisClient, err := redis.Connect(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 5. Setup Blob Store
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up blob store", "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)

	// 7. Setup UseCases
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authUC := usecase.NewAuthUsecase(userRepo, tokens)
	resumeUC := usecase.NewResumeUsecase(
		resumeRepo,
		blobs,
		extractor.NewPDFTextExtractor(),
		extractor.New(ner.NewDefault()),
		validation.New(),
		usecase.ResumeLimits{MaxUploadBytes: cfg.MaxUploadBytes, MaxPageSize: cfg.MaxPageSize},
	)

	deps := map[string]usecase.Pinger{"database": dbPool, "redis": nil}
	if redisClient != nil {
		deps["redis"] = usecase.PingFunc(func(ctx context.Context) error {
			return redis.HealthCheck(ctx, redisClient)
		})
	}
	healthUC := usecase.NewHealthUsecase(deps)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ResumeUC:      resumeUC,
		HealthUC:      healthUC,
		Tokens:        tokens,
		UploadLimiter: security.NewUploadLimiter(redisClient, cfg.UploadRatePerMinute, cfg.UploadRatePerDay),
		LoginTracker:  security.NewLoginTracker(redisClient, security.DefaultLoginTrackerConfig()),
		Config:        cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case "s3":
		client, err := blobstore.NewS3Client(ctx, blobstore.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
			KeyPrefix:       cfg.S3KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return blobstore.NewS3Store(client, cfg.S3Bucket, cfg.S3KeyPrefix)
	case "local", "":
		return blobstore.NewLocalStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
