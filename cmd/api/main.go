package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/db"
	"foodhub/internal/email"
	apihttp "foodhub/internal/http"
	"foodhub/internal/repository"
	"foodhub/internal/service"
	"foodhub/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	foodRepo := repository.NewPgFoodRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	// Sin Redis las altas pendientes y el rate limit quedan en memoria de proceso.
	pendingStore := service.NewMemoryPendingStore()
	otpLimiter := service.NewOTPRateLimiter(cfg.OTPRequestWindow(), cfg.OTPRequestsPerWindow, time.Now)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			pendingStore = service.NewRedisPendingStore(redisClient, time.Now)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRequestWindow(), cfg.OTPRequestsPerWindow, time.Now)
		}
		cancel()
	}

	maxUpload := cfg.MaxUploadMB << 20
	var (
		images    storage.ImageStore
		uploadDir string
	)
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3ImageStore(ctx, storage.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			MaxBytes:      maxUpload,
		})
		if err != nil {
			logger.Fatal("s3 image store init", zap.Error(err))
		}
		images = s3Store
	} else {
		localStore := storage.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL, maxUpload)
		images = localStore
		uploadDir = localStore.Root()
		logger.Info("storing images on local disk", zap.String("dir", uploadDir))
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.SessionTTL(), time.Now)
	resetSvc := service.NewResetTokenService(cfg.JWTSecret, cfg.ResetTokenTTL(), time.Now)

	userSvc := service.NewUserService(logger, userRepo, pendingStore, emailSender, jwtSvc, resetSvc, images, service.UserServiceOptions{
		Limiter:          otpLimiter,
		OTPTTL:           cfg.OTPTTL(),
		ResetBaseURL:     cfg.PublicBaseURL,
		UnifyLoginErrors: cfg.UnifyLoginErrors,
	})
	categorySvc := service.NewCategoryService(logger, categoryRepo, images)
	foodSvc := service.NewFoodService(logger, foodRepo, categorySvc, images)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterOptions{CORSOrigins: cfg.CORSOrigins, UploadDir: uploadDir},
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, apihttp.UserHandlerOptions{ExposeResetLink: cfg.ExposeResetLink}),
		apihttp.NewCategoryHandler(logger, categorySvc),
		apihttp.NewFoodHandler(logger, foodSvc, service.NewAvailability(true)),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
