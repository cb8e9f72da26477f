package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"ride-auth/internal/config"
	"ride-auth/internal/db"
	apihttp "ride-auth/internal/http"
	"ride-auth/internal/repository"
	"ride-auth/internal/service"
	"ride-auth/internal/sms"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	gin.SetMode(cfg.GinMode)

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.MigrateOnBoot {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)
	imageRepo := repository.NewPgImageRepository(pool)
	requestLogRepo := repository.NewPgRequestLogRepository(pool)

	var (
		otpCache    service.OTPCache
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			otpCache = service.NewRedisOTPCache(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRateWindow, cfg.OTPRateMax, logger)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if otpLimiter == nil {
		otpLimiter = service.NewOTPRateLimiter(cfg.OTPRateWindow, cfg.OTPRateMax)
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokenStore)

	authSvc, err := service.NewAuthService(service.AuthDeps{
		Accounts:    accountRepo,
		Profiles:    profileRepo,
		RequestLogs: requestLogRepo,
		Cache:       otpCache,
		Limiter:     otpLimiter,
		SMS:         newDispatcher(cfg, logger),
		Tokens:      jwtSvc,
		Logger:      logger,
	}, service.AuthConfig{
		OTPTTL:     cfg.OTPTTL,
		SMSTimeout: cfg.SMSTimeout,
		Location:   cfg.Location(),
	})
	if err != nil {
		logger.Fatal("auth service", zap.Error(err))
	}
	verificationSvc := service.NewVerificationService(logger, accountRepo, profileRepo, documentRepo, imageRepo)

	router, err := apihttp.NewRouter(logger, apihttp.RouterDeps{
		Auth:           apihttp.NewAuthHandler(logger, authSvc),
		Drivers:        apihttp.NewDriverHandler(logger, verificationSvc),
		JWT:            jwtSvc,
		Accounts:       accountRepo,
		TrustedProxies: cfg.TrustedProxies,
		HealthCheck: func(ctx context.Context) error {
			if err := db.Ping(ctx, pool); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Ping(ctx).Err()
			}
			return nil
		},
	})
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("sms_provider", cfg.SMSProvider))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newDispatcher elige el proveedor SMS; un proveedor mal configurado queda deshabilitado.
func newDispatcher(cfg *config.Config, logger *zap.Logger) sms.Dispatcher {
	switch cfg.SMSProvider {
	case "kavenegar":
		d, err := sms.NewKavenegarDispatcher(cfg.KaveBaseURL, cfg.KaveAPIKey, cfg.KaveTemplate, cfg.SMSTimeout, logger)
		if err != nil {
			logger.Warn("kavenegar dispatcher init failed", zap.Error(err))
			return sms.NewDisabledDispatcher(err.Error())
		}
		return d
	case "twilio":
		d, err := sms.NewTwilioDispatcher(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)
		if err != nil {
			logger.Warn("twilio dispatcher init failed", zap.Error(err))
			return sms.NewDisabledDispatcher(err.Error())
		}
		return d
	case "log":
		return sms.NewLogDispatcher(logger)
	default:
		return sms.NewDisabledDispatcher("sms provider not configured")
	}
}
