package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ride-auth/internal/repository"
	"ride-auth/internal/service"
)

// RouterDeps agrupa lo necesario para montar las rutas.
type RouterDeps struct {
	Auth           *AuthHandler
	Drivers        *DriverHandler
	JWT            *service.JWTService
	Accounts       repository.AccountRepository
	TrustedProxies []string
	HealthCheck    func(ctx context.Context) error
}

// NewRouter configura el router de Gin con middlewares y rutas bajo /api/v1/auth.
func NewRouter(logger *zap.Logger, deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.HealthCheck(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				respondError(c, http.StatusServiceUnavailable, "unhealthy", nil)
				return
			}
		}
		respondOK(c, http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/v1/auth")

	anon := auth.Group("", AnonymousOnly(deps.JWT))
	anon.POST("/request_otp_phone", deps.Auth.RequestOTP)
	anon.POST("/verify_otp", deps.Auth.VerifyOTP)
	anon.POST("/login_phone_password", deps.Auth.LoginPhonePassword)
	anon.POST("/sign_up_phone", deps.Auth.SignUpByPhone)
	anon.POST("/request_forget_password", deps.Auth.RequestForgetPassword)
	anon.POST("/verify_forget_password", deps.Auth.VerifyForgetPassword)

	auth.POST("/request_verify_phone", deps.Auth.RequestVerifyPhone)
	auth.POST("/token/refresh", deps.Auth.Refresh)
	auth.POST("/logout", deps.Auth.Logout)

	secured := auth.Group("", JWTAuthMiddleware(deps.JWT))
	secured.POST("/reset_password", deps.Auth.ResetPassword)
	secured.POST("/images", deps.Drivers.RegisterImage)
	secured.POST("/drivers", deps.Drivers.CreateDriverProfile)
	secured.GET("/drivers/me", deps.Drivers.GetDriverProfile)
	secured.POST("/drivers/documents", deps.Drivers.SubmitDocument)
	secured.GET("/drivers/documents", deps.Drivers.ListDocuments)

	admin := secured.Group("/admin", RequireStaff(deps.Accounts))
	admin.PATCH("/drivers/:id/status", deps.Drivers.ReviewDriverProfile)
	admin.PATCH("/documents/:id/status", deps.Drivers.ReviewDocument)

	return r, nil
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
