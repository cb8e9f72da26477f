package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"ride-auth/internal/repository"
	"ride-auth/internal/service"
)

const authClaimsKey = "auth_claims"

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// JWTAuthMiddleware valida JWT access tokens y guarda claims en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			abortError(c, http.StatusInternalServerError, "jwt not configured")
			return
		}

		token := bearerToken(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// AnonymousOnly rechaza con 403 a quien ya presenta un access token válido.
func AnonymousOnly(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" && jwtSvc != nil {
			if _, err := jwtSvc.ParseAccessToken(token); err == nil {
				abortError(c, http.StatusForbidden, "authenticated users cannot access this endpoint")
				return
			}
		}
		c.Next()
	}
}

// RequireStaff debe ir después de JWTAuthMiddleware. Consulta la cuenta guardada:
// el claim is_staff del token no basta si el rol o la cuenta se revocaron después.
func RequireStaff(accounts repository.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || accounts == nil {
			abortError(c, http.StatusForbidden, "staff only")
			return
		}
		account, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				abortError(c, http.StatusForbidden, "staff only")
				return
			}
			abortError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !account.IsActive || !account.IsStaff {
			abortError(c, http.StatusForbidden, "staff only")
			return
		}
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
