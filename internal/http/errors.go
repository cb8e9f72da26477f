package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ride-auth/internal/service"
	"ride-auth/internal/sms"
)

type errorMapping struct {
	target error
	status int
}

// errorTable traduce errores de dominio a status HTTP; el mensaje es el del propio error.
var errorTable = []errorMapping{
	{service.ErrInvalidOrExpiredCode, http.StatusNotFound},
	{service.ErrAccountDisabled, http.StatusNotFound},
	{service.ErrInvalidCredentials, http.StatusNotFound},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrPasswordMismatch, http.StatusBadRequest},
	{service.ErrOldPasswordMismatch, http.StatusBadRequest},
	{service.ErrUserExists, http.StatusBadRequest},
	{service.ErrAccountAlreadyVerified, http.StatusBadRequest},
	{service.ErrImageNotFound, http.StatusBadRequest},
	{service.ErrImageNotOwned, http.StatusBadRequest},
	{service.ErrDuplicateDocument, http.StatusBadRequest},
	{service.ErrProfileExists, http.StatusBadRequest},
	{service.ErrRateLimited, http.StatusTooManyRequests},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrJWTInvalid, http.StatusUnauthorized},
	{service.ErrJWTExpired, http.StatusUnauthorized},
}

// writeServiceError responde con el status correspondiente; lo no mapeado es 500.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		respondError(c, http.StatusBadRequest, "invalid request", verr.Fields)
		return
	}
	if errors.Is(err, service.ErrDispatchFailure) {
		kind := sms.Kind(err)
		status := http.StatusBadRequest
		if kind == "disabled" {
			status = http.StatusServiceUnavailable
		}
		if kind == "" {
			kind = "unknown"
		}
		respondError(c, status, service.ErrDispatchFailure.Error(), gin.H{"kind": kind})
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.target.Error(), nil)
			return
		}
	}
	logger.Error(op+" failed", zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal error", nil)
}
