package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ride-auth/internal/service"
)

// AuthHandler expone los flujos de autenticación por teléfono.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, auth *service.AuthService) *AuthHandler {
	registerValidators()
	return &AuthHandler{
		logger: logger,
		auth:   auth,
	}
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// RequestOTP maneja POST /request_otp_phone.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req struct {
		MobilePhone string `json:"mobile_phone" binding:"required,phone"`
	}
	if !bindJSON(c, &req) {
		return
	}
	issue, err := h.auth.RequestOTP(c.Request.Context(), req.MobilePhone, clientInfo(c))
	if err != nil {
		writeServiceError(c, h.logger, "request otp", err)
		return
	}
	respondOK(c, http.StatusOK, issue)
}

// VerifyOTP maneja POST /verify_otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		MobilePhone string `json:"mobile_phone" binding:"required,phone"`
		OTP         string `json:"otp" binding:"required,len=6,numeric"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.VerifyOTP(c.Request.Context(), req.MobilePhone, req.OTP, clientInfo(c))
	if err != nil {
		writeServiceError(c, h.logger, "verify otp", err)
		return
	}
	respondOK(c, http.StatusOK, session)
}

// LoginPhonePassword maneja POST /login_phone_password.
func (h *AuthHandler) LoginPhonePassword(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.LoginPhonePassword(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, "login", err)
		return
	}
	respondOK(c, http.StatusOK, session)
}

// SignUpByPhone maneja POST /sign_up_phone.
func (h *AuthHandler) SignUpByPhone(c *gin.Context) {
	var req struct {
		Phone           string `json:"phone" binding:"required,phone"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.SignUpByPhone(c.Request.Context(), req.Phone, req.Password, req.ConfirmPassword)
	if err != nil {
		writeServiceError(c, h.logger, "sign up", err)
		return
	}
	respondOK(c, http.StatusCreated, session)
}

// RequestForgetPassword maneja POST /request_forget_password.
func (h *AuthHandler) RequestForgetPassword(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,phone"`
	}
	if !bindJSON(c, &req) {
		return
	}
	issue, err := h.auth.RequestForgetPassword(c.Request.Context(), req.Phone, clientInfo(c))
	if err != nil {
		writeServiceError(c, h.logger, "request forget password", err)
		return
	}
	respondOK(c, http.StatusOK, issue)
}

// VerifyForgetPassword maneja POST /verify_forget_password.
func (h *AuthHandler) VerifyForgetPassword(c *gin.Context) {
	var req struct {
		Phone           string `json:"phone" binding:"required,phone"`
		Code            string `json:"code" binding:"required,len=6,numeric"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.VerifyForgetPassword(c.Request.Context(), service.VerifyForgetPasswordInput{
		Phone:           req.Phone,
		Code:            req.Code,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, clientInfo(c))
	if err != nil {
		writeServiceError(c, h.logger, "verify forget password", err)
		return
	}
	respondOK(c, http.StatusOK, session)
}

// RequestVerifyPhone maneja POST /request_verify_phone.
func (h *AuthHandler) RequestVerifyPhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,phone"`
	}
	if !bindJSON(c, &req) {
		return
	}
	issue, err := h.auth.RequestVerifyPhone(c.Request.Context(), req.Phone, clientInfo(c))
	if err != nil {
		writeServiceError(c, h.logger, "request verify phone", err)
		return
	}
	respondOK(c, http.StatusOK, issue)
}

// ResetPassword maneja POST /reset_password; requiere sesión.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing token", nil)
		return
	}
	var req struct {
		OldPassword     string `json:"old_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	err := h.auth.ResetPassword(c.Request.Context(), claims.AccountID, service.ResetPasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(c, h.logger, "reset password", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "password changed"})
}

// Refresh maneja POST /token/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, h.logger, "refresh", err)
		return
	}
	respondOK(c, http.StatusOK, session)
}

// Logout maneja POST /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeServiceError(c, h.logger, "logout", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "logged out"})
}
