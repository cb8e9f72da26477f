package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ride-auth/internal/domain"
	"ride-auth/internal/service"
)

// DriverHandler expone imágenes, perfil de conductor, documentos y revisión.
type DriverHandler struct {
	logger       *zap.Logger
	verification *service.VerificationService
}

func NewDriverHandler(logger *zap.Logger, verification *service.VerificationService) *DriverHandler {
	registerValidators()
	return &DriverHandler{
		logger:       logger,
		verification: verification,
	}
}

// RegisterImage maneja POST /images.
func (h *DriverHandler) RegisterImage(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	var req struct {
		Path      string `json:"path" binding:"required"`
		Width     *int   `json:"width" binding:"omitempty,min=0"`
		Height    *int   `json:"height" binding:"omitempty,min=0"`
		Size      *int   `json:"size" binding:"omitempty,min=0"`
		ImageType string `json:"image_type" binding:"max=10"`
	}
	if !bindJSON(c, &req) {
		return
	}
	img, err := h.verification.RegisterImage(c.Request.Context(), claims.AccountID, service.ImageInput{
		Path:      req.Path,
		Width:     req.Width,
		Height:    req.Height,
		Size:      req.Size,
		ImageType: req.ImageType,
	})
	if err != nil {
		writeServiceError(c, h.logger, "register image", err)
		return
	}
	respondOK(c, http.StatusCreated, img)
}

// CreateDriverProfile maneja POST /drivers.
func (h *DriverHandler) CreateDriverProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	var req struct {
		FirstName     string `json:"first_name" binding:"required,max=100"`
		LastName      string `json:"last_name" binding:"required,max=100"`
		FatherName    string `json:"father_name" binding:"max=100"`
		NationCode    string `json:"nation_code" binding:"required,len=10,numeric"`
		LicenseNumber string `json:"license_number" binding:"required,max=20"`
		DriverType    string `json:"driver_type" binding:"required"`
		Province      string `json:"province" binding:"required,len=3"`
		ImageID       string `json:"image_id" binding:"required,uuid"`
	}
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.verification.CreateDriverProfile(c.Request.Context(), claims.AccountID, service.DriverProfileInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		FatherName:    req.FatherName,
		NationCode:    req.NationCode,
		LicenseNumber: req.LicenseNumber,
		DriverType:    domain.DriverType(req.DriverType),
		Province:      domain.Province(req.Province),
		ImageID:       req.ImageID,
	})
	if err != nil {
		writeServiceError(c, h.logger, "create driver profile", err)
		return
	}
	respondOK(c, http.StatusCreated, profile)
}

// GetDriverProfile maneja GET /drivers/me.
func (h *DriverHandler) GetDriverProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	profile, err := h.verification.GetDriverProfile(c.Request.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(c, h.logger, "get driver profile", err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// SubmitDocument maneja POST /drivers/documents.
func (h *DriverHandler) SubmitDocument(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	var req struct {
		DocType string `json:"doc_type" binding:"required"`
		ImageID string `json:"image_id" binding:"required,uuid"`
	}
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.verification.SubmitDocument(c.Request.Context(), claims.AccountID, service.DocumentInput{
		DocType: domain.DocumentType(req.DocType),
		ImageID: req.ImageID,
	})
	if err != nil {
		writeServiceError(c, h.logger, "submit document", err)
		return
	}
	respondOK(c, http.StatusCreated, doc)
}

// ListDocuments maneja GET /drivers/documents.
func (h *DriverHandler) ListDocuments(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	docs, err := h.verification.ListDocuments(c.Request.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(c, h.logger, "list documents", err)
		return
	}
	respondOK(c, http.StatusOK, docs)
}

type reviewRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

// ReviewDriverProfile maneja PATCH /admin/drivers/:id/status.
func (h *DriverHandler) ReviewDriverProfile(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.verification.ReviewDriverProfile(c.Request.Context(), c.Param("id"), domain.VerificationStatus(req.Status), req.Note)
	if err != nil {
		writeServiceError(c, h.logger, "review driver profile", err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// ReviewDocument maneja PATCH /admin/documents/:id/status.
func (h *DriverHandler) ReviewDocument(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.verification.ReviewDocument(c.Request.Context(), c.Param("id"), domain.VerificationStatus(req.Status), req.Note)
	if err != nil {
		writeServiceError(c, h.logger, "review document", err)
		return
	}
	respondOK(c, http.StatusOK, doc)
}
