package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ride-auth/internal/domain"
	"ride-auth/internal/repository"
)

// VerificationService gestiona perfiles y documentos de conductor y su revisión.
type VerificationService struct {
	logger    *zap.Logger
	accounts  repository.AccountRepository
	profiles  repository.ProfileRepository
	documents repository.DocumentRepository
	images    repository.ImageRepository
	now       func() time.Time
}

func NewVerificationService(logger *zap.Logger, accounts repository.AccountRepository, profiles repository.ProfileRepository, documents repository.DocumentRepository, images repository.ImageRepository) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		logger:    logger,
		accounts:  accounts,
		profiles:  profiles,
		documents: documents,
		images:    images,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type ImageInput struct {
	Path      string
	Width     *int
	Height    *int
	Size      *int
	ImageType string
}

// RegisterImage registra los metadatos de una imagen subida por el usuario.
func (s *VerificationService) RegisterImage(ctx context.Context, accountID string, input ImageInput) (domain.Image, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return domain.Image{}, newValidationError("path", "path is required")
	}
	if _, err := s.activeAccount(ctx, accountID); err != nil {
		return domain.Image{}, err
	}
	img := domain.Image{
		ID:        newID(),
		Path:      path,
		CreatedBy: accountID,
		Width:     input.Width,
		Height:    input.Height,
		Size:      input.Size,
		ImageType: strings.ToLower(strings.TrimSpace(input.ImageType)),
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		return domain.Image{}, err
	}
	return img, nil
}

type DriverProfileInput struct {
	FirstName     string
	LastName      string
	FatherName    string
	NationCode    string
	LicenseNumber string
	DriverType    domain.DriverType
	Province      domain.Province
	ImageID       string
}

func (in DriverProfileInput) validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.add("first_name", "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.add("last_name", "last name is required")
	}
	if !isDigits(in.NationCode, 10) {
		verr.add("nation_code", "nation code must be 10 digits")
	}
	if strings.TrimSpace(in.LicenseNumber) == "" {
		verr.add("license_number", "license number is required")
	}
	if !in.DriverType.Valid() {
		verr.add("driver_type", "unknown driver type")
	}
	if !in.Province.Valid() {
		verr.add("province", "unknown province")
	}
	if !isUUID(in.ImageID) {
		verr.add("image_id", "image id must be a valid uuid")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// CreateDriverProfile crea el perfil de conductor; el repositorio marca is_driver en la misma transacción.
// Si el perfil ya existe y la cuenta perdió el rol, lo restablece antes de devolver ErrProfileExists.
func (s *VerificationService) CreateDriverProfile(ctx context.Context, accountID string, input DriverProfileInput) (domain.DriverProfile, error) {
	if err := input.validate(); err != nil {
		return domain.DriverProfile{}, err
	}
	account, err := s.activeAccount(ctx, accountID)
	if err != nil {
		return domain.DriverProfile{}, err
	}
	if err := s.checkImageOwner(ctx, accountID, input.ImageID); err != nil {
		return domain.DriverProfile{}, err
	}
	if _, err := s.profiles.GetDriverByAccount(ctx, accountID); err == nil {
		if !account.IsDriver {
			if err := s.accounts.MarkDriver(ctx, accountID); err != nil {
				return domain.DriverProfile{}, err
			}
			s.logger.Warn("driver flag restored for existing profile", zap.String("account_id", accountID))
		}
		return domain.DriverProfile{}, ErrProfileExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.DriverProfile{}, err
	}

	now := s.now()
	profile := domain.DriverProfile{
		ID:                 newID(),
		AccountID:          accountID,
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		FatherName:         strings.TrimSpace(input.FatherName),
		NationCode:         input.NationCode,
		LicenseNumber:      strings.TrimSpace(input.LicenseNumber),
		DriverType:         input.DriverType,
		Province:           input.Province,
		ImageID:            input.ImageID,
		VerificationStatus: domain.VerificationSubmitted,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.profiles.CreateDriver(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.DriverProfile{}, ErrProfileExists
		}
		return domain.DriverProfile{}, err
	}
	s.logger.Info("driver profile submitted", zap.String("account_id", accountID), zap.String("profile_id", profile.ID))
	return profile, nil
}

func (s *VerificationService) GetDriverProfile(ctx context.Context, accountID string) (domain.DriverProfile, error) {
	if _, err := s.activeAccount(ctx, accountID); err != nil {
		return domain.DriverProfile{}, err
	}
	return s.driverProfile(ctx, accountID)
}

func (s *VerificationService) driverProfile(ctx context.Context, accountID string) (domain.DriverProfile, error) {
	profile, err := s.profiles.GetDriverByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DriverProfile{}, ErrNotFound
		}
		return domain.DriverProfile{}, err
	}
	return profile, nil
}

type DocumentInput struct {
	DocType domain.DocumentType
	ImageID string
}

// SubmitDocument admite un único documento por (perfil, tipo).
func (s *VerificationService) SubmitDocument(ctx context.Context, accountID string, input DocumentInput) (domain.DriverDocument, error) {
	if !input.DocType.Valid() {
		return domain.DriverDocument{}, newValidationError("doc_type", "unknown document type")
	}
	if !isUUID(input.ImageID) {
		return domain.DriverDocument{}, newValidationError("image_id", "image id must be a valid uuid")
	}
	if _, err := s.activeAccount(ctx, accountID); err != nil {
		return domain.DriverDocument{}, err
	}
	profile, err := s.driverProfile(ctx, accountID)
	if err != nil {
		return domain.DriverDocument{}, err
	}
	if err := s.checkImageOwner(ctx, accountID, input.ImageID); err != nil {
		return domain.DriverDocument{}, err
	}

	now := s.now()
	doc := domain.DriverDocument{
		ID:                 newID(),
		ProfileID:          profile.ID,
		DocType:            input.DocType,
		ImageID:            input.ImageID,
		VerificationStatus: domain.VerificationSubmitted,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.DriverDocument{}, ErrDuplicateDocument
		}
		return domain.DriverDocument{}, err
	}
	return doc, nil
}

func (s *VerificationService) ListDocuments(ctx context.Context, accountID string) ([]domain.DriverDocument, error) {
	profile, err := s.GetDriverProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListActiveByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.DriverDocument{}
	}
	return docs, nil
}

// ReviewDriverProfile aplica la decisión del revisor; solo desde submitted.
func (s *VerificationService) ReviewDriverProfile(ctx context.Context, profileID string, to domain.VerificationStatus, note string) (domain.DriverProfile, error) {
	if !isUUID(profileID) {
		return domain.DriverProfile{}, ErrNotFound
	}
	profile, err := s.profiles.GetDriverByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DriverProfile{}, ErrNotFound
		}
		return domain.DriverProfile{}, err
	}
	if !to.Valid() {
		return domain.DriverProfile{}, newValidationError("status", "unknown verification status")
	}
	if !profile.VerificationStatus.CanTransition(to) {
		return domain.DriverProfile{}, ErrInvalidTransition
	}
	ok, err := s.profiles.UpdateDriverStatus(ctx, profile.ID, profile.VerificationStatus, to, note)
	if err != nil {
		return domain.DriverProfile{}, err
	}
	if !ok {
		return domain.DriverProfile{}, ErrInvalidTransition
	}
	profile.VerificationStatus = to
	profile.VerifierNote = note
	profile.UpdatedAt = s.now()
	return profile, nil
}

func (s *VerificationService) ReviewDocument(ctx context.Context, documentID string, to domain.VerificationStatus, note string) (domain.DriverDocument, error) {
	if !isUUID(documentID) {
		return domain.DriverDocument{}, ErrNotFound
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DriverDocument{}, ErrNotFound
		}
		return domain.DriverDocument{}, err
	}
	if !to.Valid() {
		return domain.DriverDocument{}, newValidationError("status", "unknown verification status")
	}
	if !doc.VerificationStatus.CanTransition(to) {
		return domain.DriverDocument{}, ErrInvalidTransition
	}
	ok, err := s.documents.UpdateStatus(ctx, doc.ID, doc.VerificationStatus, to, note)
	if err != nil {
		return domain.DriverDocument{}, err
	}
	if !ok {
		return domain.DriverDocument{}, ErrInvalidTransition
	}
	doc.VerificationStatus = to
	doc.VerifierNote = note
	doc.UpdatedAt = s.now()
	return doc, nil
}

// activeAccount carga la cuenta del token; una cuenta desactivada no opera aunque su token siga vigente.
func (s *VerificationService) activeAccount(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrNotFound
		}
		return domain.Account{}, err
	}
	if !account.IsActive {
		return domain.Account{}, ErrAccountDisabled
	}
	return account, nil
}

func (s *VerificationService) checkImageOwner(ctx context.Context, accountID, imageID string) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrImageNotFound
		}
		return err
	}
	if !img.IsActive {
		return ErrImageNotFound
	}
	if img.CreatedBy != accountID {
		return ErrImageNotOwned
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
