package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ride-auth/internal/domain"
	"ride-auth/internal/repository"
	"ride-auth/internal/sms"
)

// AuthDeps agrupa los colaboradores del flujo de autenticación.
type AuthDeps struct {
	Accounts    repository.AccountRepository
	Profiles    repository.ProfileRepository
	RequestLogs repository.RequestLogRepository
	Cache       OTPCache
	Limiter     OTPRateLimiter
	SMS         sms.Dispatcher
	Tokens      *JWTService
	Hasher      PasswordHasher
	Logger      *zap.Logger
}

type AuthConfig struct {
	OTPTTL     time.Duration
	SMSTimeout time.Duration
	Location   *time.Location
}

// AuthService implementa los flujos OTP, contraseña y sesión por teléfono.
type AuthService struct {
	logger      *zap.Logger
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	requestLogs repository.RequestLogRepository
	cache       OTPCache
	limiter     OTPRateLimiter
	sms         sms.Dispatcher
	tokens      *JWTService
	hasher      PasswordHasher
	cfg         AuthConfig

	now          func() time.Time
	generateCode func() (string, error)
	dummyHash    string
}

func NewAuthService(deps AuthDeps, cfg AuthConfig) (*AuthService, error) {
	if deps.Accounts == nil || deps.Profiles == nil || deps.RequestLogs == nil {
		return nil, errors.New("auth service: repositories are required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("auth service: token issuer is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryOTPCache()
	}
	if deps.Limiter == nil {
		deps.Limiter = NewOTPRateLimiter(time.Minute, 1)
	}
	if deps.SMS == nil {
		deps.SMS = sms.NewDisabledDispatcher("")
	}
	if deps.Hasher == nil {
		deps.Hasher = NewBcryptHasher(0)
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 120 * time.Second
	}
	if cfg.SMSTimeout <= 0 {
		cfg.SMSTimeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	dummy, err := deps.Hasher.Hash("ride-auth-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		logger:       deps.Logger,
		accounts:     deps.Accounts,
		profiles:     deps.Profiles,
		requestLogs:  deps.RequestLogs,
		cache:        deps.Cache,
		limiter:      deps.Limiter,
		sms:          deps.SMS,
		tokens:       deps.Tokens,
		hasher:       deps.Hasher,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		generateCode: generateOTPCode,
		dummyHash:    dummy,
	}, nil
}

// ClientInfo identifica el origen de la petición.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// OTPIssue es la respuesta de cualquier emisión de OTP.
type OTPIssue struct {
	Mobile  string `json:"mobile"`
	ExpTime int64  `json:"exp_time"`
}

// Session es el payload común de todo flujo exitoso.
type Session struct {
	Mobile                     string `json:"mobile"`
	IsStaff                    bool   `json:"is_staff"`
	IsVerifyPhone              bool   `json:"is_verify_phone"`
	IsPassenger                bool   `json:"is_passenger"`
	IsDriver                   bool   `json:"is_driver"`
	AccessToken                string `json:"access_token"`
	RefreshToken               string `json:"refresh_token"`
	TokenType                  string `json:"token_type"`
	ExpireTimestampAccessToken int64  `json:"expire_timestamp_access_token"`
	ExpireDateAccessToken      string `json:"expire_date_access_token"`
}

func validatePhone(field, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !domain.IsValidPhone(phone) {
		return "", newValidationError(field, "phone number must be digits and between 9 and 15 long")
	}
	return phone, nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestOTP crea la cuenta de pasajero si no existe y emite un código de login.
func (s *AuthService) RequestOTP(ctx context.Context, phone string, client ClientInfo) (OTPIssue, error) {
	phone, err := validatePhone("mobile_phone", phone)
	if err != nil {
		return OTPIssue{}, err
	}
	if !s.limiter.Allow(ctx, throttleKey(purposeLogin, phone)) {
		return OTPIssue{}, ErrRateLimited
	}

	now := s.now()
	account, err := s.accounts.GetOrCreate(ctx, domain.Account{
		ID:          newID(),
		Phone:       phone,
		IsPassenger: true,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return OTPIssue{}, err
	}
	if err := s.ensureRoleProfiles(ctx, account); err != nil {
		return OTPIssue{}, err
	}

	return s.issueOTP(ctx, purposeLogin, phone, client.IP)
}

// VerifyOTP canjea un código de login y abre sesión.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string, client ClientInfo) (Session, error) {
	phone, err := validatePhone("mobile_phone", phone)
	if err != nil {
		return Session{}, err
	}
	if err := s.consumeOTP(ctx, purposeLogin, phone, client.IP, code); err != nil {
		return Session{}, err
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if !account.IsActive {
		return Session{}, ErrAccountDisabled
	}
	if !account.IsVerifyPhone {
		if err := s.accounts.MarkPhoneVerified(ctx, account.ID); err != nil {
			return Session{}, err
		}
		account.IsVerifyPhone = true
	}
	return s.openSession(ctx, account)
}

// LoginPhonePassword no distingue cuenta inexistente de contraseña incorrecta.
func (s *AuthService) LoginPhonePassword(ctx context.Context, phone, password string) (Session, error) {
	phone = strings.TrimSpace(phone)
	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Session{}, err
	}
	if err != nil || !account.HasPassword() {
		_ = s.hasher.Compare(s.dummyHash, password)
		return Session{}, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !account.IsActive {
		return Session{}, ErrAccountDisabled
	}
	return s.openSession(ctx, account)
}

// SignUpByPhone registra una cuenta de pasajero con contraseña.
func (s *AuthService) SignUpByPhone(ctx context.Context, phone, password, confirmPassword string) (Session, error) {
	phone, err := validatePhone("phone", phone)
	if err != nil {
		return Session{}, err
	}
	if err := validatePassword("password", password); err != nil {
		return Session{}, err
	}

	_, err = s.accounts.GetByPhone(ctx, phone)
	if err == nil {
		return Session{}, ErrUserExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Session{}, err
	}
	if password != confirmPassword {
		return Session{}, ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	account := domain.Account{
		ID:           newID(),
		Phone:        phone,
		PasswordHash: hash,
		IsPassenger:  true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}
	if err := s.ensureRoleProfiles(ctx, account); err != nil {
		return Session{}, err
	}
	return s.openSession(ctx, account)
}

// RequestForgetPassword emite un código en el espacio de recuperación; solo para cuentas activas.
func (s *AuthService) RequestForgetPassword(ctx context.Context, phone string, client ClientInfo) (OTPIssue, error) {
	phone, err := validatePhone("phone", phone)
	if err != nil {
		return OTPIssue{}, err
	}
	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OTPIssue{}, ErrNotFound
		}
		return OTPIssue{}, err
	}
	if !account.IsActive {
		return OTPIssue{}, ErrNotFound
	}
	if !s.limiter.Allow(ctx, throttleKey(purposeForget, phone)) {
		return OTPIssue{}, ErrRateLimited
	}
	return s.issueOTP(ctx, purposeForget, phone, client.IP)
}

type VerifyForgetPasswordInput struct {
	Phone           string
	Code            string
	Password        string
	ConfirmPassword string
}

// VerifyForgetPassword rechaza la discrepancia de contraseñas antes de tocar la caché.
func (s *AuthService) VerifyForgetPassword(ctx context.Context, input VerifyForgetPasswordInput, client ClientInfo) (Session, error) {
	phone, err := validatePhone("phone", input.Phone)
	if err != nil {
		return Session{}, err
	}
	if input.Password != input.ConfirmPassword {
		return Session{}, ErrPasswordMismatch
	}
	if err := validatePassword("password", input.Password); err != nil {
		return Session{}, err
	}
	if err := s.consumeOTP(ctx, purposeForget, phone, client.IP, input.Code); err != nil {
		return Session{}, err
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if !account.IsActive {
		return Session{}, ErrAccountDisabled
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return Session{}, err
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, true); err != nil {
		return Session{}, err
	}
	account.PasswordHash = hash
	account.IsVerifyPhone = true
	return s.openSession(ctx, account)
}

type ResetPasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// ResetPassword cambia la contraseña de una sesión autenticada.
func (s *AuthService) ResetPassword(ctx context.Context, accountID string, input ResetPasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword("new_password", input.NewPassword); err != nil {
		return err
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !account.IsActive {
		return ErrAccountDisabled
	}
	if !account.HasPassword() || s.hasher.Compare(account.PasswordHash, input.OldPassword) != nil {
		return ErrOldPasswordMismatch
	}
	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, account.ID, hash, false)
}

// RequestVerifyPhone registra el intento y emite un código canjeable en VerifyOTP.
func (s *AuthService) RequestVerifyPhone(ctx context.Context, phone string, client ClientInfo) (OTPIssue, error) {
	phone, err := validatePhone("phone", phone)
	if err != nil {
		return OTPIssue{}, err
	}
	if err := s.requestLogs.Create(ctx, domain.RequestLog{
		ID:        newID(),
		Phone:     phone,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: s.now(),
	}); err != nil {
		return OTPIssue{}, err
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OTPIssue{}, ErrNotFound
		}
		return OTPIssue{}, err
	}
	if !account.IsActive {
		return OTPIssue{}, ErrNotFound
	}
	if account.IsVerifyPhone {
		return OTPIssue{}, ErrAccountAlreadyVerified
	}
	if !s.limiter.Allow(ctx, throttleKey(purposeLogin, phone)) {
		return OTPIssue{}, ErrRateLimited
	}
	return s.issueOTP(ctx, purposeLogin, phone, client.IP)
}

// Refresh rota el refresh token: el anterior deja de ser válido.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.ConsumeRefresh(ctx, refreshToken)
	if err != nil {
		return Session{}, err
	}
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrJWTInvalid
		}
		return Session{}, err
	}
	if !account.IsActive {
		return Session{}, ErrAccountDisabled
	}
	return s.openSession(ctx, account)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeRefresh(ctx, refreshToken)
}

// issueOTP envía primero y guarda después: un envío fallido no deja código en caché.
func (s *AuthService) issueOTP(ctx context.Context, purpose otpPurpose, phone, ip string) (OTPIssue, error) {
	code, err := s.generateCode()
	if err != nil {
		return OTPIssue{}, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SMSTimeout)
	err = s.sms.Send(sendCtx, phone, code)
	cancel()
	if err != nil {
		s.logger.Warn("sms dispatch failed",
			zap.String("phone", phone),
			zap.String("ip", ip),
			zap.String("purpose", string(purpose)),
			zap.String("kind", sms.Kind(err)),
			zap.Error(err),
		)
		return OTPIssue{}, fmt.Errorf("%w: %w", ErrDispatchFailure, err)
	}

	expiresAt := s.now().Add(s.cfg.OTPTTL)
	if err := s.cache.Put(ctx, otpKey(purpose, phone, ip), code, s.cfg.OTPTTL); err != nil {
		s.logger.Error("otp cache put failed", zap.String("phone", phone), zap.Error(err))
		return OTPIssue{}, err
	}
	return OTPIssue{Mobile: phone, ExpTime: expiresAt.Unix()}, nil
}

func (s *AuthService) consumeOTP(ctx context.Context, purpose otpPurpose, phone, ip, code string) error {
	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return ErrInvalidOrExpiredCode
	}
	ok, err := s.cache.Consume(ctx, otpKey(purpose, phone, ip), code)
	if err != nil {
		s.logger.Error("otp cache consume failed", zap.String("phone", phone), zap.Error(err))
		return err
	}
	if !ok {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

// ensureRoleProfiles crea el perfil de pasajero cuando la cuenta tiene is_passenger.
func (s *AuthService) ensureRoleProfiles(ctx context.Context, account domain.Account) error {
	if !account.IsPassenger {
		return nil
	}
	now := s.now()
	return s.profiles.EnsurePassenger(ctx, domain.PassengerProfile{
		ID:        newID(),
		AccountID: account.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *AuthService) openSession(ctx context.Context, account domain.Account) (Session, error) {
	pair, err := s.tokens.GeneratePair(ctx, account)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Mobile:                     account.Phone,
		IsStaff:                    account.IsStaff,
		IsVerifyPhone:              account.IsVerifyPhone,
		IsPassenger:                account.IsPassenger,
		IsDriver:                   account.IsDriver,
		AccessToken:                pair.AccessToken,
		RefreshToken:               pair.RefreshToken,
		TokenType:                  "Bearer",
		ExpireTimestampAccessToken: pair.AccessExpiresAt.Unix(),
		ExpireDateAccessToken:      pair.AccessExpiresAt.In(s.cfg.Location).Format(time.RFC3339),
	}, nil
}

func validatePassword(field, password string) error {
	if strings.TrimSpace(password) == "" {
		return newValidationError(field, "password is required")
	}
	if len(password) > 72 {
		return newValidationError(field, "password must be at most 72 bytes")
	}
	return nil
}
