package domain

import (
	"regexp"
	"time"
)

var phonePattern = regexp.MustCompile(`^[0-9]{9,15}$`)

// IsValidPhone acepta solo dígitos, entre 9 y 15.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Account es la identidad del usuario; el teléfono es su único identificador externo.
type Account struct {
	ID            string    `json:"id"`
	Phone         string    `json:"phone"`
	PasswordHash  string    `json:"-"`
	IsVerifyPhone bool      `json:"is_verify_phone"`
	IsPassenger   bool      `json:"is_passenger"`
	IsDriver      bool      `json:"is_driver"`
	IsStaff       bool      `json:"is_staff"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasPassword indica si la cuenta puede autenticarse con contraseña.
// Las cuentas creadas solo por OTP no tienen hash.
func (a Account) HasPassword() bool {
	return a.PasswordHash != ""
}

type PassengerProfile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ImageID   *string   `json:"image_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestLog registra cada intento de verificación de teléfono.
type RequestLog struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
