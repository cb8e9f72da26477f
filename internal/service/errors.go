package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidOrExpiredCode   = errors.New("invalid or expired code")
	ErrAccountDisabled        = errors.New("account disabled")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrPasswordMismatch       = errors.New("password and confirm password do not match")
	ErrOldPasswordMismatch    = errors.New("old password is incorrect")
	ErrUserExists             = errors.New("user already exists")
	ErrAccountAlreadyVerified = errors.New("account already verified")
	ErrNotFound               = errors.New("not found")
	ErrImageNotFound          = errors.New("image not found")
	ErrImageNotOwned          = errors.New("image not owned by caller")
	ErrDuplicateDocument      = errors.New("document already submitted for this type")
	ErrProfileExists          = errors.New("driver profile already exists")
	ErrInvalidTransition      = errors.New("invalid verification status transition")
	ErrRateLimited            = errors.New("rate limited")
	ErrDispatchFailure        = errors.New("sms dispatch failed")
)

// ValidationError agrupa errores de entrada por campo.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
