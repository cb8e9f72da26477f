package sms

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// Dispatcher entrega un código OTP a un teléfono.
type Dispatcher interface {
	Send(ctx context.Context, phone, code string) error
}

var (
	ErrTimedOut         = errors.New("sms request timed out")
	ErrConnectionFailed = errors.New("sms connection failed")
	ErrNetworkFailed    = errors.New("sms network unreachable")
	ErrBadStatus        = errors.New("sms unexpected status")
	ErrDisabled         = errors.New("sms dispatcher disabled")
)

type disabledDispatcher struct {
	reason string
}

// NewDisabledDispatcher rechaza todos los envíos; se usa cuando no hay proveedor configurado.
func NewDisabledDispatcher(reason string) Dispatcher {
	return &disabledDispatcher{reason: reason}
}

func (d *disabledDispatcher) Send(_ context.Context, _, _ string) error {
	if d.reason == "" {
		return ErrDisabled
	}
	return fmt.Errorf("%w: %s", ErrDisabled, d.reason)
}

// LogDispatcher solo registra el envío. Útil en desarrollo local.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, phone, code string) error {
	if err := ctx.Err(); err != nil {
		return classifyTransportError(err)
	}
	d.logger.Info("sms dispatched", zap.String("phone", phone), zap.Int("code_len", len(code)))
	return nil
}

// classifyTransportError traduce fallos de transporte a los tipos del paquete.
func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimedOut, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimedOut, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
		return fmt.Errorf("%w: %w", ErrNetworkFailed, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", ErrNetworkFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkFailed, err)
}

// Kind devuelve el nombre estable del tipo de fallo, vacío si err no es de este paquete.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrTimedOut):
		return "timed_out"
	case errors.Is(err, ErrConnectionFailed):
		return "connection_failed"
	case errors.Is(err, ErrNetworkFailed):
		return "network_failed"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	}
	return ""
}
