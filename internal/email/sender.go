package email

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender entrega el codigo OTP al usuario.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender se usa cuando no hay SMTP configurado; siempre falla.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

// LoggingSender registra cada codigo emitido antes de delegar la entrega,
// asi el flujo de verificacion sigue disponible aunque el envio falle.
type LoggingSender struct {
	logger *zap.Logger
	next   Sender
}

func NewLoggingSender(logger *zap.Logger, next Sender) *LoggingSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingSender{logger: logger, next: next}
}

func (s *LoggingSender) SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error {
	s.logger.Debug("verification otp issued",
		zap.String("email", toEmail),
		zap.String("otp", code),
		zap.Time("expires_at", expiresAt),
	)
	if s.next == nil {
		return nil
	}
	if err := s.next.SendVerificationOTP(ctx, toEmail, code, expiresAt); err != nil {
		s.logger.Warn("otp delivery failed", zap.String("email", toEmail), zap.Error(err))
		return err
	}
	return nil
}
