package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/email"
	"unitex/internal/repository"
)

const otpTTL = 10 * time.Minute

// OTPService emite y verifica codigos de un solo uso ligados a un email.
// No crea la identidad: solo habilita el signup posterior.
type OTPService struct {
	logger      *zap.Logger
	store       repository.Store
	emailSender email.Sender
	now         func() time.Time
}

func NewOTPService(logger *zap.Logger, store repository.Store, emailSender email.Sender) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPService{
		logger:      logger,
		store:       store,
		emailSender: emailSender,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Issue genera un codigo nuevo para emailAddr, reemplazando cualquier desafio previo.
// Un fallo de entrega se registra pero no se devuelve.
func (s *OTPService) Issue(ctx context.Context, emailAddr string) error {
	if s == nil || s.store == nil {
		return ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return ErrInvalidEmail
	}
	if !isAllowedEmailDomain(emailAddr) {
		return ErrEmailDomainNotAllowed
	}

	exists, err := s.store.Users().EmailExists(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	now := s.now()
	code, hash, expiresAt, err := generateOTP(now)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	challenge := domain.OTPChallenge{
		Email:     emailAddr,
		CodeHash:  hash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.store.OTPs().Upsert(ctx, challenge); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if s.emailSender == nil {
		s.logger.Warn("otp issued without email sender", zap.String("email", emailAddr))
		return nil
	}
	if err := s.emailSender.SendVerificationOTP(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
	}
	return nil
}

// Verify consume el desafio si el codigo coincide y no expiro.
// Codigo incorrecto, expirado o inexistente devuelven el mismo error.
func (s *OTPService) Verify(ctx context.Context, emailAddr, code string) error {
	if s == nil || s.store == nil {
		return ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || !isValidOTPCode(code) {
		return ErrOTPInvalidOrExpired
	}

	return s.store.WithTx(ctx, func(tx repository.Store) error {
		challenge, err := tx.OTPs().GetForUpdate(ctx, emailAddr)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrOTPInvalidOrExpired
			}
			return fmt.Errorf("load otp: %w", err)
		}
		if !challenge.Live(s.now()) || !verifyOTP(code, challenge.CodeHash) {
			return ErrOTPInvalidOrExpired
		}
		if err := tx.OTPs().Delete(ctx, emailAddr); err != nil {
			return fmt.Errorf("consume otp: %w", err)
		}
		return nil
	})
}
