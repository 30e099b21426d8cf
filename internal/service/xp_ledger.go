package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

// XPObserver recibe cada acreditacion confirmada. Lo implementa el paquete metrics.
type XPObserver interface {
	ObserveXPGrant(reason string, amount int)
}

// XPLedger es el unico camino de mutacion del balance de XP.
// Cada acreditacion es un incremento atomico en la base mas una fila de auditoria.
type XPLedger struct {
	logger   *zap.Logger
	store    repository.Store
	observer XPObserver
	now      func() time.Time
}

func NewXPLedger(logger *zap.Logger, store repository.Store, observer XPObserver) *XPLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XPLedger{
		logger:   logger,
		store:    store,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Grant suma amount al balance de userID y devuelve el balance resultante.
func (l *XPLedger) Grant(ctx context.Context, userID int64, amount int, reason domain.XPReason) (int, error) {
	if l == nil || l.store == nil {
		return 0, ErrServiceNotConfigured
	}
	var balance int
	err := l.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		balance, err = l.grantTx(ctx, tx, userID, amount, reason)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.observe(domain.XPGrant{UserID: userID, Amount: amount, Reason: reason})
	return balance, nil
}

// GrantDailyLogin acredita el bono diario si userID no lo recibio en el dia UTC actual.
// Devuelve el balance y el monto acreditado (0 si ya lo tenia).
func (l *XPLedger) GrantDailyLogin(ctx context.Context, userID int64) (int, int, error) {
	if l == nil || l.store == nil {
		return 0, 0, ErrServiceNotConfigured
	}
	now := l.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		balance int
		awarded int
	)
	err := l.store.WithTx(ctx, func(tx repository.Store) error {
		b, ok, err := tx.XP().IncrementOncePerDay(ctx, userID, domain.XPDailyLogin, day)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("daily login xp: %w", err)
		}
		balance = b
		if !ok {
			return nil
		}
		awarded = domain.XPDailyLogin
		return tx.XP().Record(ctx, l.newGrant(userID, awarded, domain.ReasonDailyLogin))
	})
	if err != nil {
		return 0, 0, err
	}
	if awarded > 0 {
		l.observe(domain.XPGrant{UserID: userID, Amount: awarded, Reason: domain.ReasonDailyLogin})
	}
	return balance, awarded, nil
}

// AwardPost, AwardRSVP y AwardReflection son el contrato fijo para el subsistema de contenido.
func (l *XPLedger) AwardPost(ctx context.Context, userID int64) (int, error) {
	return l.Grant(ctx, userID, domain.XPPostCreated, domain.ReasonPostCreated)
}

func (l *XPLedger) AwardRSVP(ctx context.Context, userID int64) (int, error) {
	return l.Grant(ctx, userID, domain.XPEventRSVP, domain.ReasonEventRSVP)
}

func (l *XPLedger) AwardReflection(ctx context.Context, userID int64) (int, error) {
	return l.Grant(ctx, userID, domain.XPEventReflection, domain.ReasonEventReflection)
}

// grantTx acredita dentro de una transaccion ya abierta. El caller debe llamar a observe tras el commit.
func (l *XPLedger) grantTx(ctx context.Context, tx repository.Store, userID int64, amount int, reason domain.XPReason) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidXPAmount
	}
	balance, err := tx.XP().Increment(ctx, userID, amount)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("increment xp: %w", err)
	}
	if err := tx.XP().Record(ctx, l.newGrant(userID, amount, reason)); err != nil {
		return 0, fmt.Errorf("record xp grant: %w", err)
	}
	return balance, nil
}

func (l *XPLedger) newGrant(userID int64, amount int, reason domain.XPReason) domain.XPGrant {
	return domain.XPGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: l.now(),
	}
}

func (l *XPLedger) observe(grants ...domain.XPGrant) {
	for _, g := range grants {
		l.logger.Debug("xp granted",
			zap.Int64("user_id", g.UserID),
			zap.Int("amount", g.Amount),
			zap.String("reason", string(g.Reason)),
		)
		if l.observer != nil {
			l.observer.ObserveXPGrant(string(g.Reason), g.Amount)
		}
	}
}
