package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

const leaderboardSize = 10

// ReferralService resuelve codigos y aplica el vinculo de referido, que es unico y permanente.
type ReferralService struct {
	logger      *zap.Logger
	store       repository.Store
	ledger      *XPLedger
	leaderboard LeaderboardCache
}

func NewReferralService(logger *zap.Logger, store repository.Store, ledger *XPLedger, leaderboard LeaderboardCache) *ReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leaderboard == nil {
		leaderboard = NewNoopLeaderboardCache()
	}
	return &ReferralService{
		logger:      logger,
		store:       store,
		ledger:      ledger,
		leaderboard: leaderboard,
	}
}

// Referrer es la proyeccion publica que devuelve Validate.
type Referrer struct {
	Name   string `json:"name"`
	Handle string `json:"userId"`
}

func (s *ReferralService) MyCode(ctx context.Context, userID int64) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrServiceNotConfigured
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.ReferralCode, nil
}

// MyReferrals lista a quienes userID refirio, mas recientes primero.
func (s *ReferralService) MyReferrals(ctx context.Context, userID int64) ([]domain.ReferredUser, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Users().ListReferred(ctx, userID)
}

// Validate no modifica estado. Devuelve nil si el codigo no existe.
func (s *ReferralService) Validate(ctx context.Context, code string) (*Referrer, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	user, err := s.store.Users().GetByReferralCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &Referrer{Name: user.Name, Handle: user.Handle}, nil
}

// Apply vincula userID al duenio de code y acredita a ambos.
// Devuelve el XP acreditado a userID.
func (s *ReferralService) Apply(ctx context.Context, userID int64, code string) (int, error) {
	if s == nil || s.store == nil || s.ledger == nil {
		return 0, ErrServiceNotConfigured
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	var grants []domain.XPGrant
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if user.ReferredBy != nil {
			return ErrAlreadyReferred
		}
		if code == "" {
			return ErrInvalidReferralCode
		}
		referrer, err := tx.Users().GetByReferralCode(ctx, code)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrInvalidReferralCode
			}
			return fmt.Errorf("resolve referral code: %w", err)
		}
		if referrer.ID == userID {
			return ErrSelfReferral
		}

		linked, err := tx.Users().SetReferrer(ctx, userID, referrer.ID)
		if err != nil {
			return fmt.Errorf("set referrer: %w", err)
		}
		if !linked {
			return ErrAlreadyReferred
		}

		grants = []domain.XPGrant{
			{UserID: userID, Amount: domain.XPReferralReferee, Reason: domain.ReasonReferralReferee},
			{UserID: referrer.ID, Amount: domain.XPReferralReferrer, Reason: domain.ReasonReferralReferrer},
		}
		for _, g := range grants {
			if _, err := s.ledger.grantTx(ctx, tx, g.UserID, g.Amount, g.Reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.ledger.observe(grants...)
	s.leaderboard.Invalidate(ctx)
	return domain.XPReferralReferee, nil
}

// Leaderboard devuelve los 10 mayores referidores con al menos un referido.
func (s *ReferralService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	if entries, ok := s.leaderboard.Get(ctx); ok {
		return entries, nil
	}
	entries, err := s.store.Users().ReferralLeaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}
	s.leaderboard.Set(ctx, entries)
	return entries, nil
}
