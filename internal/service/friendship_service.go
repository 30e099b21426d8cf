package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

const suggestionsLimit = 10

// FriendshipService maneja el ciclo pending -> accepted | rejected.
// Existe a lo sumo una fila por par no ordenado; una solicitud rechazada bloquea nuevas solicitudes.
type FriendshipService struct {
	logger *zap.Logger
	store  repository.Store
	now    func() time.Time
}

func NewFriendshipService(logger *zap.Logger, store repository.Store) *FriendshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FriendshipService{
		logger: logger,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Request crea una solicitud pendiente de requesterID hacia addresseeRef (id o handle).
func (s *FriendshipService) Request(ctx context.Context, requesterID int64, addresseeRef string) (domain.Friendship, error) {
	if s == nil || s.store == nil {
		return domain.Friendship{}, ErrServiceNotConfigured
	}
	target, err := resolveUser(ctx, s.store.Users(), addresseeRef)
	if err != nil {
		return domain.Friendship{}, err
	}
	if target.ID == requesterID {
		return domain.Friendship{}, ErrSelfRequest
	}

	f := domain.Friendship{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		AddresseeID: target.ID,
		Status:      domain.FriendshipPending,
		CreatedAt:   s.now(),
	}
	created, err := s.store.Friendships().Create(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Friendship{}, ErrFriendshipExists
		}
		return domain.Friendship{}, fmt.Errorf("create friendship: %w", err)
	}
	if !created {
		return domain.Friendship{}, ErrFriendshipExists
	}
	f.UpdatedAt = f.CreatedAt
	return f, nil
}

func (s *FriendshipService) Accept(ctx context.Context, requestID string, callerID int64) error {
	return s.transition(ctx, requestID, callerID, domain.FriendshipAccepted)
}

func (s *FriendshipService) Reject(ctx context.Context, requestID string, callerID int64) error {
	return s.transition(ctx, requestID, callerID, domain.FriendshipRejected)
}

// transition solo procede si la fila existe, esta pendiente y callerID es el destinatario.
// Cualquier otro caso es ErrFriendRequestNotFound.
func (s *FriendshipService) transition(ctx context.Context, requestID string, callerID int64, to domain.FriendshipStatus) error {
	if s == nil || s.store == nil {
		return ErrServiceNotConfigured
	}
	if _, err := uuid.Parse(requestID); err != nil {
		return ErrFriendRequestNotFound
	}
	ok, err := s.store.Friendships().Transition(ctx, requestID, callerID, to)
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}
	if !ok {
		return ErrFriendRequestNotFound
	}
	return nil
}

// List devuelve las conexiones aceptadas en cualquier direccion.
func (s *FriendshipService) List(ctx context.Context, userID int64) ([]domain.UserSummary, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Friendships().ListFriends(ctx, userID)
}

func (s *FriendshipService) Pending(ctx context.Context, userID int64) ([]domain.PendingRequest, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Friendships().ListPending(ctx, userID)
}

// Suggestions devuelve identidades sin relacion previa con userID, por XP descendente.
func (s *FriendshipService) Suggestions(ctx context.Context, userID int64) ([]domain.UserSummary, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Friendships().Suggestions(ctx, userID, suggestionsLimit)
}

func (s *FriendshipService) Status(ctx context.Context, userID int64, otherRef string) (domain.FriendshipView, error) {
	if s == nil || s.store == nil {
		return domain.FriendshipView{}, ErrServiceNotConfigured
	}
	other, err := resolveUser(ctx, s.store.Users(), otherRef)
	if err != nil {
		return domain.FriendshipView{}, err
	}
	f, err := s.store.Friendships().GetBetween(ctx, userID, other.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.FriendshipView{Status: domain.FriendshipNone}, nil
		}
		return domain.FriendshipView{}, err
	}
	return domain.FriendshipView{
		Status:    f.Status,
		IsSender:  f.RequesterID == userID,
		RequestID: f.ID,
	}, nil
}
