package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

// ConversationService registra canales de dos participantes y sus mensajes.
// El par (menor, mayor) es unico en la base, asi que dos llamadas concurrentes
// del mismo par terminan en la misma conversacion.
type ConversationService struct {
	logger *zap.Logger
	store  repository.Store
	now    func() time.Time
}

func NewConversationService(logger *zap.Logger, store repository.Store) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		logger: logger,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartOrGet devuelve la conversacion entre callerID y otherRef, creandola si no existe.
// existing es true cuando ya existia.
func (s *ConversationService) StartOrGet(ctx context.Context, callerID int64, otherRef string) (id string, existing bool, err error) {
	if s == nil || s.store == nil {
		return "", false, ErrServiceNotConfigured
	}
	other, err := resolveUser(ctx, s.store.Users(), otherRef)
	if err != nil {
		return "", false, err
	}
	if other.ID == callerID {
		return "", false, ErrSelfConversation
	}
	low, high := domain.PairKey(callerID, other.ID)

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		newID := uuid.NewString()
		created, err := tx.Conversations().CreatePair(ctx, newID, low, high, s.now())
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		if !created {
			found, err := tx.Conversations().FindPair(ctx, low, high)
			if err != nil {
				return fmt.Errorf("find conversation: %w", err)
			}
			id, existing = found, true
			return nil
		}
		if err := tx.Conversations().AddParticipants(ctx, newID, callerID, other.ID); err != nil {
			return fmt.Errorf("add participants: %w", err)
		}
		id, existing = newID, false
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return id, existing, nil
}

// Send agrega un mensaje de callerID. Solo los participantes pueden escribir.
func (s *ConversationService) Send(ctx context.Context, callerID int64, conversationID, content string) (domain.Message, error) {
	if s == nil || s.store == nil {
		return domain.Message{}, ErrServiceNotConfigured
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, ErrEmptyMessage
	}
	if err := s.ensureParticipant(ctx, conversationID, callerID); err != nil {
		return domain.Message{}, err
	}

	msg, err := s.store.Conversations().CreateMessage(ctx, domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       callerID,
		Content:        content,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// List devuelve las conversaciones de callerID, mas recientes primero, con su ultimo mensaje.
func (s *ConversationService) List(ctx context.Context, callerID int64) ([]domain.Conversation, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Conversations().ListForUser(ctx, callerID)
}

// Messages devuelve los mensajes en orden de creacion.
func (s *ConversationService) Messages(ctx context.Context, callerID int64, conversationID string) ([]domain.Message, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	if err := s.ensureParticipant(ctx, conversationID, callerID); err != nil {
		return nil, err
	}
	return s.store.Conversations().ListMessages(ctx, conversationID)
}

func (s *ConversationService) ensureParticipant(ctx context.Context, conversationID string, userID int64) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return ErrNotParticipant
	}
	ok, err := s.store.Conversations().IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}
