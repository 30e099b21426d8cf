package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

// VaultService es el conjunto de contenidos guardados por usuario.
type VaultService struct {
	store repository.Store
	now   func() time.Time
}

func NewVaultService(store repository.Store) *VaultService {
	return &VaultService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save inserta (userID, postID) una sola vez; si ya existe devuelve ErrAlreadySaved sin tocar la nota.
func (s *VaultService) Save(ctx context.Context, userID, postID int64, note *string) (domain.VaultEntry, error) {
	if s == nil || s.store == nil {
		return domain.VaultEntry{}, ErrServiceNotConfigured
	}
	if postID <= 0 {
		return domain.VaultEntry{}, ErrInvalidPostID
	}
	entry, created, err := s.store.Vault().Insert(ctx, domain.VaultEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		PostID:  postID,
		Note:    cleanNote(note),
		SavedAt: s.now(),
	})
	if err != nil {
		return domain.VaultEntry{}, fmt.Errorf("save vault entry: %w", err)
	}
	if !created {
		return domain.VaultEntry{}, ErrAlreadySaved
	}
	return entry, nil
}

// Unsave es idempotente.
func (s *VaultService) Unsave(ctx context.Context, userID, postID int64) error {
	if s == nil || s.store == nil {
		return ErrServiceNotConfigured
	}
	if postID <= 0 {
		return ErrInvalidPostID
	}
	return s.store.Vault().Delete(ctx, userID, postID)
}

func (s *VaultService) IsSaved(ctx context.Context, userID, postID int64) (bool, error) {
	if s == nil || s.store == nil {
		return false, ErrServiceNotConfigured
	}
	if postID <= 0 {
		return false, ErrInvalidPostID
	}
	return s.store.Vault().Exists(ctx, userID, postID)
}

// UpdateNote falla con ErrVaultEntryNotFound si la entrada no existe o es de otro usuario.
func (s *VaultService) UpdateNote(ctx context.Context, userID int64, entryID string, note *string) (domain.VaultEntry, error) {
	if s == nil || s.store == nil {
		return domain.VaultEntry{}, ErrServiceNotConfigured
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return domain.VaultEntry{}, ErrVaultEntryNotFound
	}
	entry, err := s.store.Vault().UpdateNote(ctx, entryID, userID, cleanNote(note))
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.VaultEntry{}, ErrVaultEntryNotFound
		}
		return domain.VaultEntry{}, fmt.Errorf("update vault note: %w", err)
	}
	return entry, nil
}

func (s *VaultService) List(ctx context.Context, userID int64) ([]domain.VaultEntry, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	return s.store.Vault().List(ctx, userID)
}

// cleanNote trata una nota vacia como ausente.
func cleanNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
