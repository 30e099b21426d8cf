package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

// resolveUser acepta el id numerico o el handle. Un ref numerico que no es un id
// existente se intenta todavia como handle, igual que "id = $1 OR user_id = $1".
func resolveUser(ctx context.Context, users repository.UserRepository, ref string) (domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.User{}, ErrUserNotFound
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		user, err := users.GetByID(ctx, id)
		if err == nil {
			return user, nil
		}
		if !repository.IsNotFound(err) {
			return domain.User{}, fmt.Errorf("resolve user: %w", err)
		}
	}

	user, err := users.GetByHandle(ctx, ref)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}
