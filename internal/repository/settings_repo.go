package repository

import (
	"context"

	"unitex/internal/domain"
)

type SettingsRepository interface {
	// Create inserta la configuracion; no hace nada si ya existe.
	Create(ctx context.Context, settings domain.Settings) error
	Get(ctx context.Context, userID int64) (domain.Settings, error)
	Update(ctx context.Context, userID int64, visibility, intensity *string) (domain.Settings, error)
}

type PgSettingsRepository struct {
	db DBTX
}

func NewPgSettingsRepository(db DBTX) *PgSettingsRepository {
	return &PgSettingsRepository{db: db}
}

func (r *PgSettingsRepository) Create(ctx context.Context, s domain.Settings) error {
	const query = `
		INSERT INTO user_settings (user_id, profile_visibility, notification_intensity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, s.UserID, s.ProfileVisibility, s.NotificationIntensity, s.UpdatedAt)
	return err
}

func (r *PgSettingsRepository) Get(ctx context.Context, userID int64) (domain.Settings, error) {
	const query = `
		SELECT user_id, profile_visibility, notification_intensity, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	var s domain.Settings
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.ProfileVisibility, &s.NotificationIntensity, &s.UpdatedAt)
	if err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func (r *PgSettingsRepository) Update(ctx context.Context, userID int64, visibility, intensity *string) (domain.Settings, error) {
	const query = `
		UPDATE user_settings SET
			profile_visibility = COALESCE($2, profile_visibility),
			notification_intensity = COALESCE($3, notification_intensity),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, profile_visibility, notification_intensity, updated_at
	`
	var s domain.Settings
	err := r.db.QueryRow(ctx, query, userID, visibility, intensity).Scan(&s.UserID, &s.ProfileVisibility, &s.NotificationIntensity, &s.UpdatedAt)
	if err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}
