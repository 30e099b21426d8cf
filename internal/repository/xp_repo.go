package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"unitex/internal/domain"
)

// XPRepository es el unico punto de escritura del balance de XP.
type XPRepository interface {
	// Increment suma amount de forma atomica y devuelve el balance resultante.
	Increment(ctx context.Context, userID int64, amount int) (int, error)
	// IncrementOncePerDay suma amount solo si last_login_xp_date difiere de day.
	IncrementOncePerDay(ctx context.Context, userID int64, amount int, day time.Time) (int, bool, error)
	Record(ctx context.Context, grant domain.XPGrant) error
	Balance(ctx context.Context, userID int64) (int, error)
}

type PgXPRepository struct {
	db DBTX
}

func NewPgXPRepository(db DBTX) *PgXPRepository {
	return &PgXPRepository{db: db}
}

func (r *PgXPRepository) Increment(ctx context.Context, userID int64, amount int) (int, error) {
	const query = `UPDATE users SET xp = xp + $2, updated_at = NOW() WHERE id = $1 RETURNING xp`
	var balance int
	err := r.db.QueryRow(ctx, query, userID, amount).Scan(&balance)
	return balance, err
}

func (r *PgXPRepository) IncrementOncePerDay(ctx context.Context, userID int64, amount int, day time.Time) (int, bool, error) {
	const query = `
		UPDATE users SET xp = xp + $2, last_login_xp_date = $3::date, updated_at = NOW()
		WHERE id = $1 AND last_login_xp_date IS DISTINCT FROM $3::date
		RETURNING xp
	`
	var balance int
	err := r.db.QueryRow(ctx, query, userID, amount, day.Format(time.DateOnly)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		current, err := r.Balance(ctx, userID)
		return current, false, err
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (r *PgXPRepository) Record(ctx context.Context, g domain.XPGrant) error {
	const query = `
		INSERT INTO xp_grants (id, user_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, g.ID, g.UserID, g.Amount, string(g.Reason), g.CreatedAt)
	return err
}

func (r *PgXPRepository) Balance(ctx context.Context, userID int64) (int, error) {
	var balance int
	err := r.db.QueryRow(ctx, `SELECT xp FROM users WHERE id = $1`, userID).Scan(&balance)
	return balance, err
}
