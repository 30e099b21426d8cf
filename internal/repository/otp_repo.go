package repository

import (
	"context"

	"unitex/internal/domain"
)

// OTPRepository persiste un unico desafio vivo por email.
type OTPRepository interface {
	// Upsert reemplaza cualquier desafio previo del email (last write wins).
	Upsert(ctx context.Context, challenge domain.OTPChallenge) error
	// GetForUpdate bloquea la fila del email hasta el fin de la transaccion.
	GetForUpdate(ctx context.Context, email string) (domain.OTPChallenge, error)
	Delete(ctx context.Context, email string) error
}

type PgOTPRepository struct {
	db DBTX
}

func NewPgOTPRepository(db DBTX) *PgOTPRepository {
	return &PgOTPRepository{db: db}
}

func (r *PgOTPRepository) Upsert(ctx context.Context, c domain.OTPChallenge) error {
	const query = `
		INSERT INTO otp_codes (email, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`
	_, err := r.db.Exec(ctx, query, c.Email, c.CodeHash, c.ExpiresAt, c.CreatedAt)
	return err
}

func (r *PgOTPRepository) GetForUpdate(ctx context.Context, email string) (domain.OTPChallenge, error) {
	const query = `
		SELECT email, code_hash, expires_at, created_at
		FROM otp_codes
		WHERE email = $1
		FOR UPDATE
	`
	var c domain.OTPChallenge
	err := r.db.QueryRow(ctx, query, email).Scan(&c.Email, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	return c, nil
}

func (r *PgOTPRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE email = $1`, email)
	return err
}
