package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"unitex/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByHandle(ctx context.Context, handle string) (domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateHandle(ctx context.Context, id int64, handle string) error
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (domain.User, error)
	// SetReferrer registra el referidor solo si el usuario no tenia uno. Devuelve false si ya existia.
	SetReferrer(ctx context.Context, id, referrerID int64) (bool, error)
	ListReferred(ctx context.Context, referrerID int64) ([]domain.ReferredUser, error)
	ReferralLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// PgUserRepository implementa UserRepository usando pgx.
type PgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, name, user_id, bio, avatar_url, skills,
	github_url, linkedin_url, twitter_url, xp, referral_code, referred_by,
	last_login_xp_date, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Handle,
		&u.Bio,
		&u.AvatarURL,
		&u.Skills,
		&u.GithubURL,
		&u.LinkedinURL,
		&u.TwitterURL,
		&u.XP,
		&u.ReferralCode,
		&u.ReferredBy,
		&u.LastLoginXPDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (email, password_hash, name, user_id, referral_code, referred_by, xp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	created, err := scanUser(r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Handle,
		user.ReferralCode,
		user.ReferredBy,
		user.XP,
	))
	if err != nil {
		return domain.User{}, translateError(err)
	}
	return created, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByHandle(ctx context.Context, handle string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, handle))
}

func (r *PgUserRepository) GetByReferralCode(ctx context.Context, code string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return scanUser(r.db.QueryRow(ctx, query, code))
}

func (r *PgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *PgUserRepository) UpdateHandle(ctx context.Context, id int64, handle string) error {
	const query = `UPDATE users SET user_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, handle)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (domain.User, error) {
	const query = `
		UPDATE users SET
			name = COALESCE($2, name),
			bio = COALESCE($3, bio),
			avatar_url = COALESCE($4, avatar_url),
			skills = COALESCE($5::text[], skills),
			github_url = COALESCE($6, github_url),
			linkedin_url = COALESCE($7, linkedin_url),
			twitter_url = COALESCE($8, twitter_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	// un slice nil viaja como NULL; una lista vacia explicita debe vaciar skills
	var skills []string
	if patch.Skills != nil {
		skills = *patch.Skills
		if skills == nil {
			skills = []string{}
		}
	}
	return scanUser(r.db.QueryRow(ctx, query,
		id,
		patch.Name,
		patch.Bio,
		patch.AvatarURL,
		skills,
		patch.GithubURL,
		patch.LinkedinURL,
		patch.TwitterURL,
	))
}

func (r *PgUserRepository) SetReferrer(ctx context.Context, id, referrerID int64) (bool, error) {
	const query = `
		UPDATE users SET referred_by = $2, updated_at = NOW()
		WHERE id = $1 AND referred_by IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, referrerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgUserRepository) ListReferred(ctx context.Context, referrerID int64) ([]domain.ReferredUser, error) {
	const query = `
		SELECT id, name, user_id, avatar_url, bio, xp, created_at
		FROM users
		WHERE referred_by = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ReferredUser{}
	for rows.Next() {
		var u domain.ReferredUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Handle, &u.AvatarURL, &u.Bio, &u.XP, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PgUserRepository) ReferralLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	const query = `
		SELECT u.id, u.name, u.user_id, u.avatar_url, u.bio, u.xp, COUNT(r.id) AS referral_count
		FROM users u
		JOIN users r ON r.referred_by = u.id
		GROUP BY u.id
		HAVING COUNT(r.id) > 0
		ORDER BY referral_count DESC, u.id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Handle, &e.AvatarURL, &e.Bio, &e.XP, &e.ReferralCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// IsNotFound indica si err corresponde a una fila inexistente.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
