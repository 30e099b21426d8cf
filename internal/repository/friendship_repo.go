package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"unitex/internal/domain"
)

type FriendshipRepository interface {
	// Create inserta la solicitud salvo que ya exista una fila para el par no ordenado.
	// Devuelve false cuando el par ya tenia fila.
	Create(ctx context.Context, f domain.Friendship) (bool, error)
	// Transition mueve una solicitud pending dirigida a addresseeID al estado to.
	Transition(ctx context.Context, id string, addresseeID int64, to domain.FriendshipStatus) (bool, error)
	GetBetween(ctx context.Context, a, b int64) (domain.Friendship, error)
	ListFriends(ctx context.Context, userID int64) ([]domain.UserSummary, error)
	ListPending(ctx context.Context, userID int64) ([]domain.PendingRequest, error)
	Suggestions(ctx context.Context, userID int64, limit int) ([]domain.UserSummary, error)
	CountAccepted(ctx context.Context, userID int64) (int, error)
}

type PgFriendshipRepository struct {
	db DBTX
}

func NewPgFriendshipRepository(db DBTX) *PgFriendshipRepository {
	return &PgFriendshipRepository{db: db}
}

func (r *PgFriendshipRepository) Create(ctx context.Context, f domain.Friendship) (bool, error) {
	// uq_friendships_pair indexa (LEAST, GREATEST) del par.
	const query = `
		INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, f.ID, f.RequesterID, f.AddresseeID, string(f.Status), f.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgFriendshipRepository) Transition(ctx context.Context, id string, addresseeID int64, to domain.FriendshipStatus) (bool, error) {
	const query = `
		UPDATE friendships SET status = $3, updated_at = NOW()
		WHERE id = $1 AND addressee_id = $2 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id, addresseeID, string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgFriendshipRepository) GetBetween(ctx context.Context, a, b int64) (domain.Friendship, error) {
	const query = `
		SELECT id::text, requester_id, addressee_id, status, created_at, updated_at
		FROM friendships
		WHERE LEAST(requester_id, addressee_id) = $1 AND GREATEST(requester_id, addressee_id) = $2
	`
	low, high := domain.PairKey(a, b)
	var f domain.Friendship
	var status string
	err := r.db.QueryRow(ctx, query, low, high).Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return domain.Friendship{}, err
	}
	f.Status = domain.FriendshipStatus(status)
	return f, nil
}

func (r *PgFriendshipRepository) ListFriends(ctx context.Context, userID int64) ([]domain.UserSummary, error) {
	const query = `
		SELECT u.id, u.name, u.user_id, u.avatar_url, u.bio, u.xp
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = 'accepted'
		ORDER BY u.name ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

func (r *PgFriendshipRepository) ListPending(ctx context.Context, userID int64) ([]domain.PendingRequest, error) {
	const query = `
		SELECT f.id::text, u.id, u.name, u.user_id, u.avatar_url, u.bio, u.xp, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PendingRequest{}
	for rows.Next() {
		var p domain.PendingRequest
		if err := rows.Scan(&p.RequestID, &p.ID, &p.Name, &p.Handle, &p.AvatarURL, &p.Bio, &p.XP, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgFriendshipRepository) Suggestions(ctx context.Context, userID int64, limit int) ([]domain.UserSummary, error) {
	const query = `
		SELECT u.id, u.name, u.user_id, u.avatar_url, u.bio, u.xp
		FROM users u
		WHERE u.id <> $1
		AND NOT EXISTS (
			SELECT 1 FROM friendships f
			WHERE (f.requester_id = $1 AND f.addressee_id = u.id)
			   OR (f.addressee_id = $1 AND f.requester_id = u.id)
		)
		ORDER BY u.xp DESC, u.id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

func (r *PgFriendshipRepository) CountAccepted(ctx context.Context, userID int64) (int, error) {
	const query = `
		SELECT COUNT(*) FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1) AND status = 'accepted'
	`
	var n int
	err := r.db.QueryRow(ctx, query, userID).Scan(&n)
	return n, err
}

func collectSummaries(rows pgx.Rows) ([]domain.UserSummary, error) {
	defer rows.Close()
	out := []domain.UserSummary{}
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Handle, &u.AvatarURL, &u.Bio, &u.XP); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
