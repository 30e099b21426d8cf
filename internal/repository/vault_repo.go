package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"unitex/internal/domain"
)

type VaultRepository interface {
	// Insert guarda la entrada salvo que ya exista para (user, post). Devuelve false en ese caso.
	Insert(ctx context.Context, entry domain.VaultEntry) (domain.VaultEntry, bool, error)
	Delete(ctx context.Context, userID, postID int64) error
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	UpdateNote(ctx context.Context, id string, userID int64, note *string) (domain.VaultEntry, error)
	List(ctx context.Context, userID int64) ([]domain.VaultEntry, error)
}

type PgVaultRepository struct {
	db DBTX
}

func NewPgVaultRepository(db DBTX) *PgVaultRepository {
	return &PgVaultRepository{db: db}
}

const vaultColumns = `id::text, user_id, post_id, note, saved_at`

func scanVaultEntry(row pgx.Row) (domain.VaultEntry, error) {
	var e domain.VaultEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.PostID, &e.Note, &e.SavedAt); err != nil {
		return domain.VaultEntry{}, err
	}
	return e, nil
}

func (r *PgVaultRepository) Insert(ctx context.Context, entry domain.VaultEntry) (domain.VaultEntry, bool, error) {
	const query = `
		INSERT INTO vault_items (id, user_id, post_id, note, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING ` + vaultColumns
	saved, err := scanVaultEntry(r.db.QueryRow(ctx, query, entry.ID, entry.UserID, entry.PostID, entry.Note, entry.SavedAt))
	if IsNotFound(err) {
		return domain.VaultEntry{}, false, nil
	}
	if err != nil {
		return domain.VaultEntry{}, false, err
	}
	return saved, true, nil
}

func (r *PgVaultRepository) Delete(ctx context.Context, userID, postID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM vault_items WHERE user_id = $1 AND post_id = $2`, userID, postID)
	return err
}

func (r *PgVaultRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM vault_items WHERE user_id = $1 AND post_id = $2)`
	var ok bool
	err := r.db.QueryRow(ctx, query, userID, postID).Scan(&ok)
	return ok, err
}

func (r *PgVaultRepository) UpdateNote(ctx context.Context, id string, userID int64, note *string) (domain.VaultEntry, error) {
	const query = `
		UPDATE vault_items SET note = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + vaultColumns
	return scanVaultEntry(r.db.QueryRow(ctx, query, id, userID, note))
}

func (r *PgVaultRepository) List(ctx context.Context, userID int64) ([]domain.VaultEntry, error) {
	query := `SELECT ` + vaultColumns + ` FROM vault_items WHERE user_id = $1 ORDER BY saved_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.VaultEntry{}
	for rows.Next() {
		e, err := scanVaultEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
