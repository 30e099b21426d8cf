package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConflict se devuelve cuando una escritura viola una restriccion de unicidad.
var ErrConflict = errors.New("unique constraint violation")

const pgUniqueViolation = "23505"

// Nombres de las restricciones de unicidad de users que los servicios distinguen.
const (
	ConstraintUsersEmail  = "users_email_key"
	ConstraintUsersHandle = "users_user_id_key"
)

// DBTX es el subconjunto de pgx que usan los repositorios.
// Lo implementan tanto *pgxpool.Pool como pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store agrupa los repositorios y permite ejecutarlos dentro de una transaccion.
type Store interface {
	Users() UserRepository
	OTPs() OTPRepository
	Settings() SettingsRepository
	XP() XPRepository
	Friendships() FriendshipRepository
	Conversations() ConversationRepository
	Vault() VaultRepository
	// WithTx ejecuta fn con un Store transaccional; commit si fn devuelve nil, rollback si no.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// PgStore implementa Store sobre pgx.
type PgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, db: pool}
}

func (s *PgStore) Users() UserRepository                 { return NewPgUserRepository(s.db) }
func (s *PgStore) OTPs() OTPRepository                   { return NewPgOTPRepository(s.db) }
func (s *PgStore) Settings() SettingsRepository          { return NewPgSettingsRepository(s.db) }
func (s *PgStore) XP() XPRepository                      { return NewPgXPRepository(s.db) }
func (s *PgStore) Friendships() FriendshipRepository     { return NewPgFriendshipRepository(s.db) }
func (s *PgStore) Conversations() ConversationRepository { return NewPgConversationRepository(s.db) }
func (s *PgStore) Vault() VaultRepository                { return NewPgVaultRepository(s.db) }

func (s *PgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		// ya estamos dentro de una transaccion
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PgStore{db: tx})
	})
}

// translateError convierte violaciones de unicidad en ErrConflict.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %w", ErrConflict, pgErr)
	}
	return err
}

// IsConflictOn indica si err es una violacion de unicidad sobre la restriccion dada.
func IsConflictOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.Is(err, ErrConflict) || !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.ConstraintName == constraint
}
