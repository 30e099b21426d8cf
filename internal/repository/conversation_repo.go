package repository

import (
	"context"
	"time"

	"unitex/internal/domain"
)

type ConversationRepository interface {
	// CreatePair inserta la conversacion del par canonico (low < high).
	// Devuelve false si el par ya tenia conversacion.
	CreatePair(ctx context.Context, id string, low, high int64, createdAt time.Time) (bool, error)
	FindPair(ctx context.Context, low, high int64) (string, error)
	AddParticipants(ctx context.Context, conversationID string, userIDs ...int64) error
	IsParticipant(ctx context.Context, conversationID string, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type PgConversationRepository struct {
	db DBTX
}

func NewPgConversationRepository(db DBTX) *PgConversationRepository {
	return &PgConversationRepository{db: db}
}

func (r *PgConversationRepository) CreatePair(ctx context.Context, id string, low, high int64, createdAt time.Time) (bool, error) {
	const query = `
		INSERT INTO conversations (id, user_low, user_high, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_low, user_high) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, id, low, high, createdAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgConversationRepository) FindPair(ctx context.Context, low, high int64) (string, error) {
	const query = `SELECT id::text FROM conversations WHERE user_low = $1 AND user_high = $2`
	var id string
	err := r.db.QueryRow(ctx, query, low, high).Scan(&id)
	return id, err
}

func (r *PgConversationRepository) AddParticipants(ctx context.Context, conversationID string, userIDs ...int64) error {
	const query = `
		INSERT INTO conversation_participants (conversation_id, user_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, conversationID, userIDs)
	return err
}

func (r *PgConversationRepository) IsParticipant(ctx context.Context, conversationID string, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)
	`
	var ok bool
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgConversationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	const query = `
		SELECT c.id::text, c.created_at,
		       (SELECT json_agg(json_build_object(
		                   'id', u.id,
		                   'name', u.name,
		                   'userId', u.user_id,
		                   'avatarUrl', u.avatar_url
		               ) ORDER BY u.id)
		        FROM conversation_participants cp
		        JOIN users u ON u.id = cp.user_id
		        WHERE cp.conversation_id = c.id) AS participants,
		       lm.content, lm.sender_id, lm.created_at
		FROM conversations c
		JOIN conversation_participants me ON me.conversation_id = c.id AND me.user_id = $1
		LEFT JOIN LATERAL (
			SELECT m.content, m.sender_id, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.seq DESC
			LIMIT 1
		) lm ON TRUE
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Conversation{}
	for rows.Next() {
		var (
			conv          domain.Conversation
			lastContent   *string
			lastSender    *int64
			lastCreatedAt *time.Time
		)
		if err := rows.Scan(&conv.ID, &conv.CreatedAt, &conv.Participants, &lastContent, &lastSender, &lastCreatedAt); err != nil {
			return nil, err
		}
		if lastContent != nil && lastSender != nil && lastCreatedAt != nil {
			conv.LastMessage = &domain.MessagePreview{
				Content:   *lastContent,
				SenderID:  *lastSender,
				CreatedAt: *lastCreatedAt,
			}
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PgConversationRepository) CreateMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	const query = `
		WITH ins AS (
			INSERT INTO messages (id, conversation_id, sender_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, conversation_id, sender_id, content, created_at
		)
		SELECT ins.id::text, ins.conversation_id::text, ins.sender_id, ins.content, ins.created_at,
		       u.name, u.user_id, u.avatar_url
		FROM ins
		JOIN users u ON u.id = ins.sender_id
	`
	var out domain.Message
	err := r.db.QueryRow(ctx, query, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt).Scan(
		&out.ID,
		&out.ConversationID,
		&out.SenderID,
		&out.Content,
		&out.CreatedAt,
		&out.SenderName,
		&out.SenderHandle,
		&out.SenderAvatar,
	)
	if err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

func (r *PgConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = `
		SELECT m.id::text, m.conversation_id::text, m.sender_id, m.content, m.created_at,
		       u.name, u.user_id, u.avatar_url
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.seq ASC
	`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.Content,
			&m.CreatedAt,
			&m.SenderName,
			&m.SenderHandle,
			&m.SenderAvatar,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
