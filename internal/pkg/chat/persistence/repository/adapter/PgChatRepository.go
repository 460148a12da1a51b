package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists conversations, messages and read markers in
// Postgres. Message ids come from a BIGSERIAL sequence, so ids are strictly
// increasing in insertion order and safe to use as an exclusive cursor.
type PgChatRepository struct {
	pool          *pgxpool.Pool
	adminUsername string
}

func NewPgChatRepository(pool *pgxpool.Pool, adminUsername string) *PgChatRepository {
	return &PgChatRepository{pool: pool, adminUsername: adminUsername}
}

// Ensure interface is satisfied
var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var one int
	err := r.pool.QueryRow(ctx,
		"SELECT 1 FROM chat_participants WHERE chat_id = $1 AND user_id = $2",
		conversationID, userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgChatRepository) OtherParticipant(ctx context.Context, conversationID, userID int64) (chat.Participant, error) {
	if r == nil || r.pool == nil {
		return chat.Participant{}, errors.New("PgChatRepository: nil pool")
	}
	p := chat.Participant{ConversationID: conversationID}
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.username
		FROM chat_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.chat_id = $1 AND cp.user_id != $2
		LIMIT 1
	`, conversationID, userID).Scan(&p.UserID, &p.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Participant{}, chat.ErrNotFound
	}
	if err != nil {
		return chat.Participant{}, err
	}
	return p, nil
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, conversationID, senderID int64, text string) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	m := chat.Message{ConversationID: conversationID, SenderID: senderID, Text: text}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, created_at, (SELECT username FROM users WHERE id = $2)
	`, conversationID, senderID, text).Scan(&m.ID, &m.CreatedAt, &m.Sender)
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgChatRepository) MessagesBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 20
	}

	// Newest-first with the exclusive cursor, flipped to ascending below.
	var (
		rows pgx.Rows
		err  error
	)
	if beforeID > 0 {
		rows, err = r.pool.Query(ctx, `
			SELECT m.id, m.chat_id, m.sender_id, u.username, m.text, m.created_at
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.chat_id = $1 AND m.id < $2 AND NOT m.deleted
			ORDER BY m.id DESC
			LIMIT $3
		`, conversationID, beforeID, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT m.id, m.chat_id, m.sender_id, u.username, m.text, m.created_at
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.chat_id = $1 AND NOT m.deleted
			ORDER BY m.id DESC
			LIMIT $2
		`, conversationID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	// Flip to ascending id order for the client.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *PgChatRepository) ConversationWithAdmin(ctx context.Context, userID int64) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}

	var adminID int64
	err := r.pool.QueryRow(ctx,
		"SELECT id FROM users WHERE username = $1", r.adminUsername,
	).Scan(&adminID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, chat.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var chatID int64
	err = r.pool.QueryRow(ctx, `
		SELECT c.id FROM chats c
		JOIN chat_participants cp1 ON cp1.chat_id = c.id AND cp1.user_id = $1
		JOIN chat_participants cp2 ON cp2.chat_id = c.id AND cp2.user_id = $2
		LIMIT 1
	`, userID, adminID).Scan(&chatID)
	if err == nil {
		return chatID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx,
		"INSERT INTO chats (created_at) VALUES (now()) RETURNING id",
	).Scan(&chatID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2), ($1, $3)",
		chatID, userID, adminID,
	); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return chatID, nil
}

func (r *PgChatRepository) ListChats(ctx context.Context, userID int64) ([]chat.Summary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT
			c.id,
			u.username,
			last.text,
			last.created_at,
			EXISTS (
				SELECT 1 FROM messages msg
				WHERE msg.chat_id = c.id
				  AND msg.sender_id != $1
				  AND msg.created_at > COALESCE(
					(SELECT cr.viewed_at FROM chat_reads cr
					 WHERE cr.chat_id = c.id AND cr.user_id = $1),
					'epoch'::timestamptz
				  )
			) AS unread
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
		JOIN chat_participants cp2 ON cp2.chat_id = c.id AND cp2.user_id != $1
		JOIN users u ON u.id = cp2.user_id
		LEFT JOIN LATERAL (
			SELECT m.text, m.created_at
			FROM messages m
			WHERE m.chat_id = c.id
			ORDER BY m.id DESC
			LIMIT 1
		) last ON true
		ORDER BY last.created_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []chat.Summary
	for rows.Next() {
		var s chat.Summary
		if err := rows.Scan(&s.ConversationID, &s.OtherUsername, &s.LastMessage, &s.LastMessageAt, &s.Unread); err != nil {
			return nil, err
		}
		chats = append(chats, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return chats, nil
}

func (r *PgChatRepository) UpsertReadMarker(ctx context.Context, conversationID, userID int64, viewedAt time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_reads (chat_id, user_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, user_id)
		DO UPDATE SET viewed_at = EXCLUDED.viewed_at
	`, conversationID, userID, viewedAt)
	return err
}
