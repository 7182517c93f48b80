package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var conversationColumns = []string{"id", "external_chat_id", "user_id", "started_at", "last_message_at"}

// GetOrCreateConversation returns the conversation for a chat, creating it on
// first contact. A chat maps to exactly one conversation.
func (s *Store) GetOrCreateConversation(ctx context.Context, externalChatID string, userID uuid.UUID) (*Conversation, error) {
	query := sq.Select(conversationColumns...).
		From("conversations").
		Where(sq.Eq{"external_chat_id": externalChatID})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	conv, err := scanConversation(s.db.QueryRowContext(ctx, queryStr, args...))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	conv = &Conversation{
		ID:             uuid.New(),
		ExternalChatID: externalChatID,
		UserID:         userID,
		StartedAt:      time.Now(),
	}

	insert := sq.Insert("conversations").
		Columns(conversationColumns...).
		Values(conv.ID.String(), conv.ExternalChatID, conv.UserID.String(), toStamp(conv.StartedAt), nil)

	queryStr, args, err = insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *Store) touchConversation(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	query := sq.Update("conversations").
		Set("last_message_at", toStamp(at)).
		Where(sq.Eq{"id": conversationID.String()})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func scanConversation(row *sql.Row) (*Conversation, error) {
	var (
		conv       Conversation
		id, userID string
		startedAt  int64
		lastAt     sql.NullInt64
	)
	if err := row.Scan(&id, &conv.ExternalChatID, &userID, &startedAt, &lastAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse conversation id: %w", err)
	}
	conv.ID = parsed
	parsedUser, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	conv.UserID = parsedUser
	conv.StartedAt = fromStamp(startedAt)
	conv.LastMessageAt = fromNullStamp(lastAt)
	return &conv, nil
}
