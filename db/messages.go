package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var messageColumns = []string{"id", "conversation_id", "role", "content", "sent_at"}

// AppendMessage saves one conversation turn and bumps the conversation's
// last_message_at.
func (s *Store) AppendMessage(ctx context.Context, conversationID uuid.UUID, role MessageRole, content string) (*Message, error) {
	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		SentAt:         time.Now(),
	}

	query := sq.Insert("messages").
		Columns(messageColumns...).
		Values(msg.ID.String(), msg.ConversationID.String(), string(msg.Role), msg.Content, toStamp(msg.SentAt))

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	if err := s.touchConversation(ctx, conversationID, msg.SentAt); err != nil {
		return nil, err
	}
	return msg, nil
}

// ConversationMessages returns the most recent limit turns of a conversation
// in chronological order. limit <= 0 returns the whole history.
func (s *Store) ConversationMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	query := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"conversation_id": conversationID.String()}).
		OrderBy("sent_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // no remedy for rows close error

	var messages []Message
	for rows.Next() {
		var (
			msg              Message
			id, convID, role string
			sentAt           int64
		)
		if err := rows.Scan(&id, &convID, &role, &msg.Content, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse message id: %w", err)
		}
		msg.ID = parsed
		parsedConv, err := uuid.Parse(convID)
		if err != nil {
			return nil, fmt.Errorf("parse conversation id: %w", err)
		}
		msg.ConversationID = parsedConv
		msg.Role = MessageRole(role)
		msg.SentAt = fromStamp(sentAt)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// Query ordered newest-first to apply the limit; callers want oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
