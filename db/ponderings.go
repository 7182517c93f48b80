package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var ponderingColumns = []string{"id", "user_id", "conversation_id", "raw_content", "cleaned_content", "interpretation", "category", "is_valid", "received_at", "processed_at"}

// CreatePondering stores a classified reflection. Invalid ponderings are
// stored too so the raw text is never lost.
func (s *Store) CreatePondering(ctx context.Context, p *Pondering) (*Pondering, error) {
	stored := *p
	stored.ID = uuid.New()
	if stored.ReceivedAt.IsZero() {
		stored.ReceivedAt = time.Now()
	}
	stored.ProcessedAt = time.Now()

	query := sq.Insert("ponderings").
		Columns(ponderingColumns...).
		Values(stored.ID.String(), stored.UserID.String(), stored.ConversationID.String(),
			stored.RawContent, stored.CleanedContent, stored.Interpretation,
			string(stored.Category), stored.IsValid,
			toStamp(stored.ReceivedAt), toStamp(stored.ProcessedAt))

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return nil, fmt.Errorf("create pondering: %w", err)
	}
	return &stored, nil
}

// RecentPonderings returns a user's latest valid ponderings, newest first.
func (s *Store) RecentPonderings(ctx context.Context, userID uuid.UUID, limit int) ([]Pondering, error) {
	query := sq.Select(ponderingColumns...).
		From("ponderings").
		Where(sq.Eq{"user_id": userID.String(), "is_valid": true}).
		OrderBy("processed_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list ponderings: %w", err)
	}
	defer rows.Close() //nolint:errcheck // no remedy for rows close error

	var ponderings []Pondering
	for rows.Next() {
		var (
			p                     Pondering
			id, userIDStr, convID string
			category              string
			receivedAt, processed int64
		)
		if err := rows.Scan(&id, &userIDStr, &convID, &p.RawContent, &p.CleanedContent,
			&p.Interpretation, &category, &p.IsValid, &receivedAt, &processed); err != nil {
			return nil, fmt.Errorf("scan pondering: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse pondering id: %w", err)
		}
		p.ID = parsed
		parsedUser, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		p.UserID = parsedUser
		parsedConv, err := uuid.Parse(convID)
		if err != nil {
			return nil, fmt.Errorf("parse conversation id: %w", err)
		}
		p.ConversationID = parsedConv
		p.Category = PonderingCategory(category)
		p.ReceivedAt = fromStamp(receivedAt)
		p.ProcessedAt = fromStamp(processed)
		ponderings = append(ponderings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ponderings: %w", err)
	}
	return ponderings, nil
}
