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

var profileColumns = []string{"id", "user_id", "daily_intentions", "core_values", "goals", "raw_extraction", "extracted_at", "updated_at"}

// UpsertProfile stores the extracted profile for a user, replacing any
// earlier extraction. A user has at most one profile.
func (s *Store) UpsertProfile(ctx context.Context, userID uuid.UUID, intentions, values, goals []string, rawExtraction string) (*UserProfile, error) {
	now := time.Now()
	profile := &UserProfile{
		ID:              uuid.New(),
		UserID:          userID,
		DailyIntentions: intentions,
		Values:          values,
		Goals:           goals,
		RawExtraction:   rawExtraction,
		ExtractedAt:     now,
		UpdatedAt:       now,
	}

	query := sq.Insert("user_profiles").
		Columns(profileColumns...).
		Values(profile.ID.String(), profile.UserID.String(),
			marshalList(intentions), marshalList(values), marshalList(goals),
			rawExtraction, toStamp(now), toStamp(now)).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
			daily_intentions = excluded.daily_intentions,
			core_values = excluded.core_values,
			goals = excluded.goals,
			raw_extraction = excluded.raw_extraction,
			extracted_at = excluded.extracted_at,
			updated_at = excluded.updated_at`)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	// Re-read so the caller sees the surviving row's id on update.
	return s.GetProfile(ctx, userID)
}

// GetProfile returns the profile extracted for a user, or (nil, nil) when
// onboarding has not produced one yet.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	query := sq.Select(profileColumns...).
		From("user_profiles").
		Where(sq.Eq{"user_id": userID.String()})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var (
		profile                            UserProfile
		id, uid                            string
		intentionsRaw, valuesRaw, goalsRaw string
		extractedAt, updatedAt             int64
	)
	err = s.db.QueryRowContext(ctx, queryStr, args...).Scan(
		&id, &uid, &intentionsRaw, &valuesRaw, &goalsRaw,
		&profile.RawExtraction, &extractedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse profile id: %w", err)
	}
	profile.ID = parsed
	parsedUser, err := uuid.Parse(uid)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	profile.UserID = parsedUser
	profile.DailyIntentions = unmarshalList(intentionsRaw)
	profile.Values = unmarshalList(valuesRaw)
	profile.Goals = unmarshalList(goalsRaw)
	profile.ExtractedAt = fromStamp(extractedAt)
	profile.UpdatedAt = fromStamp(updatedAt)
	return &profile, nil
}
