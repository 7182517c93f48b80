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

var userColumns = []string{"id", "external_id", "name", "username", "onboarding_status", "created_at", "updated_at"}

// GetUserByExternalID looks up a user by the messaging platform's identifier.
// Returns (nil, nil) when no such user exists.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	query := sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"external_id": externalID})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, queryStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser registers a new user in the pending onboarding state.
func (s *Store) CreateUser(ctx context.Context, externalID, name, username string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:               uuid.New(),
		ExternalID:       externalID,
		Name:             name,
		Username:         username,
		OnboardingStatus: OnboardingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	query := sq.Insert("users").
		Columns(userColumns...).
		Values(user.ID.String(), user.ExternalID, user.Name, user.Username,
			string(user.OnboardingStatus), toStamp(user.CreatedAt), toStamp(user.UpdatedAt))

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateOnboardingStatus moves a user to the given onboarding state.
func (s *Store) UpdateOnboardingStatus(ctx context.Context, userID uuid.UUID, status OnboardingStatus) error {
	query := sq.Update("users").
		Set("onboarding_status", string(status)).
		Set("updated_at", toStamp(time.Now())).
		Where(sq.Eq{"id": userID.String()})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, queryStr, args...)
	if err != nil {
		return fmt.Errorf("update onboarding status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update onboarding status: user %s not found", userID)
	}
	return nil
}

// DeleteUserData removes everything stored for a user: messages, ponderings,
// conversations, profile, and finally the user row itself. The whole removal
// runs in one transaction so a failure leaves the account intact.
func (s *Store) DeleteUserData(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	id := userID.String()

	deletions := []sq.DeleteBuilder{
		sq.Delete("messages").Where(
			sq.Expr("conversation_id IN (SELECT id FROM conversations WHERE user_id = ?)", id)),
		sq.Delete("ponderings").Where(sq.Eq{"user_id": id}),
		sq.Delete("conversations").Where(sq.Eq{"user_id": id}),
		sq.Delete("user_profiles").Where(sq.Eq{"user_id": id}),
		sq.Delete("users").Where(sq.Eq{"id": id}),
	}

	for _, del := range deletions {
		queryStr, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, queryStr, args...); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user               User
		id, status         string
		createdAt, updated int64
	)
	if err := row.Scan(&id, &user.ExternalID, &user.Name, &user.Username, &status, &createdAt, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	user.ID = parsed
	user.OnboardingStatus = OnboardingStatus(status)
	user.CreatedAt = fromStamp(createdAt)
	user.UpdatedAt = fromStamp(updated)
	return &user, nil
}
