package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ontheway/internal/database"
	"ontheway/internal/models"
)

const userColumns = `id, email, password_hash, name, group_name, avatar, points, progress_percent,
	oauth_provider, oauth_subject, created_at, updated_at`

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and their plan in one transaction
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User, plan []models.ReadingDay) error {
	now := time.Now().UTC()
	u.Points, u.ProgressPercent = 0, 0

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		id, err := tx.ExecReturningID(ctx, `
			INSERT INTO users (email, password_hash, name, group_name, avatar, points, progress_percent,
				oauth_provider, oauth_subject, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?)`,
			u.Email, u.PasswordHash, u.Name, u.GroupName, u.Avatar,
			u.OAuthProvider, u.OAuthSubject, now, now)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		u.ID = id
		return saveReadings(ctx, tx, id, plan)
	})
	if err != nil {
		return err
	}

	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// RestoreUser inserts a user with an explicit ID
func (r *UserRepository) RestoreUser(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, group_name, avatar, points, progress_percent,
			oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.GroupName, u.Avatar, u.Points, u.ProgressPercent,
		u.OAuthProvider, u.OAuthSubject, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to restore user %d: %w", u.ID, err)
	}

	// Explicit IDs leave the postgres sequence behind
	if r.db.Dialect.DriverName() == "postgres" {
		if _, err := r.db.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))"); err != nil {
			return fmt.Errorf("failed to advance user sequence: %w", err)
		}
	}
	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByOAuth retrieves a user linked to a provider identity
func (r *UserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.getUser(ctx, "oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *UserRepository) getUser(ctx context.Context, where string, args ...interface{}) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.GroupName,
		&u.Avatar,
		&u.Points,
		&u.ProgressPercent,
		&u.OAuthProvider,
		&u.OAuthSubject,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns every user ordered by ID
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProfile applies the non-nil fields of upd and returns the updated user
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	var sets []string
	var args []interface{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.GroupName != nil {
		sets = append(sets, "group_name = ?")
		args = append(args, *upd.GroupName)
	}
	if upd.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *upd.Avatar)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)

	result, err := r.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetUserByID(ctx, userID)
}

// UpdateScore stores the derived points and progress on the user
func (r *UserRepository) UpdateScore(ctx context.Context, userID int64, score models.Score) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET points = ?, progress_percent = ?, updated_at = ? WHERE id = ?",
		score.Points, score.ProgressPercent, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return nil
}

// LinkOAuthProvider links an OAuth provider to an existing user
func (r *UserRepository) LinkOAuthProvider(ctx context.Context, userID int64, provider, subject string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?",
		provider, subject, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(ctx context.Context, sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		sessionID, userID, expiresAt.UTC(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?", sessionID,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and reports how many went
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
