package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	err := retry(ctx, func() error {
		_, execErr := r.pool.db.ExecContext(ctx, `
			INSERT INTO sessions (id, account_id, token, expires_at, created_at, updated_at, revoked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			session.ID,
			session.AccountID,
			session.Token,
			session.ExpiresAt.UTC().Format(time.RFC3339),
			session.CreatedAt.Format(time.RFC3339),
			session.UpdatedAt.Format(time.RFC3339),
			nullableTime(session.RevokedAt),
		)
		return execErr
	})
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, account_id, token, expires_at, created_at, updated_at, revoked_at
		FROM sessions
		WHERE token = ?
	`, token)
	session, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE sessions
			SET token = ?, expires_at = ?, updated_at = ?, revoked_at = ?
			WHERE id = ?
		`,
			session.Token,
			session.ExpiresAt.UTC().Format(time.RFC3339),
			session.UpdatedAt.Format(time.RFC3339),
			nullableTime(session.RevokedAt),
			session.ID,
		)
		return execErr
	})
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, err := r.GetSession(ctx, token)
	if err != nil {
		return persistence.Session{}, err
	}

	stamp := revokedAt.UTC()
	session.RevokedAt = &stamp
	return r.UpdateSession(ctx, session)
}

func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?",
		reference.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

func scanSession(scan func(dest ...any) error) (persistence.Session, error) {
	var session persistence.Session
	var expiresStr, createdStr, updatedStr string
	var revokedStr sql.NullString

	if err := scan(&session.ID, &session.AccountID, &session.Token, &expiresStr, &createdStr, &updatedStr, &revokedStr); err != nil {
		return persistence.Session{}, err
	}

	var err error
	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresStr); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	if revokedStr.Valid {
		revoked, err := time.Parse(time.RFC3339, revokedStr.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("sqlite: parse revoked_at: %w", err)
		}
		session.RevokedAt = &revoked
	}
	return session, nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339)
}
