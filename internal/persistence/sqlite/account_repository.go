package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository on SQLite.
type AccountRepository struct {
	pool *ConnectionPool
}

func NewAccountRepository(pool *ConnectionPool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) error {
	if strings.TrimSpace(account.ID) == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	err := retry(ctx, func() error {
		_, execErr := r.pool.db.ExecContext(ctx, `
			INSERT INTO accounts (id, email, display_name, password_hash, is_admin, disabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			account.ID,
			strings.ToLower(account.Email),
			account.DisplayName,
			account.PasswordHash,
			boolToInt(account.IsAdmin),
			boolToInt(account.Disabled),
			account.CreatedAt.Format(time.RFC3339),
			account.UpdatedAt.Format(time.RFC3339),
		)
		return execErr
	})
	return mapError(err)
}

func (r *AccountRepository) UpdateAccount(ctx context.Context, account persistence.Account) error {
	account.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE accounts
			SET email = ?, display_name = ?, password_hash = ?, is_admin = ?, disabled = ?, updated_at = ?
			WHERE id = ?
		`,
			strings.ToLower(account.Email),
			account.DisplayName,
			account.PasswordHash,
			boolToInt(account.IsAdmin),
			boolToInt(account.Disabled),
			account.UpdatedAt.Format(time.RFC3339),
			account.ID,
		)
		return execErr
	})
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`, id)
	return r.scanOne(row)
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM accounts
		WHERE email = ?
	`, strings.ToLower(email))
	return r.scanOne(row)
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]persistence.Account, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, disabled, created_at, updated_at
		FROM accounts
		ORDER BY email ASC, id ASC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var accounts []persistence.Account
	for rows.Next() {
		account, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scanOne(row *sql.Row) (persistence.Account, error) {
	account, err := scanAccount(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Account{}, persistence.ErrNotFound
		}
		return persistence.Account{}, mapError(err)
	}
	return account, nil
}

func scanAccount(scan func(dest ...any) error) (persistence.Account, error) {
	var account persistence.Account
	var createdStr, updatedStr string
	var isAdmin, disabled int

	if err := scan(&account.ID, &account.Email, &account.DisplayName, &account.PasswordHash, &isAdmin, &disabled, &createdStr, &updatedStr); err != nil {
		return persistence.Account{}, err
	}
	account.IsAdmin = isAdmin != 0
	account.Disabled = disabled != 0

	var err error
	if account.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Account{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if account.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Account{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return account, nil
}
