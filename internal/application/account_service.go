package application

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// AccountRepository captures the persistence operations needed by the account service.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account, passwordHash string) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	UpdateAccount(ctx context.Context, account Account) (Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]Account, error)
}

// CreateAccountParams wraps the data required to create an account.
type CreateAccountParams struct {
	Principal Principal
	Input     AccountInput
}

// UpdateAccountParams wraps the data required to update an account.
type UpdateAccountParams struct {
	Principal Principal
	AccountID string
	Input     AccountInput
}

// AccountService orchestrates validation, authorization, and persistence for accounts.
type AccountService struct {
	accounts     AccountRepository
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(accounts AccountRepository, idGenerator func() string, now func() time.Time) *AccountService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accounts: accounts,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		idGenerator: idGenerator,
		now:         now,
	}
}

// CreateAccount validates input and persists a new account for administrators.
func (s *AccountService) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	if s == nil {
		return Account{}, fmt.Errorf("AccountService is nil")
	}
	if !params.Principal.IsAdmin {
		return Account{}, ErrUnauthorized
	}

	normalized := normalizeAccountInput(params.Input)
	vErr := validateAccountInput(normalized, true)
	if vErr.HasErrors() {
		return Account{}, vErr
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		IsAdmin:     normalized.IsAdmin,
		CreatedAt:   s.now(),
	}
	account.UpdatedAt = account.CreatedAt

	if s.accounts == nil {
		return account, nil
	}

	persisted, err := s.accounts.CreateAccount(ctx, account, hash)
	if err != nil {
		return Account{}, mapRepoError(err)
	}
	return persisted, nil
}

// UpdateAccount validates input and updates an existing account for administrators.
func (s *AccountService) UpdateAccount(ctx context.Context, params UpdateAccountParams) (Account, error) {
	if s == nil {
		return Account{}, fmt.Errorf("AccountService is nil")
	}
	if !params.Principal.IsAdmin {
		return Account{}, ErrUnauthorized
	}
	if s.accounts == nil {
		return Account{}, fmt.Errorf("account repository not configured")
	}

	existing, err := s.accounts.GetAccount(ctx, params.AccountID)
	if err != nil {
		return Account{}, mapRepoError(err)
	}

	normalized := normalizeAccountInput(params.Input)
	vErr := validateAccountInput(normalized, false)
	if vErr.HasErrors() {
		return Account{}, vErr
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	persisted, err := s.accounts.UpdateAccount(ctx, updated)
	if err != nil {
		return Account{}, mapRepoError(err)
	}
	return persisted, nil
}

// DeleteAccount removes an account when requested by an administrator.
func (s *AccountService) DeleteAccount(ctx context.Context, principal Principal, accountID string) error {
	if s == nil {
		return fmt.Errorf("AccountService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.accounts == nil {
		return fmt.Errorf("account repository not configured")
	}

	if err := s.accounts.DeleteAccount(ctx, accountID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListAccounts returns all accounts for administrators, ordered by email.
func (s *AccountService) ListAccounts(ctx context.Context, principal Principal) ([]Account, error) {
	if s == nil {
		return nil, fmt.Errorf("AccountService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.accounts == nil {
		return nil, nil
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Account, len(accounts))
	copy(out, accounts)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func normalizeAccountInput(input AccountInput) AccountInput {
	return AccountInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    input.Password,
		IsAdmin:     input.IsAdmin,
	}
}

func validateAccountInput(input AccountInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	if requirePassword && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}

	return vErr
}
