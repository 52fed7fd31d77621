package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func authFixtures(t *testing.T) (*credentialStoreStub, *sessionRepoStub) {
	t.Helper()

	hash, err := CreatePasswordHash("correct horse", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	account := Account{ID: "acct-1", Email: "admin@example.com", DisplayName: "Admin", IsAdmin: true}
	disabled := Account{ID: "acct-2", Email: "gone@example.com", DisplayName: "Gone", Disabled: true}

	creds := &credentialStoreStub{
		creds: map[string]AccountCredentials{
			"admin@example.com": {Account: account, PasswordHash: hash},
			"gone@example.com":  {Account: disabled, PasswordHash: hash},
		},
		accounts: map[string]Account{
			"acct-1": account,
			"acct-2": disabled,
		},
	}
	return creds, &sessionRepoStub{}
}

func tokenSequence(tokens ...string) func() string {
	i := 0
	return func() string {
		if i >= len(tokens) {
			return tokens[len(tokens)-1]
		}
		token := tokens[i]
		i++
		return token
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("issues a session for valid credentials", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		svc := NewAuthService(creds, sessions, nil, tokenSequence("sess-1", "tok-1"), fixedNow, time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "Admin@Example.com",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.Account.ID != "acct-1" {
			t.Fatalf("account id = %q, want acct-1", result.Account.ID)
		}
		if result.Session.Token != "tok-1" {
			t.Fatalf("token = %q, want tok-1", result.Session.Token)
		}
		if want := fixedNow().Add(time.Hour); !result.Session.ExpiresAt.Equal(want) {
			t.Fatalf("expires at = %v, want %v", result.Session.ExpiresAt, want)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		svc := NewAuthService(creds, sessions, nil, tokenSequence("sess-1"), fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email reads as invalid credentials", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		svc := NewAuthService(creds, sessions, nil, tokenSequence("sess-1"), fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "nobody@example.com",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects a disabled account", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		svc := NewAuthService(creds, sessions, nil, tokenSequence("sess-1"), fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "gone@example.com",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Run("returns the principal for a live session", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		sessions.sessions = map[string]Session{
			"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(time.Hour)},
		}
		svc := NewAuthService(creds, sessions, nil, nil, fixedNow, time.Hour)

		principal, err := svc.ValidateSession(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if principal.AccountID != "acct-1" || !principal.IsAdmin {
			t.Fatalf("principal = %+v, want acct-1 admin", principal)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		sessions.sessions = map[string]Session{
			"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(-time.Minute)},
		}
		svc := NewAuthService(creds, sessions, nil, nil, fixedNow, time.Hour)

		if _, err := svc.ValidateSession(context.Background(), "tok-1"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		revokedAt := fixedNow().Add(-time.Minute)
		sessions.sessions = map[string]Session{
			"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(time.Hour), RevokedAt: &revokedAt},
		}
		svc := NewAuthService(creds, sessions, nil, nil, fixedNow, time.Hour)

		if _, err := svc.ValidateSession(context.Background(), "tok-1"); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		svc := NewAuthService(creds, sessions, nil, nil, fixedNow, time.Hour)

		if _, err := svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	t.Run("rotates the token and extends expiry", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		sessions.sessions = map[string]Session{
			"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(time.Minute)},
		}
		svc := NewAuthService(creds, sessions, nil, tokenSequence("tok-2"), fixedNow, time.Hour)

		result, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "tok-1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.Session.Token != "tok-2" {
			t.Fatalf("token = %q, want tok-2", result.Session.Token)
		}
		if want := fixedNow().Add(time.Hour); !result.Session.ExpiresAt.Equal(want) {
			t.Fatalf("expires at = %v, want %v", result.Session.ExpiresAt, want)
		}
	})

	t.Run("expired session cannot refresh", func(t *testing.T) {
		creds, sessions := authFixtures(t)
		sessions.sessions = map[string]Session{
			"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(-time.Minute)},
		}
		svc := NewAuthService(creds, sessions, nil, tokenSequence("tok-2"), fixedNow, time.Hour)

		if _, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "tok-1"}); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	creds, sessions := authFixtures(t)
	sessions.sessions = map[string]Session{
		"tok-1": {ID: "sess-1", AccountID: "acct-1", Token: "tok-1", ExpiresAt: fixedNow().Add(time.Hour)},
	}
	svc := NewAuthService(creds, sessions, nil, nil, fixedNow, time.Hour)

	if err := svc.RevokeSession(context.Background(), "tok-1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	stored := sessions.sessions["tok-1"]
	if stored.RevokedAt == nil {
		t.Fatal("expected session to be revoked")
	}

	if err := svc.RevokeSession(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := CreatePasswordHash("s3cret-passphrase", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := VerifyPassword(hash, "s3cret-passphrase"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := VerifyPassword(hash, "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := VerifyPassword("not-a-hash", "whatever"); !errors.Is(err, ErrInvalidPasswordHash) {
		t.Fatalf("expected ErrInvalidPasswordHash, got %v", err)
	}
}
