package auth_test

import (
	"context"
	"testing"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/auth"
	"github.com/septivank/energy-metering-api/internal/db"
)

const testSalt = "__salt__"

type fakeUserSource struct {
	users map[string]*db.User
}

func (s *fakeUserSource) UserByUsername(ctx context.Context, username string) (*db.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func newSource(users ...*db.User) *fakeUserSource {
	s := &fakeUserSource{users: make(map[string]*db.User)}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func TestVerify_CorrectCredentials(t *testing.T) {
	source := newSource(&db.User{
		ID:           3,
		Username:     "alice",
		PasswordHash: auth.HashPassword(testSalt, "secret"),
	})
	verifier := auth.NewVerifier(source, testSalt)

	userID, err := verifier.Verify(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 3 {
		t.Errorf("Expected user id 3, got %d", userID)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	source := newSource(&db.User{
		ID:           3,
		Username:     "alice",
		PasswordHash: auth.HashPassword(testSalt, "secret"),
	})
	verifier := auth.NewVerifier(source, testSalt)

	_, err := verifier.Verify(context.Background(), "alice", "wrong")
	if !apperrors.IsUnauthorized(err) {
		t.Errorf("Expected Unauthorized for wrong password, got %v", err)
	}
}

func TestVerify_UnknownUsername(t *testing.T) {
	verifier := auth.NewVerifier(newSource(), testSalt)

	_, err := verifier.Verify(context.Background(), "nobody", "secret")
	if !apperrors.IsUnauthorized(err) {
		t.Errorf("Expected Unauthorized for unknown user, got %v", err)
	}
}

func TestVerify_BlockedAccount(t *testing.T) {
	source := newSource(&db.User{
		ID:           3,
		Username:     "alice",
		PasswordHash: auth.HashPassword(testSalt, "secret"),
		Blocked:      true,
	})
	verifier := auth.NewVerifier(source, testSalt)

	_, err := verifier.Verify(context.Background(), "alice", "secret")
	if !apperrors.IsUnauthorized(err) {
		t.Errorf("Expected Unauthorized for blocked account, got %v", err)
	}
}

func TestHashPassword_LegacyScheme(t *testing.T) {
	// sha256("__salt__" + "password") — fixed vector guarding hash
	// compatibility with existing password_hash rows.
	const expected = "8552455ddb0f3036cb8134d18f0a6108610f0027aba1feea3ab5945b133c791e"

	if got := auth.HashPassword("__salt__", "password"); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}
