package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/db"
)

// UserSource looks up user rows for credential checks.
type UserSource interface {
	UserByUsername(ctx context.Context, username string) (*db.User, error)
}

// Verifier checks username/password pairs against stored user records.
type Verifier struct {
	users UserSource
	salt  string
}

// NewVerifier creates a new credential verifier with the server-side salt.
func NewVerifier(users UserSource, salt string) *Verifier {
	return &Verifier{users: users, salt: salt}
}

// Verify returns the user's id when the credentials match an unblocked
// account. Unknown usernames, blocked accounts and wrong passwords all
// yield the same Unauthorized error.
func (v *Verifier) Verify(ctx context.Context, username, password string) (int64, error) {
	user, err := v.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return 0, apperrors.Unauthorized()
		}
		return 0, err
	}

	if user.Blocked {
		return 0, apperrors.Unauthorized()
	}

	if HashPassword(v.salt, password) != user.PasswordHash {
		return 0, apperrors.Unauthorized()
	}

	return user.ID, nil
}

// HashPassword computes the stored form of a password: hex sha256 of the
// salt concatenated with the password. Legacy scheme, kept as-is so that
// existing password_hash rows stay valid.
func HashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
