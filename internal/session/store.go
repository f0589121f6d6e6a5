package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/db"
)

const tokenBytes = 16 // 128 bits of entropy

// Repo persists session rows.
type Repo interface {
	InsertSession(ctx context.Context, session *db.Session) error
	SessionByID(ctx context.Context, sid string) (*db.Session, error)
	ExpireSession(ctx context.Context, sid string, at time.Time) error
}

// Store creates, resolves and invalidates sessions. Expiry is lazy: rows
// are never purged, a past expiry simply fails resolution.
type Store struct {
	sessions        Repo
	defaultDuration time.Duration
	maxDuration     time.Duration
}

// NewStore creates a session store with the configured default and maximum
// session lifetimes.
func NewStore(sessions Repo, defaultDuration, maxDuration time.Duration) *Store {
	return &Store{
		sessions:        sessions,
		defaultDuration: defaultDuration,
		maxDuration:     maxDuration,
	}
}

// Create issues a new session for the user. A requested duration in hours
// is capped at the maximum lifetime; nil means the default lifetime.
func (s *Store) Create(ctx context.Context, userID int64, requestedHours *int) (*db.Session, error) {
	duration := s.defaultDuration
	if requestedHours != nil {
		duration = time.Duration(*requestedHours) * time.Hour
	}
	if duration > s.maxDuration {
		duration = s.maxDuration
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := &db.Session{
		SID:     token,
		UserID:  userID,
		Expires: time.Now().Add(duration),
	}

	if err := s.sessions.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Resolve returns the owning user id of a session that is still valid at
// the current wall-clock time. Unknown tokens and past expiries both yield
// Unauthorized.
func (s *Store) Resolve(ctx context.Context, sid string) (int64, error) {
	session, err := s.sessions.SessionByID(ctx, sid)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return 0, apperrors.Unauthorized()
		}
		return 0, err
	}

	if !session.Expires.After(time.Now()) {
		return 0, apperrors.Unauthorized()
	}

	return session.UserID, nil
}

// Invalidate moves a session's expiry to now. Invalidating an unknown or
// already-expired token is a no-op, not an error.
func (s *Store) Invalidate(ctx context.Context, sid string) error {
	return s.sessions.ExpireSession(ctx, sid, time.Now())
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
