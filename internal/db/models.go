package db

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Resolution selects which consumption series a query runs against.
type Resolution string

const (
	ResolutionDaily   Resolution = "D"
	ResolutionMonthly Resolution = "M"
)

// User represents an account row. This service never mutates users.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Blocked      bool
}

// Session represents a login session. Sessions are never deleted; logout
// moves the expiry to the present and lookups treat past expiry as absent.
type Session struct {
	SID     string
	UserID  int64
	Expires time.Time
}

// ConsumptionRecord is a single reading in the months or days series.
type ConsumptionRecord struct {
	UserID      int64
	Timestamp   time.Time
	Consumption float64
	Temperature float64
}
