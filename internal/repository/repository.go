package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/septivank/energy-metering-api/internal/db"
)

// Repository handles database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserByUsername retrieves a user row by username. Returns
// db.ErrUserNotFound when no such user exists.
func (r *Repository) UserByUsername(ctx context.Context, username string) (*db.User, error) {
	query := `
		SELECT id, username, password_hash, blocked
		FROM users
		WHERE username = $1
	`

	var user db.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Blocked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// InsertSession persists a new session row.
func (r *Repository) InsertSession(ctx context.Context, session *db.Session) error {
	query := `
		INSERT INTO sessions (sid, user_id, expires)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, session.SID, session.UserID, session.Expires)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// SessionByID retrieves a session row by token. Returns
// db.ErrSessionNotFound when no such session exists; expiry is not checked
// here, that is the session store's contract.
func (r *Repository) SessionByID(ctx context.Context, sid string) (*db.Session, error) {
	query := `
		SELECT sid, user_id, expires
		FROM sessions
		WHERE sid = $1
	`

	var session db.Session
	err := r.pool.QueryRow(ctx, query, sid).Scan(
		&session.SID,
		&session.UserID,
		&session.Expires,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &session, nil
}

// ExpireSession moves a session's expiry to the given instant. Matching
// zero rows is not an error.
func (r *Repository) ExpireSession(ctx context.Context, sid string, at time.Time) error {
	query := `
		UPDATE sessions
		SET expires = $1
		WHERE sid = $2
	`

	_, err := r.pool.Exec(ctx, query, at, sid)
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	return nil
}

// SeriesRows retrieves every reading of one series for a user, unordered.
func (r *Repository) SeriesRows(ctx context.Context, userID int64, resolution db.Resolution) ([]db.ConsumptionRecord, error) {
	table, err := tableFor(resolution)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT user_id, timestamp, consumption, temperature
		FROM %s
		WHERE user_id = $1
	`, table)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s series: %w", table, err)
	}
	defer rows.Close()

	return scanRecords(rows, table)
}

// SeriesWindow retrieves at most limit readings of one series with
// timestamp >= start, ascending by timestamp.
func (r *Repository) SeriesWindow(ctx context.Context, userID int64, resolution db.Resolution, start time.Time, limit int) ([]db.ConsumptionRecord, error) {
	table, err := tableFor(resolution)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT user_id, timestamp, consumption, temperature
		FROM %s
		WHERE user_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
		LIMIT $3
	`, table)

	rows, err := r.pool.Query(ctx, query, userID, start, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s window: %w", table, err)
	}
	defer rows.Close()

	return scanRecords(rows, table)
}

// tableFor maps a resolution onto its table name. The switch is the only
// place a table name is chosen, so user input never reaches the SQL text.
func tableFor(resolution db.Resolution) (string, error) {
	switch resolution {
	case db.ResolutionMonthly:
		return "months", nil
	case db.ResolutionDaily:
		return "days", nil
	default:
		return "", fmt.Errorf("unknown resolution %q", resolution)
	}
}

func scanRecords(rows pgx.Rows, table string) ([]db.ConsumptionRecord, error) {
	var records []db.ConsumptionRecord
	for rows.Next() {
		var rec db.ConsumptionRecord
		if err := rows.Scan(&rec.UserID, &rec.Timestamp, &rec.Consumption, &rec.Temperature); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
