package timeparser

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ParseDate parses a calendar date in the YYYY-MM-DD format. Out-of-range
// components (month 13, day 32) are rejected, not normalized.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", dateStr, err)
	}
	return t, nil
}

// FormatDate formats a timestamp as YYYY-MM-DD, dropping any time-of-day
// component. FormatDate(ParseDate(s)) == s for every accepted s.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime formats a timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// TruncateToDay strips the time-of-day component from a timestamp.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
