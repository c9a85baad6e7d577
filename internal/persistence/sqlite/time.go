package sqlite

import (
	"fmt"
	"time"
)

// Timestamps are stored as UTC text. SQLite has no native time type, so range
// queries and ORDER BY compare the raw column; the layout is fixed width to
// keep lexicographic order aligned with chronological order. RFC3339Nano is
// unsuitable for that: it trims trailing fractional zeros, which misorders
// values within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(column string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseTime(column, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
