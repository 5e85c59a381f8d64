package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed-width so that TEXT comparison in SQL matches
// chronological order. All values are stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the storage layout plus RFC 3339, which rows written by
// other tools may use. Empty or NULL values yield the zero time.
func parseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, s.String); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parseTime %q: %w", s.String, err)
	}
	return t.UTC(), nil
}
