package domain

import (
	"fmt"
	"time"
)

// DeadlineLayout is the canonical sort-key encoding. Writes and point reads must
// both go through FormatDeadline or lookups silently miss.
const DeadlineLayout = time.RFC3339Nano

// Key is the composite storage key: ID partitions, Deadline sorts.
type Key struct {
	ID       string
	Deadline time.Time
}

func (k Key) String() string {
	if k.Deadline.IsZero() {
		return k.ID
	}
	return fmt.Sprintf("%s/%s", k.ID, FormatDeadline(k.Deadline))
}

// FormatDeadline renders a deadline as an ISO-8601 instant in UTC.
func FormatDeadline(t time.Time) string {
	return t.UTC().Format(DeadlineLayout)
}

// ParseDeadline parses an ISO-8601 instant and normalises it to UTC.
func ParseDeadline(value string) (time.Time, error) {
	t, err := time.Parse(DeadlineLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
