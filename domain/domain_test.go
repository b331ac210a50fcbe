package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDeadline_CanonicalUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	local := time.Date(2030, 1, 1, 11, 0, 0, 0, paris)

	assert.Equal(t, "2030-01-01T10:00:00Z", FormatDeadline(local))
	assert.Equal(t, "2030-01-01T10:00:00.5Z", FormatDeadline(local.Add(500*time.Millisecond)))

	parsed, err := ParseDeadline("2030-01-01T11:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, FormatDeadline(local), FormatDeadline(parsed))
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = ParseDeadline("not-a-date")
	assert.Error(t, err)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "t-1", Key{ID: "t-1"}.String())
	assert.Equal(t, "t-1/2030-01-01T00:00:00Z", Key{ID: "t-1", Deadline: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}.String())
}

func TestTouch(t *testing.T) {
	first := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &StoredTask{}

	task.Touch(first)
	assert.Equal(t, first, task.CreatedAt)
	assert.Equal(t, int64(1), task.Version)

	task.Touch(first.Add(time.Hour))
	assert.Equal(t, first, task.CreatedAt)
	assert.Equal(t, first.Add(time.Hour), task.UpdatedAt)
	assert.Equal(t, int64(2), task.Version)
}

func TestEnumsRejectUnknownValues(t *testing.T) {
	var create TaskCreate
	assert.Error(t, json.Unmarshal([]byte(`{"priority":"URGENT"}`), &create))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"DONE"}`), &create))

	require.NoError(t, json.Unmarshal([]byte(`{"priority":"HIGH","status":"IN_REVIEW"}`), &create))
	assert.Equal(t, PriorityHigh, create.Priority)
	assert.Equal(t, StatusInReview, create.Status)
}

func TestErrorClassification(t *testing.T) {
	notFound := NotFound("Task not found with id [%s]", "x")
	assert.True(t, IsDomainError(notFound, ErrCodeNotFound))
	assert.False(t, IsDomainError(notFound, ErrCodeInvalid))

	failure := NewRepositoryFailure("put", Key{ID: "x"}, "Failed to save task with ID [x]", errors.New("timeout"))
	wrapped := fmt.Errorf("create: %w", failure)
	assert.True(t, IsDomainError(wrapped, ErrCodeRepository))
	assert.Equal(t, "Failed to save task with ID [x]", MessageOf(wrapped))
	assert.EqualError(t, failure, "Failed to save task with ID [x]: timeout")

	invalid := ValidationFailure([]string{"Title is mandatory", "Priority is mandatory"})
	assert.Equal(t, "Validation failed: Title is mandatory; Priority is mandatory;", invalid.Message)
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}

func TestSearchCriteria_Matches(t *testing.T) {
	deadline := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	task := TaskRead{
		ID:       "t-1",
		Priority: PriorityHigh,
		Status:   StatusInProgress,
		Labels:   []string{"work", "q2"},
		Assignee: "ana",
		Deadline: &deadline,
	}

	cases := []struct {
		name     string
		criteria SearchCriteria
		want     bool
	}{
		{"empty", SearchCriteria{}, true},
		{"status", SearchCriteria{Statuses: []TaskStatus{StatusPending, StatusInProgress}}, true},
		{"status miss", SearchCriteria{Statuses: []TaskStatus{StatusBlocked}}, false},
		{"priority miss", SearchCriteria{Priorities: []Priority{PriorityLow}}, false},
		{"any label", SearchCriteria{Labels: []string{"home", "q2"}}, true},
		{"label miss", SearchCriteria{Labels: []string{"home"}}, false},
		{"assignee", SearchCriteria{Assignee: "ana"}, true},
		{"assignee miss", SearchCriteria{Assignee: "bo"}, false},
		{"range", SearchCriteria{DateRange: &DateRange{From: deadline.Add(-time.Hour), To: deadline}}, true},
		{"open range", SearchCriteria{DateRange: &DateRange{From: deadline}}, true},
		{"range miss", SearchCriteria{DateRange: &DateRange{To: deadline.Add(-time.Hour)}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.criteria.Matches(task))
		})
	}
}

func TestSearchCriteria_CompletedNeedsOptIn(t *testing.T) {
	done := TaskRead{ID: "t-2", Status: StatusCompleted}

	assert.False(t, SearchCriteria{}.Matches(done))
	assert.True(t, SearchCriteria{IncludeCompleted: true}.Matches(done))

	noDeadline := TaskRead{ID: "t-3"}
	assert.False(t, SearchCriteria{DateRange: &DateRange{}}.Matches(noDeadline))
}
