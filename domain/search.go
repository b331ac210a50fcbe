package domain

import "time"

// DateRange bounds a deadline search. Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// SearchCriteria filters listed tasks. Empty criteria match everything except
// completed tasks, which need IncludeCompleted.
type SearchCriteria struct {
	Statuses         []TaskStatus `json:"statuses,omitempty"`
	Priorities       []Priority   `json:"priorities,omitempty"`
	Labels           []string     `json:"labels,omitempty"`
	DateRange        *DateRange   `json:"dateRange,omitempty"`
	Assignee         string       `json:"assignee,omitempty"`
	IncludeCompleted bool         `json:"includeCompleted"`
}

// Matches reports whether task satisfies every non-empty criterion.
func (c SearchCriteria) Matches(task TaskRead) bool {
	if task.IsCompleted() && !c.IncludeCompleted {
		return false
	}
	if len(c.Statuses) > 0 && !contains(c.Statuses, task.Status) {
		return false
	}
	if len(c.Priorities) > 0 && !contains(c.Priorities, task.Priority) {
		return false
	}
	if c.Assignee != "" && c.Assignee != task.Assignee {
		return false
	}
	if len(c.Labels) > 0 && !anyOf(c.Labels, task.Labels) {
		return false
	}
	if c.DateRange != nil {
		if task.Deadline == nil || !c.DateRange.Contains(*task.Deadline) {
			return false
		}
	}
	return true
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func anyOf(wanted, have []string) bool {
	for _, w := range wanted {
		if contains(have, w) {
			return true
		}
	}
	return false
}
