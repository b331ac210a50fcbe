package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TitleMaxLength       = 100
	DescriptionMaxLength = 500

	DefaultStatus = StatusPending
)

// Priority is the urgency class of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value := Priority(raw)
	if raw != "" && !value.Valid() {
		return fmt.Errorf("unknown priority %q", raw)
	}
	*p = value
	return nil
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusInReview, StatusCompleted:
		return true
	}
	return false
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value := TaskStatus(raw)
	if raw != "" && !value.Valid() {
		return fmt.Errorf("unknown status %q", raw)
	}
	*s = value
	return nil
}

// SubTask is an item nested inside a task. Its ID is assigned by the mapper when missing.
type SubTask struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title" validate:"notblank,max=100"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	Assignee    string     `json:"assignee,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// StoredTask is the persisted record. ID is the partition key and Deadline the sort key.
type StoredTask struct {
	ID               string     `json:"id"`
	Deadline         time.Time  `json:"deadline"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Priority         Priority   `json:"priority"`
	Labels           []string   `json:"labels"`
	Assignee         string     `json:"assignee,omitempty"`
	Status           TaskStatus `json:"status"`
	SubTasks         []SubTask  `json:"subTasks"`
	ParentTaskID     string     `json:"parentTaskId,omitempty"`
	DependentTaskIDs []string   `json:"dependentTaskIds"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Version          int64      `json:"version"`
}

// Key returns the composite storage key of the record.
func (t *StoredTask) Key() Key {
	return Key{ID: t.ID, Deadline: t.Deadline}
}

// Touch stamps the write metadata before a put.
func (t *StoredTask) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now.UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}
	t.Version++
}

// TaskFields holds the caller-editable attributes shared by the create and update shapes.
type TaskFields struct {
	Title       string     `json:"title" validate:"notblank,max=100"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	Priority    Priority   `json:"priority" validate:"required"`
	Deadline    *time.Time `json:"deadline,omitempty" validate:"omitempty,futureorpresent"`
	Labels      []string   `json:"labels"`
	SubTasks    []*SubTask `json:"subTasks" validate:"dive,omitnil"`
	Assignee    string     `json:"assignee,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
}

// TaskCreate is the inbound shape of a create request. A caller supplied ID is ignored.
type TaskCreate struct {
	ID string `json:"id,omitempty"`
	TaskFields
}

// TaskUpdate is the inbound shape of an update request.
type TaskUpdate struct {
	ID string `json:"id" validate:"required"`
	TaskFields
	ParentTaskID     string   `json:"parentTaskId,omitempty"`
	DependentTaskIDs []string `json:"dependentTaskIds"`
}

// Metadata carries the write bookkeeping of a record in the read shape.
type Metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int64     `json:"version"`
}

// Progress is derived from the subtask list on every read.
type Progress struct {
	TotalSubTasks      int       `json:"totalSubTasks"`
	CompletedSubTasks  int       `json:"completedSubTasks"`
	ProgressPercentage float64   `json:"progressPercentage"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// TaskRead is the externally visible shape of a stored task.
type TaskRead struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Priority         Priority   `json:"priority,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Labels           []string   `json:"labels"`
	SubTasks         []SubTask  `json:"subTasks"`
	Assignee         string     `json:"assignee,omitempty"`
	Status           TaskStatus `json:"status,omitempty"`
	ParentTaskID     string     `json:"parentTaskId,omitempty"`
	DependentTaskIDs []string   `json:"dependentTaskIds"`
	Metadata         *Metadata  `json:"metadata,omitempty"`
	Progress         *Progress  `json:"progress,omitempty"`
}

func (t *TaskRead) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}
