package mapper

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskstore/domain"
)

// SubTaskIDPrefix marks ids generated for subtasks.
const SubTaskIDPrefix = "st-"

// IDGenerator supplies fresh identifiers for tasks and subtasks.
type IDGenerator interface {
	TaskID() string
	SubTaskID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) TaskID() string {
	return uuid.NewString()
}

func (UUIDGenerator) SubTaskID() string {
	return SubTaskIDPrefix + uuid.NewString()
}

// TaskMapper translates between the inbound, stored and read shapes of a task.
// Apart from subtask id assignment it has no side effects.
type TaskMapper struct {
	ids IDGenerator
	now func() time.Time
}

func New(ids IDGenerator) *TaskMapper {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &TaskMapper{ids: ids, now: time.Now}
}

// WithClock replaces the clock used for progress timestamps.
func (m *TaskMapper) WithClock(now func() time.Time) *TaskMapper {
	if now != nil {
		m.now = now
	}
	return m
}

// CreateToStored builds a new record from a create request. The caller id is
// dropped and metadata is left for the store to stamp.
func (m *TaskMapper) CreateToStored(create domain.TaskCreate) domain.StoredTask {
	stored := domain.StoredTask{
		Title:            create.Title,
		Description:      create.Description,
		Priority:         create.Priority,
		Labels:           copyStrings(create.Labels),
		Assignee:         create.Assignee,
		Status:           create.Status,
		SubTasks:         m.SubTasks(create.SubTasks),
		DependentTaskIDs: []string{},
	}
	if create.Deadline != nil {
		stored.Deadline = create.Deadline.UTC()
	}
	applyDefaults(&stored)
	return stored
}

// UpdateToStored overlays the editable fields of update onto target.
// ID, CreatedAt, UpdatedAt and Version of target are never touched.
// Subtasks are replaced, not merged.
func (m *TaskMapper) UpdateToStored(update domain.TaskUpdate, target *domain.StoredTask) {
	if target == nil {
		return
	}
	target.Title = update.Title
	target.Description = update.Description
	target.Priority = update.Priority
	if update.Deadline != nil {
		target.Deadline = update.Deadline.UTC()
	}
	target.Labels = copyStrings(update.Labels)
	target.SubTasks = m.SubTasks(update.SubTasks)
	target.Assignee = update.Assignee
	target.Status = update.Status
	target.ParentTaskID = update.ParentTaskID
	target.DependentTaskIDs = copyStrings(update.DependentTaskIDs)
	applyDefaults(target)
}

// SubTasks maps a subtask list. A nil list becomes empty and nil entries are dropped.
func (m *TaskMapper) SubTasks(subTasks []*domain.SubTask) []domain.SubTask {
	out := make([]domain.SubTask, 0, len(subTasks))
	for _, st := range subTasks {
		if mapped := m.SubTask(st); mapped != nil {
			out = append(out, *mapped)
		}
	}
	return out
}

// SubTask assigns an id to st when it has none. It mutates and returns st.
func (m *TaskMapper) SubTask(st *domain.SubTask) *domain.SubTask {
	if st == nil {
		return nil
	}
	if strings.TrimSpace(st.ID) == "" {
		st.ID = m.ids.SubTaskID()
	}
	return st
}

// StoredToRead renders the read shape with nested metadata and fresh progress.
func (m *TaskMapper) StoredToRead(stored domain.StoredTask) domain.TaskRead {
	read := domain.TaskRead{
		ID:               stored.ID,
		Title:            stored.Title,
		Description:      stored.Description,
		Priority:         stored.Priority,
		Labels:           copyStrings(stored.Labels),
		SubTasks:         append([]domain.SubTask{}, stored.SubTasks...),
		Assignee:         stored.Assignee,
		Status:           stored.Status,
		ParentTaskID:     stored.ParentTaskID,
		DependentTaskIDs: copyStrings(stored.DependentTaskIDs),
		Metadata: &domain.Metadata{
			CreatedAt: stored.CreatedAt,
			UpdatedAt: stored.UpdatedAt,
			Version:   stored.Version,
		},
	}
	if !stored.Deadline.IsZero() {
		deadline := stored.Deadline
		read.Deadline = &deadline
	}
	progress := m.ComputeProgress(stored)
	read.Progress = &progress
	return read
}

// ComputeProgress derives subtask completion. Zero subtasks yield 0%.
func (m *TaskMapper) ComputeProgress(stored domain.StoredTask) domain.Progress {
	total := len(stored.SubTasks)
	completed := 0
	for _, st := range stored.SubTasks {
		if st.Completed {
			completed++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}
	return domain.Progress{
		TotalSubTasks:      total,
		CompletedSubTasks:  completed,
		ProgressPercentage: percentage,
		LastUpdated:        m.now().UTC(),
	}
}

func applyDefaults(task *domain.StoredTask) {
	if task.Status == "" {
		task.Status = domain.DefaultStatus
	}
}

func copyStrings(in []string) []string {
	return append([]string{}, in...)
}
