package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/taskstore/domain"
)

func marshalStrings(data []string) []byte {
	if data == nil {
		data = []string{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return []byte("[]")
	}
	return b
}

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func scanTasks(rows pgx.Rows) ([]domain.StoredTask, error) {
	defer rows.Close()

	var tasks []domain.StoredTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.StoredTask, error) {
	var task domain.StoredTask
	var (
		deadline   string
		priority   string
		status     string
		labels     []byte
		subTasks   []byte
		dependents []byte
	)

	if err := row.Scan(
		&task.ID,
		&deadline,
		&task.Title,
		&task.Description,
		&priority,
		&labels,
		&task.Assignee,
		&status,
		&subTasks,
		&task.ParentTaskID,
		&dependents,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.Version,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseDeadline(deadline)
	if err != nil {
		return nil, err
	}
	task.Deadline = parsed
	task.Priority = domain.Priority(priority)
	task.Status = domain.TaskStatus(status)

	for _, field := range []struct {
		raw  []byte
		dest interface{}
	}{
		{labels, &task.Labels},
		{subTasks, &task.SubTasks},
		{dependents, &task.DependentTaskIDs},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, err
		}
	}

	return &task, nil
}
