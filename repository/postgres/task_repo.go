package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/repository"
)

const taskColumns = `id, deadline, title, description, priority, labels, assignee, status,
	sub_tasks, parent_task_id, dependent_task_ids, created_at, updated_at, version`

// DefaultTable is used when no table name is configured.
const DefaultTable = "task_management"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
	id                 TEXT        NOT NULL,
	deadline           TEXT        NOT NULL,
	title              TEXT        NOT NULL DEFAULT '',
	description        TEXT        NOT NULL DEFAULT '',
	priority           TEXT        NOT NULL DEFAULT '',
	labels             JSONB       NOT NULL DEFAULT '[]',
	assignee           TEXT        NOT NULL DEFAULT '',
	status             TEXT        NOT NULL DEFAULT 'PENDING',
	sub_tasks          JSONB       NOT NULL DEFAULT '[]',
	parent_task_id     TEXT        NOT NULL DEFAULT '',
	dependent_task_ids JSONB       NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL,
	version            BIGINT      NOT NULL DEFAULT 0,
	PRIMARY KEY (id, deadline)
)`

type taskRepository struct {
	pool  *pgxpool.Pool
	table string
	now   func() time.Time
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository
// over the named table. The deadline column holds the canonical sort-key
// string so point reads match byte for byte.
func NewTaskRepository(pool *pgxpool.Pool, table string) repository.TaskRepository {
	return &taskRepository{pool: pool, table: quoteTable(table), now: time.Now}
}

// EnsureTable creates the named task table if it does not exist yet.
func EnsureTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(createTableSQL, quoteTable(table))); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

func quoteTable(table string) string {
	if table == "" {
		table = DefaultTable
	}
	return pgx.Identifier{table}.Sanitize()
}

func (r *taskRepository) Put(ctx context.Context, task *domain.StoredTask) error {
	if err := repository.CheckKey(task); err != nil {
		return err
	}

	record := *task
	record.Touch(r.now())

	query := `
	INSERT INTO ` + r.table + ` (` + taskColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id, deadline) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		priority = EXCLUDED.priority,
		labels = EXCLUDED.labels,
		assignee = EXCLUDED.assignee,
		status = EXCLUDED.status,
		sub_tasks = EXCLUDED.sub_tasks,
		parent_task_id = EXCLUDED.parent_task_id,
		dependent_task_ids = EXCLUDED.dependent_task_ids,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		version = EXCLUDED.version
	`

	subTasks, err := marshalJSON(record.SubTasks)
	if err != nil {
		return repository.SaveFailure(task, err)
	}

	if _, err := r.pool.Exec(ctx, query,
		record.ID,
		domain.FormatDeadline(record.Deadline),
		record.Title,
		record.Description,
		string(record.Priority),
		marshalStrings(record.Labels),
		record.Assignee,
		string(record.Status),
		subTasks,
		record.ParentTaskID,
		marshalStrings(record.DependentTaskIDs),
		record.CreatedAt,
		record.UpdatedAt,
		record.Version,
	); err != nil {
		return repository.SaveFailure(task, err)
	}

	*task = record
	return nil
}

func (r *taskRepository) GetByKey(ctx context.Context, id string, deadline time.Time) (*domain.StoredTask, bool, error) {
	query := `SELECT ` + taskColumns + ` FROM ` + r.table + ` WHERE id = $1 AND deadline = $2`

	rows, err := r.pool.Query(ctx, query, id, domain.FormatDeadline(deadline))
	if err != nil {
		return nil, false, repository.GetFailure(id, deadline, err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, false, repository.GetFailure(id, deadline, err)
	}
	if len(tasks) == 0 {
		return nil, false, nil
	}
	return &tasks[0], true, nil
}

func (r *taskRepository) QueryByPartition(ctx context.Context, id string) ([]domain.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM ` + r.table + ` WHERE id = $1 ORDER BY deadline COLLATE "C"`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, repository.QueryFailure(id, err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, repository.QueryFailure(id, err)
	}
	return tasks, nil
}

func (r *taskRepository) ScanAll(ctx context.Context) ([]domain.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM ` + r.table

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, repository.ScanFailure(err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, repository.ScanFailure(err)
	}
	return tasks, nil
}

func (r *taskRepository) DeleteByKey(ctx context.Context, id string, deadline time.Time) error {
	query := `DELETE FROM ` + r.table + ` WHERE id = $1 AND deadline = $2`
	if _, err := r.pool.Exec(ctx, query, id, domain.FormatDeadline(deadline)); err != nil {
		return repository.DeleteFailure(id, deadline, err)
	}
	return nil
}

func (r *taskRepository) DeleteByPartition(ctx context.Context, id string) error {
	query := `DELETE FROM ` + r.table + ` WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return repository.DeleteFailure(id, time.Time{}, err)
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
