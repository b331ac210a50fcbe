package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/repository"
)

const maxTxAttempts = 16

// taskRepository keeps one hash per partition, keyed "<table>:task:<id>", whose
// fields are formatted deadlines. A set "<table>:index" lists live partitions.
type taskRepository struct {
	client *redislib.Client
	prefix string
	now    func() time.Time
}

// NewTaskRepository creates a Redis-backed task repository namespaced by table.
func NewTaskRepository(client *redislib.Client, table string) repository.TaskRepository {
	if table == "" {
		table = "task_management"
	}
	return &taskRepository{
		client: client,
		prefix: table + ":",
		now:    time.Now,
	}
}

func (r *taskRepository) Put(ctx context.Context, task *domain.StoredTask) error {
	if err := repository.CheckKey(task); err != nil {
		return err
	}

	record := *task
	record.Touch(r.now())
	payload, err := json.Marshal(record)
	if err != nil {
		return repository.SaveFailure(task, err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.partitionKey(task.ID), domain.FormatDeadline(task.Deadline), payload)
	pipe.SAdd(ctx, r.indexKey(), task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return repository.SaveFailure(task, err)
	}

	*task = record
	return nil
}

func (r *taskRepository) GetByKey(ctx context.Context, id string, deadline time.Time) (*domain.StoredTask, bool, error) {
	value, err := r.client.HGet(ctx, r.partitionKey(id), domain.FormatDeadline(deadline)).Result()
	if errors.Is(err, redislib.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, repository.GetFailure(id, deadline, err)
	}

	var task domain.StoredTask
	if err := json.Unmarshal([]byte(value), &task); err != nil {
		return nil, false, repository.GetFailure(id, deadline, err)
	}
	return &task, true, nil
}

func (r *taskRepository) QueryByPartition(ctx context.Context, id string) ([]domain.StoredTask, error) {
	rows, err := r.client.HGetAll(ctx, r.partitionKey(id)).Result()
	if err != nil {
		return nil, repository.QueryFailure(id, err)
	}
	tasks, err := decodePartition(rows)
	if err != nil {
		return nil, repository.QueryFailure(id, err)
	}
	return tasks, nil
}

func (r *taskRepository) ScanAll(ctx context.Context) ([]domain.StoredTask, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, repository.ScanFailure(err)
	}

	var tasks []domain.StoredTask
	for _, id := range ids {
		rows, err := r.client.HGetAll(ctx, r.partitionKey(id)).Result()
		if err != nil {
			return nil, repository.ScanFailure(err)
		}
		partition, err := decodePartition(rows)
		if err != nil {
			return nil, repository.ScanFailure(err)
		}
		tasks = append(tasks, partition...)
	}
	return tasks, nil
}

func (r *taskRepository) DeleteByKey(ctx context.Context, id string, deadline time.Time) error {
	key := r.partitionKey(id)
	field := domain.FormatDeadline(deadline)

	// The index entry goes in the same transaction as the last row. WATCH
	// aborts it if a concurrent Put lands in the partition first.
	remove := func(tx *redislib.Tx) error {
		rows, err := tx.HLen(ctx, key).Result()
		if err != nil {
			return err
		}
		present, err := tx.HExists(ctx, key, field).Result()
		if err != nil {
			return err
		}
		emptied := rows == 0 || (present && rows == 1)

		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.HDel(ctx, key, field)
			if emptied {
				pipe.SRem(ctx, r.indexKey(), id)
			}
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.client.Watch(ctx, remove, key)
		if !errors.Is(err, redislib.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return repository.DeleteFailure(id, deadline, err)
	}
	return nil
}

func (r *taskRepository) DeleteByPartition(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.partitionKey(id))
	pipe.SRem(ctx, r.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return repository.DeleteFailure(id, time.Time{}, err)
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *taskRepository) partitionKey(id string) string {
	return r.prefix + "task:" + id
}

func (r *taskRepository) indexKey() string {
	return r.prefix + "index"
}

func decodePartition(rows map[string]string) ([]domain.StoredTask, error) {
	deadlines := make([]string, 0, len(rows))
	for field := range rows {
		deadlines = append(deadlines, field)
	}
	sort.Strings(deadlines)

	tasks := make([]domain.StoredTask, 0, len(deadlines))
	for _, field := range deadlines {
		var task domain.StoredTask
		if err := json.Unmarshal([]byte(rows[field]), &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
