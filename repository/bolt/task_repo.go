package bolt

import (
	"context"
	"encoding/json"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/repository"
)

// taskRepository stores one nested bucket per partition under the table
// bucket. Keys inside a partition are formatted deadlines, so cursor order is
// sort-key order.
type taskRepository struct {
	db    *bbolt.DB
	table []byte
	now   func() time.Time
}

// NewTaskRepository returns a BoltDB-backed implementation of TaskRepository.
// The table bucket must already exist.
func NewTaskRepository(db *bbolt.DB, table string) repository.TaskRepository {
	return &taskRepository{db: db, table: []byte(table), now: time.Now}
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

	err = r.db.Update(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		partition, err := root.CreateBucketIfNotExists([]byte(task.ID))
		if err != nil {
			return err
		}
		return partition.Put(sortKey(task.Deadline), payload)
	})
	if err != nil {
		return repository.SaveFailure(task, err)
	}

	*task = record
	return nil
}

func (r *taskRepository) GetByKey(ctx context.Context, id string, deadline time.Time) (*domain.StoredTask, bool, error) {
	var task *domain.StoredTask
	err := r.db.View(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		partition := root.Bucket([]byte(id))
		if partition == nil {
			return nil
		}
		value := partition.Get(sortKey(deadline))
		if value == nil {
			return nil
		}
		task, err = decode(value)
		return err
	})
	if err != nil {
		return nil, false, repository.GetFailure(id, deadline, err)
	}
	return task, task != nil, nil
}

func (r *taskRepository) QueryByPartition(ctx context.Context, id string) ([]domain.StoredTask, error) {
	var tasks []domain.StoredTask
	err := r.db.View(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		partition := root.Bucket([]byte(id))
		if partition == nil {
			return nil
		}
		tasks, err = collect(partition, tasks)
		return err
	})
	if err != nil {
		return nil, repository.QueryFailure(id, err)
	}
	return tasks, nil
}

func (r *taskRepository) ScanAll(ctx context.Context) ([]domain.StoredTask, error) {
	var tasks []domain.StoredTask
	err := r.db.View(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		c := root.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v != nil {
				continue
			}
			tasks, err = collect(root.Bucket(k), tasks)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, repository.ScanFailure(err)
	}
	return tasks, nil
}

func (r *taskRepository) DeleteByKey(ctx context.Context, id string, deadline time.Time) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		partition := root.Bucket([]byte(id))
		if partition == nil {
			return nil
		}
		if err := partition.Delete(sortKey(deadline)); err != nil {
			return err
		}
		if k, _ := partition.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(id))
		}
		return nil
	})
	if err != nil {
		return repository.DeleteFailure(id, deadline, err)
	}
	return nil
}

func (r *taskRepository) DeleteByPartition(ctx context.Context, id string) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		root, err := r.root(tx)
		if err != nil {
			return err
		}
		if root.Bucket([]byte(id)) == nil {
			return nil
		}
		return root.DeleteBucket([]byte(id))
	})
	if err != nil {
		return repository.DeleteFailure(id, time.Time{}, err)
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		_, err := r.root(tx)
		return err
	})
}

func (r *taskRepository) root(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(r.table)
	if b == nil {
		return nil, bbolt.ErrBucketNotFound
	}
	return b, nil
}

func collect(partition *bbolt.Bucket, into []domain.StoredTask) ([]domain.StoredTask, error) {
	c := partition.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		task, err := decode(v)
		if err != nil {
			return nil, err
		}
		into = append(into, *task)
	}
	return into, nil
}

func decode(value []byte) (*domain.StoredTask, error) {
	var task domain.StoredTask
	if err := json.Unmarshal(value, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func sortKey(deadline time.Time) []byte {
	return []byte(domain.FormatDeadline(deadline))
}
