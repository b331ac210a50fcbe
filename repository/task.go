package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskstore/domain"
)

// Operation names recorded on domain.RepositoryFailure.
const (
	OpPut               = "put"
	OpGetByKey          = "getByKey"
	OpQueryByPartition  = "queryByPartition"
	OpScanAll           = "scanAll"
	OpDeleteByKey       = "deleteByKey"
	OpDeleteByPartition = "deleteByPartition"
)

// TaskRepository is a partition+sort key store of task records. The partition
// key is the task id and the sort key the deadline.
//
// Store errors are returned as *domain.RepositoryFailure. An empty result is
// never an error: callers decide whether absence means not found.
type TaskRepository interface {
	// Put writes task under its composite key, overwriting any existing row, and
	// stamps its metadata.
	Put(ctx context.Context, task *domain.StoredTask) error
	// GetByKey is a point read. ok is false when the key is absent.
	GetByKey(ctx context.Context, id string, deadline time.Time) (task *domain.StoredTask, ok bool, err error)
	// QueryByPartition returns every row of a partition ordered by deadline.
	QueryByPartition(ctx context.Context, id string) ([]domain.StoredTask, error)
	// ScanAll returns every row in the table.
	ScanAll(ctx context.Context) ([]domain.StoredTask, error)
	DeleteByKey(ctx context.Context, id string, deadline time.Time) error
	// DeleteByPartition removes every row sharing id. Deleting an absent
	// partition is not an error.
	DeleteByPartition(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
