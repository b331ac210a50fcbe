package repository

import (
	"fmt"
	"time"

	"github.com/fastygo/taskstore/domain"
)

// SaveFailure wraps a store error raised while writing task.
func SaveFailure(task *domain.StoredTask, err error) error {
	return domain.NewRepositoryFailure(OpPut, task.Key(),
		fmt.Sprintf("Failed to save task with ID [%s]", task.ID), err)
}

// GetFailure wraps a store error raised by a point read.
func GetFailure(id string, deadline time.Time, err error) error {
	return domain.NewRepositoryFailure(OpGetByKey, domain.Key{ID: id, Deadline: deadline},
		fmt.Sprintf("Failed to retrieve task with ID [%s] and deadline [%s]", id, domain.FormatDeadline(deadline)), err)
}

// QueryFailure wraps a store error raised by a partition query.
func QueryFailure(id string, err error) error {
	return domain.NewRepositoryFailure(OpQueryByPartition, domain.Key{ID: id},
		fmt.Sprintf("Failed to retrieve task with ID [%s]", id), err)
}

// ScanFailure wraps a store error raised by a full table scan.
func ScanFailure(err error) error {
	return domain.NewRepositoryFailure(OpScanAll, domain.Key{}, "Failed to retrieve tasks", err)
}

// DeleteFailure wraps a store error raised by either delete form.
func DeleteFailure(id string, deadline time.Time, err error) error {
	op := OpDeleteByKey
	if deadline.IsZero() {
		op = OpDeleteByPartition
	}
	return domain.NewRepositoryFailure(op, domain.Key{ID: id, Deadline: deadline},
		fmt.Sprintf("Failed to delete task with ID [%s]", id), err)
}

// CheckKey rejects a record that cannot be addressed by the composite key.
func CheckKey(task *domain.StoredTask) error {
	if task == nil {
		return domain.NewRepositoryFailure(OpPut, domain.Key{}, "Failed to save task with ID []", domain.ErrMissingSortKey)
	}
	if task.Deadline.IsZero() {
		return SaveFailure(task, domain.ErrMissingSortKey)
	}
	return nil
}
