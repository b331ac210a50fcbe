package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/mapper"
	"github.com/fastygo/taskstore/repository"
)

// UseCase orchestrates mapper and store for every task operation. It adds no
// locking: Update is a plain read-modify-write.
type UseCase struct {
	tasks  repository.TaskRepository
	mapper *mapper.TaskMapper
	ids    mapper.IDGenerator
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, taskMapper *mapper.TaskMapper, ids mapper.IDGenerator, logger *zap.Logger) *UseCase {
	if ids == nil {
		ids = mapper.UUIDGenerator{}
	}
	if taskMapper == nil {
		taskMapper = mapper.New(ids)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		mapper: taskMapper,
		ids:    ids,
		logger: logger,
	}
}

// Create stores a new task under a fresh id. An existing row with the same key
// is overwritten.
func (uc *UseCase) Create(ctx context.Context, create domain.TaskCreate) (*domain.TaskRead, error) {
	stored := uc.mapper.CreateToStored(create)
	stored.ID = uc.ids.TaskID()

	if err := uc.tasks.Put(ctx, &stored); err != nil {
		return nil, err
	}

	uc.logger.Info("task created", zap.String("task_id", stored.ID), zap.String("deadline", domain.FormatDeadline(stored.Deadline)))
	read := uc.mapper.StoredToRead(stored)
	return &read, nil
}

// Get returns the first row of the id's partition.
func (uc *UseCase) Get(ctx context.Context, id string) (*domain.TaskRead, error) {
	stored, err := uc.first(ctx, id)
	if err != nil {
		return nil, err
	}
	read := uc.mapper.StoredToRead(*stored)
	return &read, nil
}

// GetByKey is a point read on the composite key.
func (uc *UseCase) GetByKey(ctx context.Context, id string, deadline time.Time) (*domain.TaskRead, error) {
	stored, ok, err := uc.tasks.GetByKey(ctx, id, deadline)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("Task not found with id [%s] and deadline [%s]", id, domain.FormatDeadline(deadline))
	}

	uc.logger.Info("task retrieved", zap.String("task_id", id))
	read := uc.mapper.StoredToRead(*stored)
	return &read, nil
}

// Update overlays update onto the first row of its partition and writes it back.
// Concurrent updates of the same task can lose writes.
func (uc *UseCase) Update(ctx context.Context, update domain.TaskUpdate) (*domain.TaskRead, error) {
	stored, err := uc.first(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	uc.mapper.UpdateToStored(update, stored)
	if err := uc.tasks.Put(ctx, stored); err != nil {
		return nil, err
	}

	uc.logger.Info("task updated", zap.String("task_id", stored.ID), zap.Int64("version", stored.Version))
	read := uc.mapper.StoredToRead(*stored)
	return &read, nil
}

// List returns every stored task in store order.
func (uc *UseCase) List(ctx context.Context) ([]domain.TaskRead, error) {
	rows, err := uc.tasks.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	reads := make([]domain.TaskRead, 0, len(rows))
	for _, row := range rows {
		reads = append(reads, uc.mapper.StoredToRead(row))
	}
	uc.logger.Info("tasks listed", zap.Int("count", len(reads)))
	return reads, nil
}

// Search lists tasks and keeps those matching criteria.
func (uc *UseCase) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TaskRead, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.TaskRead, 0, len(all))
	for _, read := range all {
		if criteria.Matches(read) {
			matched = append(matched, read)
		}
	}
	return matched, nil
}

// Delete removes every row of the id's partition. Deleting an absent task
// succeeds.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	rows, err := uc.tasks.QueryByPartition(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.DeleteByPartition(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("task deleted", zap.String("task_id", id), zap.Int("rows", len(rows)))
	return nil
}

// DeleteByKey removes the single row at (id, deadline).
func (uc *UseCase) DeleteByKey(ctx context.Context, id string, deadline time.Time) error {
	if err := uc.tasks.DeleteByKey(ctx, id, deadline); err != nil {
		return err
	}
	uc.logger.Info("task row deleted", zap.String("task_id", id), zap.String("deadline", domain.FormatDeadline(deadline)))
	return nil
}

func (uc *UseCase) first(ctx context.Context, id string) (*domain.StoredTask, error) {
	rows, err := uc.tasks.QueryByPartition(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NotFound("Task not found with id [%s]", id)
	}
	return &rows[0], nil
}
