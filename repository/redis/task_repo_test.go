package redis_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/repository"
	redisRepo "github.com/fastygo/taskstore/repository/redis"
)

// newRepo connects to TEST_REDIS_URL and namespaces keys per test.
func newRepo(t *testing.T) repository.TaskRepository {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)
	client := redislib.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	table := "test_" + t.Name()
	keys, err := client.Keys(ctx, table+":*").Result()
	require.NoError(t, err)
	if len(keys) > 0 {
		require.NoError(t, client.Del(ctx, keys...).Err())
	}
	return redisRepo.NewTaskRepository(client, table)
}

func TestTaskRepository_PutAndQuery(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, offset := range []int{2, 0, 1} {
		task := &domain.StoredTask{ID: "t-1", Deadline: base.AddDate(0, 0, offset), Title: "row"}
		require.NoError(t, repo.Put(ctx, task))
		require.Equal(t, int64(1), task.Version)
	}

	rows, err := repo.QueryByPartition(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := range rows {
		require.True(t, rows[i].Deadline.Equal(base.AddDate(0, 0, i)))
	}

	got, ok, err := repo.GetByKey(ctx, "t-1", base)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "row", got.Title)

	_, ok, err = repo.GetByKey(ctx, "t-1", base.Add(time.Second))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTaskRepository_DeleteKeepsIndexInStep(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	deadline := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Put(ctx, &domain.StoredTask{ID: "a", Deadline: deadline}))
	require.NoError(t, repo.Put(ctx, &domain.StoredTask{ID: "b", Deadline: deadline}))

	require.NoError(t, repo.DeleteByKey(ctx, "a", deadline))
	require.NoError(t, repo.DeleteByPartition(ctx, "missing"))

	rows, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "b", rows[0].ID)

	require.NoError(t, repo.DeleteByPartition(ctx, "b"))
	rows, err = repo.ScanAll(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestTaskRepository_DeleteRacingPutKeepsPartitionListed(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	first := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		second := first.Add(time.Duration(i+1) * time.Hour)
		require.NoError(t, repo.Put(ctx, &domain.StoredTask{ID: "t-1", Deadline: first}))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = repo.DeleteByKey(ctx, "t-1", first)
		}()
		go func() {
			defer wg.Done()
			errs[1] = repo.Put(ctx, &domain.StoredTask{ID: "t-1", Deadline: second})
		}()
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		rows, err := repo.ScanAll(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.True(t, rows[0].Deadline.Equal(second))

		require.NoError(t, repo.DeleteByPartition(ctx, "t-1"))
	}
}
