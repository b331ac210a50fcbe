package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"
)

func TestOpen_CreatesDirectoryAndTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	db, err := Open(path, "")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.View(func(tx *bbolt.Tx) error {
		require.NotNil(t, tx.Bucket([]byte(DefaultTable)))
		return nil
	}))
}
