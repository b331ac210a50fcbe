package bolt

import (
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// DefaultTable names the root bucket when none is configured.
const DefaultTable = "task_management"

// Open initializes the BoltDB file and ensures the table bucket exists.
func Open(path string, table string) (*bbolt.DB, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(table))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
