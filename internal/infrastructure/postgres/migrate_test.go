package postgres

import (
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskstore/internal/config"
)

type fixedVersion struct {
	version uint
	dirty   bool
	err     error
}

func (f fixedVersion) Version() (uint, bool, error) {
	return f.version, f.dirty, f.err
}

func TestLogVersion(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	logVersion(fixedVersion{version: 1}, logger)
	logVersion(fixedVersion{err: migrate.ErrNilVersion}, logger)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, uint64(1), entries[0].ContextMap()["version"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "version")
	assert.Equal(t, migrate.ErrNilVersion.Error(), entries[1].ContextMap()["error"])
}

func TestRunMigrations_SkipsOtherDrivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Migrations.Enabled = true
	cfg.Store.Driver = config.DriverBolt

	assert.NoError(t, RunMigrations(cfg, nil))
	assert.NoError(t, RunMigrations(nil, nil))
}
