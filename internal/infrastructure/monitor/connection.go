package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

// Pinger is a store handle that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings the task store on a cron schedule and caches the last result.
// It never reads or writes task records.
type Monitor struct {
	store    Pinger
	driver   string
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(store Pinger, driver string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:    store,
		driver:   driver,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
		status:   Status{Driver: driver},
	}
}

// Start runs one check immediately and schedules the rest.
func (m *Monitor) Start() error {
	m.Refresh()
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Refresh); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running check to finish or ctx to end.
func (m *Monitor) Stop(ctx context.Context) {
	done := m.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh pings the store once and records the outcome.
func (m *Monitor) Refresh() {
	status := Status{Driver: m.driver, LastCheck: time.Now().UTC()}

	if m.store == nil {
		status.Error = "store not configured"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err := m.store.Ping(ctx)
		cancel()
		if err != nil {
			status.Error = err.Error()
		} else {
			status.Store = true
		}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Store != status.Store || previous.LastCheck.IsZero() {
		m.logger.Info("task store status changed",
			zap.String("driver", m.driver),
			zap.Bool("online", status.Store),
			zap.String("error", status.Error),
		)
	}
}
