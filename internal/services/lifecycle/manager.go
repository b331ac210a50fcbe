package lifecycle

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultStopBudget = 15 * time.Second

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

type component struct {
	name string
	stop ShutdownFunc
}

// Manager stops the server's components newest first, so the HTTP server
// drains before the monitor and the task store it reads from.
type Manager struct {
	budget time.Duration
	logger *zap.Logger

	mu         sync.Mutex
	components []component
	stopped    bool
}

func New(budget time.Duration, logger *zap.Logger) *Manager {
	if budget <= 0 {
		budget = defaultStopBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{budget: budget, logger: logger}
}

// Register adds a component to stop. A nil stop func is ignored, and so is
// anything registered after shutdown began.
func (m *Manager) Register(name string, stop ShutdownFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		m.logger.Warn("component registered after shutdown", zap.String("component", name))
		return
	}
	m.components = append(m.components, component{name: name, stop: stop})
}

// RegisterCloser adds a store handle such as a bolt file or a redis client.
func (m *Manager) RegisterCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	m.Register(name, func(context.Context) error {
		return c.Close()
	})
}

// Shutdown stops every component once within the stop budget and joins their
// errors. Later calls return nil.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.budget)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil
	}
	m.stopped = true

	var result error
	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		started := time.Now()
		if err := c.stop(ctx); err != nil {
			m.logger.Error("component failed to stop", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name), zap.Duration("took", time.Since(started)))
	}
	return result
}

// Wait blocks until ctx ends, then shuts everything down. The stop budget
// starts when ctx ends, not when Wait is called.
func (m *Manager) Wait(ctx context.Context) error {
	<-ctx.Done()
	return m.Shutdown(context.Background())
}

// Listen invokes cancel on the first SIGTERM or SIGINT.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(signals)
		sig := <-signals
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
