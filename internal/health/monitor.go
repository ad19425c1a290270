// internal/health/monitor.go
package health

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval matches the backend liveness poll cadence.
const DefaultInterval = 30 * time.Second

// Checker is the liveness probe. *api.Client satisfies it.
type Checker interface {
	Health(ctx context.Context) error
}

// Monitor polls the backend and owns the online flag. Nothing else writes it.
type Monitor struct {
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	onChange func(online bool)

	online  atomic.Bool
	checked atomic.Bool

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithTimeout bounds each individual check. Defaults to the interval.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger.Named("health")
		}
	}
}

// OnChange registers a callback fired after the first check and on every
// transition afterwards. It runs on the checking goroutine.
func OnChange(fn func(online bool)) Option {
	return func(m *Monitor) {
		m.onChange = fn
	}
}

// NewMonitor creates a monitor that probes checker every interval.
func NewMonitor(checker Checker, interval time.Duration, opts ...Option) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &Monitor{
		checker:  checker,
		interval: interval,
		timeout:  interval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online reports the result of the latest check. It is false until the first
// check completes.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Checked reports whether at least one check has completed.
func (m *Monitor) Checked() bool {
	return m.checked.Load()
}

// Start runs one check immediately and then schedules the rest. Calling Start
// on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := c.AddFunc(spec, func() { m.Check(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule health check %q: %w", spec, err)
	}

	m.Check(runCtx)

	c.Start()
	m.cron = c
	m.cancel = cancel
	m.running = true
	m.logger.Debug("Health monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts scheduling and waits for an in-flight check to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	m.cancel()
	m.running = false
	m.logger.Debug("Health monitor stopped")
}

// Check probes the backend once and updates the flag.
func (m *Monitor) Check(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.checker.Health(checkCtx)
	online := err == nil
	if err != nil {
		m.logger.Debug("Backend health check failed", zap.Error(err))
	}

	previous := m.online.Swap(online)
	first := !m.checked.Swap(true)
	if first || previous != online {
		if !first {
			m.logger.Info("Backend connectivity changed", zap.Bool("online", online))
		}
		if m.onChange != nil {
			m.onChange(online)
		}
	}
	return online
}
