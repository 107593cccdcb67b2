package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Refresher updates stored seed hosts from discovery
type Refresher interface {
	RefreshSeedHosts(ctx context.Context) (int, error)
}

// Manager handles the periodic refresh of cluster seed hosts
type Manager struct {
	refresher Refresher
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	started   atomic.Bool
	stopOnce  sync.Once
	logger    *zap.Logger
}

// NewManager creates a new refresh manager
func NewManager(refresher Refresher, interval time.Duration, logger *zap.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		refresher: refresher,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		logger:    logger.Named("refresh-job"),
	}
}

// Start begins the refresh job in a goroutine. Calls after the first are no-ops.
func (m *Manager) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("Starting seed refresh job", zap.Duration("interval", m.interval))
	go m.run()
}

// Stop cancels the refresh job and waits for the current pass to finish.
// It is safe to call more than once, and without a prior Start.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping seed refresh job")
		m.cancel()
		if m.started.Load() {
			<-m.done
		}
	})
}

// RunOnce performs a single refresh pass
func (m *Manager) RunOnce(ctx context.Context) {
	count, err := m.refresher.RefreshSeedHosts(ctx)
	if err != nil {
		m.logger.Error("Error during seed refresh", zap.Error(err))
	}
	if count > 0 {
		m.logger.Info("Seed refresh completed", zap.Int("updatedCount", count))
	}
}

func (m *Manager) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("Seed refresh job shutting down")
			return
		case <-ticker.C:
			m.RunOnce(m.ctx)
		}
	}
}
