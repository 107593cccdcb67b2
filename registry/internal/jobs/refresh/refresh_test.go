package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshSeedHosts(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestManager_RunsPeriodically(t *testing.T) {
	refresher := &countingRefresher{}
	manager := NewManager(refresher, 10*time.Millisecond, zap.NewNop())

	manager.Start()
	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	manager.Stop()

	// No more passes after Stop returns
	calls := refresher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, refresher.calls.Load())
}

func TestManager_RunOnceSurvivesErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("boom")}
	manager := NewManager(refresher, time.Hour, zap.NewNop())

	manager.RunOnce(context.Background())
	manager.RunOnce(context.Background())
	assert.Equal(t, int32(2), refresher.calls.Load())
}

func TestManager_StopWithoutStart(t *testing.T) {
	manager := NewManager(&countingRefresher{}, time.Hour, zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		manager.Stop()
		manager.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}

func TestManager_StartAndStopAreIdempotent(t *testing.T) {
	refresher := &countingRefresher{}
	manager := NewManager(refresher, 10*time.Millisecond, zap.NewNop())

	manager.Start()
	manager.Start()
	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	manager.Stop()
	manager.Stop()
}
