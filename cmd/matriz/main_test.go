package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASCCJR/matriz5x5"
	"github.com/ASCCJR/matriz5x5/internal/ws"
)

// slowDriver stretches every push so a frame is usually in flight when the
// loop is told to stop.
type slowDriver struct {
	mu     sync.Mutex
	pushes int
}

func (d *slowDriver) Push(word uint32) error {
	time.Sleep(time.Millisecond)
	d.mu.Lock()
	d.pushes++
	d.mu.Unlock()
	return nil
}

func (d *slowDriver) Latch() error { return nil }
func (d *slowDriver) Close() error { return nil }

func (d *slowDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pushes
}

// The shutdown sequence must not overlap the render loop: the loop owns the
// matrix and the driver until it acknowledges the stop, and only then may
// the final blank frame go out.
func TestRunLoopReleasesMatrixBeforeFinalFrame(t *testing.T) {
	drv := &slowDriver{}
	m := matriz.New(drv)
	state := ws.NewState(m.Layout(), 1000, "sim")

	done := make(chan struct{})
	stopped := make(chan struct{})
	go runLoop(m, state, "rainbow", 1000, done, stopped)

	// Let the loop get mid-frame before stopping it.
	for drv.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(done)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("render loop did not acknowledge stop")
	}

	// No stragglers: the loop is done with the driver for good.
	n := drv.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, drv.count(), "loop pushed after signalling it had stopped")

	m.Clear()
	require.NoError(t, m.Render())
	assert.Equal(t, n+matriz.LedCount, drv.count(), "final blank frame is exactly one frame")
}
