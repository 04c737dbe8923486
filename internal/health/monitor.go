// Package health polls the detection service's liveness endpoint on a fixed
// cadence and exposes a single online/offline flag. The monitor is an
// explicit background task with start/stop semantics rather than a timer tied
// to a UI element.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultInterval = 2 * time.Second

// Checker is the probe the monitor runs each tick. It must never fail loudly:
// any error condition collapses to false.
type Checker interface {
	CheckHealth(ctx context.Context) bool
}

// Monitor runs independent health probes on an interval. Each tick is a fresh
// probe; there is no backoff and no retained state beyond the last outcome.
type Monitor struct {
	checker  Checker
	interval time.Duration
	onChange func(bool)

	online  atomic.Bool
	started atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewMonitor creates a monitor. onChange, when non-nil, is invoked from the
// polling goroutine whenever the online flag flips.
func NewMonitor(checker Checker, interval time.Duration, onChange func(bool)) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		checker:  checker,
		interval: interval,
		onChange: onChange,
	}
}

// Start launches the polling loop with an immediate first probe. Starting an
// already-started monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	online := m.checker.CheckHealth(ctx)
	previous := m.online.Swap(online)
	if previous != online && m.onChange != nil {
		m.onChange(online)
	}
}

// Stop halts polling and waits for the loop to exit. Safe to call more than
// once.
func (m *Monitor) Stop() {
	if !m.started.CompareAndSwap(true, false) {
		return
	}
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()
	cancel()
	<-done
}

// Online reports the outcome of the most recent probe.
func (m *Monitor) Online() bool {
	return m.online.Load()
}
