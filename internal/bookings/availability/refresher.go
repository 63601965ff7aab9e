package availability

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval matches how often clients expect a fresh snapshot.
const DefaultPollInterval = 30 * time.Second

type RefreshFunc func(ctx context.Context) error

// Refresher runs a refresh on a fixed interval until stopped. While
// suspended, ticks are dropped so an in-progress selection is not
// overwritten by a newer snapshot.
type Refresher struct {
	interval time.Duration
	refresh  RefreshFunc
	onError  func(error)

	mu        sync.Mutex
	suspended bool
	started   bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewRefresher(interval time.Duration, refresh RefreshFunc, onError func(error)) *Refresher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Refresher{
		interval: interval,
		refresh:  refresh,
		onError:  onError,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine. Calling it twice is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.loop(ctx)
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			if r.Suspended() {
				continue
			}
			if err := r.refresh(ctx); err != nil {
				r.onError(err)
			}
		}
	}
}

func (r *Refresher) Suspend() {
	r.mu.Lock()
	r.suspended = true
	r.mu.Unlock()
}

func (r *Refresher) Resume() {
	r.mu.Lock()
	r.suspended = false
	r.mu.Unlock()
}

func (r *Refresher) Suspended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended
}

// Stop ends polling and waits for an in-flight refresh to return.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.done
	}
}
