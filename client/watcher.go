package client

import (
	"context"
	"sync"
	"time"

	"hotel-pms/models"

	log "github.com/sirupsen/logrus"
)

const DefaultPollInterval = 2000 * time.Millisecond

// SelectionWatcher polls the guest selection and reports each new one once.
type SelectionWatcher struct {
	client   *Client
	interval time.Duration
	onSelect func(models.GuestSelection)

	mu       sync.Mutex
	lastSeen int64
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewSelectionWatcher(c *Client, onSelect func(models.GuestSelection)) *SelectionWatcher {
	return &SelectionWatcher{client: c, interval: DefaultPollInterval, onSelect: onSelect}
}

// SetInterval must be called before Start.
func (w *SelectionWatcher) SetInterval(d time.Duration) {
	if d > 0 {
		w.interval = d
	}
}

// Start begins polling until ctx is cancelled or Stop is called. Calling
// Start on a running watcher is a no-op.
func (w *SelectionWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

// Stop halts polling and waits for the loop to exit. The last seen
// timestamp survives a restart.
func (w *SelectionWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *SelectionWatcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		// ctx cancelled by the caller: mark this run stopped so Start works again.
		w.mu.Lock()
		if w.done == done {
			w.cancel()
			w.cancel, w.done = nil, nil
		}
		w.mu.Unlock()
	}()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *SelectionWatcher) poll(ctx context.Context) {
	resp, err := w.client.GuestSelections(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("guest selection poll failed")
		}
		return
	}
	if resp.Selection == nil {
		return
	}
	ts := resp.Selection.Timestamp
	if ts == 0 {
		ts = resp.Timestamp
	}

	w.mu.Lock()
	if ts == w.lastSeen {
		w.mu.Unlock()
		return
	}
	w.lastSeen = ts
	w.mu.Unlock()

	if w.onSelect != nil {
		w.onSelect(*resp.Selection)
	}
}
