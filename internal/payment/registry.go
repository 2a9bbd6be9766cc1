package payment

import (
	"context"
	"errors"
	"sync"

	"sol-volume-bot/internal/logger"
)

type watch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry keys live watches by requester. Exactly one pending payment per
// requester is meaningful: starting a new watch supersedes any running one
// for the same requester.
type Registry struct {
	mu      sync.Mutex
	watches map[string]*watch
}

func NewRegistry() *Registry {
	return &Registry{watches: make(map[string]*watch)}
}

// Start launches the watcher in the background under its requester key,
// first cancelling and awaiting any watch already running for it.
func (r *Registry) Start(ctx context.Context, w *Watcher) {
	r.mu.Lock()
	prev := r.watches[w.RequesterID]
	delete(r.watches, w.RequesterID)
	r.mu.Unlock()

	if prev != nil {
		logger.Info(ctx, "Superseding pending payment watch", "requester", w.RequesterID)
		prev.cancel()
		<-prev.done
	}

	wctx, cancel := context.WithCancel(ctx)
	h := &watch{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.watches[w.RequesterID] = h
	r.mu.Unlock()

	go func() {
		defer close(h.done)
		defer cancel()
		if err := w.Run(wctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn(wctx, "Payment watch ended without match",
				"requester", w.RequesterID, "error", err)
		}

		r.mu.Lock()
		if r.watches[w.RequesterID] == h {
			delete(r.watches, w.RequesterID)
		}
		r.mu.Unlock()
	}()
}

// Stop cancels the requester's watch and waits for it to exit. Returns
// false if none was running.
func (r *Registry) Stop(requesterID string) bool {
	r.mu.Lock()
	h := r.watches[requesterID]
	delete(r.watches, requesterID)
	r.mu.Unlock()

	if h == nil {
		return false
	}
	h.cancel()
	<-h.done
	return true
}

// StopAll cancels every live watch and waits for them to exit.
func (r *Registry) StopAll() {
	r.mu.Lock()
	handles := make([]*watch, 0, len(r.watches))
	for id, h := range r.watches {
		handles = append(handles, h)
		delete(r.watches, id)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	for _, h := range handles {
		<-h.done
	}
}
