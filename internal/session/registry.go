package session

import (
	"context"
	"sort"
	"sync"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
)

type handle struct {
	engine *Engine
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry owns every live session. At most one session runs per key:
// starting a new one first cancels and awaits any session already running
// under that key, so two loops can never trade concurrently for one project.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*handle
	price    interfaces.PriceSource
}

// NewRegistry builds a registry. price may be nil; summaries then omit the
// USD conversion.
func NewRegistry(price interfaces.PriceSource) *Registry {
	return &Registry{
		sessions: make(map[string]*handle),
		price:    price,
	}
}

// Start launches the engine under its ID, superseding any running session
// with the same ID. Blocks until the superseded session (if any) has fully
// terminated, then returns with the new session running in the background.
func (r *Registry) Start(ctx context.Context, e *Engine) {
	r.mu.Lock()
	prev := r.sessions[e.ID]
	delete(r.sessions, e.ID)
	r.mu.Unlock()

	if prev != nil {
		logger.Info(ctx, "Superseding running session", "session", e.ID)
		prev.cancel()
		<-prev.done
	}

	if e.Price == nil {
		e.Price = r.price
	}

	sctx, cancel := context.WithCancel(ctx)
	h := &handle{engine: e, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.sessions[e.ID] = h
	r.mu.Unlock()

	go func() {
		defer close(h.done)
		defer cancel()
		e.Run(sctx)

		r.mu.Lock()
		if r.sessions[e.ID] == h {
			delete(r.sessions, e.ID)
		}
		r.mu.Unlock()
	}()
}

// Stop cancels the session under the key and waits for it to exit. Returns
// false if no session was running.
func (r *Registry) Stop(id string) bool {
	r.mu.Lock()
	h := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if h == nil {
		return false
	}
	h.cancel()
	<-h.done
	return true
}

// StopAll cancels every live session and waits for all of them to exit.
func (r *Registry) StopAll() {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.sessions))
	for id, h := range r.sessions {
		handles = append(handles, h)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	for _, h := range handles {
		<-h.done
	}
}

// Active lists the keys of live sessions, sorted.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary reports a live session's progress, converting volume to USD when
// a price source is configured. Returns false if the session is not running.
func (r *Registry) Summary(ctx context.Context, id string) (string, bool) {
	r.mu.Lock()
	h := r.sessions[id]
	r.mu.Unlock()
	if h == nil {
		return "", false
	}

	count, volume := h.engine.Snapshot()
	return formatProgress(ctx, r.price, count, volume), true
}
