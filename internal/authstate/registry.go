// internal/authstate/registry.go
package authstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	machine  *Machine
	lastUsed time.Time
}

// Registry keeps one Machine per browser session.
type Registry struct {
	checker Checker
	source  EventSource
	logger  *zap.Logger
	idleTTL time.Duration

	mu       sync.Mutex
	machines map[string]*entry
}

func NewRegistry(checker Checker, source EventSource, logger *zap.Logger, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{
		checker:  checker,
		source:   source,
		logger:   logger,
		idleTTL:  idleTTL,
		machines: make(map[string]*entry),
	}
}

// Get returns the machine for sessionID, starting one if needed.
func (r *Registry) Get(sessionID string) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.machines[sessionID]; ok {
		e.lastUsed = time.Now()
		return e.machine
	}

	m := NewMachine(r.checker, r.logger.With(zap.String("session_id", sessionID)))
	if err := m.Listen(context.Background(), r.source, sessionID); err != nil {
		r.logger.Error("failed to watch auth state",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		// no event feed means no known identity
		m.Apply(nil)
	}

	r.machines[sessionID] = &entry{machine: m, lastUsed: time.Now()}
	return m
}

// Reset clears the state of a tracked session. Unknown sessions are ignored.
func (r *Registry) Reset(sessionID string) {
	r.mu.Lock()
	e, ok := r.machines[sessionID]
	r.mu.Unlock()

	if ok {
		e.machine.Reset()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}

// Run evicts idle machines until ctx is done, then closes the rest.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.evictIdle(time.Now())
		}
	}
}

func (r *Registry) evictIdle(now time.Time) int {
	var idle []*Machine

	r.mu.Lock()
	for sid, e := range r.machines {
		if now.Sub(e.lastUsed) > r.idleTTL {
			idle = append(idle, e.machine)
			delete(r.machines, sid)
		}
	}
	r.mu.Unlock()

	for _, m := range idle {
		m.Close()
	}
	if len(idle) > 0 {
		r.logger.Debug("evicted idle auth state machines",
			zap.Int("count", len(idle)),
			zap.Int("active", r.Len()),
		)
	}
	return len(idle)
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	machines := r.machines
	r.machines = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range machines {
		e.machine.Close()
	}
}
