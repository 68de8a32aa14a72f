// internal/authstate/machine.go
package authstate

import (
	"context"
	"sync"
	"time"

	"visrec-admin/internal/domain/auth"

	"go.uber.org/zap"
)

type command struct {
	identity *auth.Identity
	reset    bool
}

// Machine owns the auth state of one session. All transitions run on a single
// goroutine; readers take snapshots or subscribe.
type Machine struct {
	checker Checker
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan command

	mu      sync.RWMutex
	state   State
	subs    map[int]chan State
	nextSub int
	settled chan struct{}
	unwatch func()
}

func NewMachine(checker Checker, logger *zap.Logger) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		checker: checker,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		cmds:    make(chan command, 16),
		state:   Initial(),
		subs:    make(map[int]chan State),
		settled: make(chan struct{}),
	}
	go m.run()
	return m
}

// Listen attaches the machine to an event source for sessionID.
func (m *Machine) Listen(ctx context.Context, source EventSource, sessionID string) error {
	unwatch, err := source.Watch(ctx, sessionID, m.Apply)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.unwatch != nil {
		m.unwatch()
	}
	m.unwatch = unwatch
	m.mu.Unlock()
	return nil
}

// Apply queues an external sign-in event. nil means signed out.
func (m *Machine) Apply(identity *auth.Identity) {
	m.send(command{identity: identity})
}

// Reset clears the user and the allowlist flag after a sign-out.
func (m *Machine) Reset() {
	m.send(command{reset: true})
}

func (m *Machine) send(cmd command) {
	select {
	case m.cmds <- cmd:
	case <-m.ctx.Done():
	}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// WaitSettled blocks until the first event has been handled or ctx is done,
// then returns the current state.
func (m *Machine) WaitSettled(ctx context.Context) State {
	select {
	case <-m.settled:
	case <-ctx.Done():
	case <-m.ctx.Done():
	}
	return m.State()
}

// Subscribe returns a channel carrying the current state and every later one.
// A slow reader only sees the latest state.
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	ch <- m.state
	if m.ctx.Err() != nil {
		close(ch)
		m.mu.Unlock()
		return ch, func() {}
	}
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			if _, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(ch)
			}
			m.mu.Unlock()
		})
	}
}

// Close stops the machine, its event subscription and all subscribers.
func (m *Machine) Close() {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Machine) run() {
	for {
		select {
		case <-m.ctx.Done():
			return
		case cmd := <-m.cmds:
			m.handle(cmd)
		}
	}
}

func (m *Machine) handle(cmd command) {
	if cmd.reset {
		m.set(State{})
		return
	}

	id := cmd.identity
	if !id.HasEmail() {
		m.set(State{User: id})
		return
	}

	// user is visible while the allowlist check runs, never allowed yet
	pending := m.State()
	pending.User = id
	pending.IsAllowed = false
	m.setPending(pending)

	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	allowed := m.checker.IsAllowed(ctx, id.Email)
	cancel()

	m.set(State{User: id, IsAllowed: allowed})
}

// set stores a settled state.
func (m *Machine) set(s State) {
	s.Loading = false
	m.mu.Lock()
	m.state = s
	select {
	case <-m.settled:
	default:
		close(m.settled)
	}
	m.broadcastLocked()
	m.mu.Unlock()
}

func (m *Machine) setPending(s State) {
	m.mu.Lock()
	m.state = s
	m.broadcastLocked()
	m.mu.Unlock()
}

func (m *Machine) broadcastLocked() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m.state
	}
}
