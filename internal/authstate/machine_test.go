package authstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"visrec-admin/internal/domain/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChecker struct {
	mu      sync.Mutex
	allowed map[string]bool
	gate    chan struct{}
	calls   []string
}

func (f *fakeChecker) IsAllowed(ctx context.Context, email string) bool {
	f.mu.Lock()
	f.calls = append(f.calls, email)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allowed[email]
}

type fakeSource struct {
	mu       sync.Mutex
	fns      map[string]func(*auth.Identity)
	initial  map[string]*auth.Identity
	stopped  map[string]bool
	watchErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		fns:     make(map[string]func(*auth.Identity)),
		initial: make(map[string]*auth.Identity),
		stopped: make(map[string]bool),
	}
}

func (f *fakeSource) Watch(ctx context.Context, sid string, fn func(*auth.Identity)) (func(), error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.mu.Lock()
	f.fns[sid] = fn
	initial := f.initial[sid]
	f.mu.Unlock()

	fn(initial)
	return func() {
		f.mu.Lock()
		f.stopped[sid] = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeSource) emit(sid string, id *auth.Identity) {
	f.mu.Lock()
	fn := f.fns[sid]
	f.mu.Unlock()
	fn(id)
}

var admin = &auth.Identity{ID: "1", Email: "admin@example.com"}

func TestMachineStartsLoading(t *testing.T) {
	m := NewMachine(&fakeChecker{}, zap.NewNop())
	defer m.Close()

	assert.Equal(t, Initial(), m.State())
	assert.True(t, m.State().Loading)
}

func TestMachineSignedOutEvent(t *testing.T) {
	m := NewMachine(&fakeChecker{}, zap.NewNop())
	defer m.Close()

	m.Apply(nil)
	require.Eventually(t, func() bool { return !m.State().Loading }, time.Second, 5*time.Millisecond)

	s := m.State()
	assert.Nil(t, s.User)
	assert.False(t, s.IsAllowed)
}

func TestMachineAllowedIdentity(t *testing.T) {
	checker := &fakeChecker{
		allowed: map[string]bool{"admin@example.com": true},
		gate:    make(chan struct{}),
	}
	m := NewMachine(checker, zap.NewNop())
	defer m.Close()

	m.Apply(admin)

	// while the allowlist check is pending the user is set but not allowed
	require.Eventually(t, func() bool { return m.State().User != nil }, time.Second, 5*time.Millisecond)
	pending := m.State()
	assert.False(t, pending.IsAllowed)
	assert.True(t, pending.Loading)

	close(checker.gate)
	require.Eventually(t, func() bool { return !m.State().Loading }, time.Second, 5*time.Millisecond)

	s := m.State()
	assert.True(t, s.IsAllowed)
	assert.True(t, s.Authorized())
	assert.Equal(t, "admin@example.com", s.User.Email)
}

func TestMachineDeniedIdentity(t *testing.T) {
	m := NewMachine(&fakeChecker{}, zap.NewNop())
	defer m.Close()

	m.Apply(&auth.Identity{ID: "2", Email: "intruder@example.com"})
	require.Eventually(t, func() bool { return !m.State().Loading }, time.Second, 5*time.Millisecond)

	s := m.State()
	assert.NotNil(t, s.User)
	assert.False(t, s.IsAllowed)
}

func TestMachineIdentityWithoutEmailSkipsCheck(t *testing.T) {
	checker := &fakeChecker{}
	m := NewMachine(checker, zap.NewNop())
	defer m.Close()

	m.Apply(&auth.Identity{ID: "3"})
	require.Eventually(t, func() bool { return !m.State().Loading }, time.Second, 5*time.Millisecond)

	assert.False(t, m.State().IsAllowed)
	assert.Empty(t, checker.calls)
}

func TestMachineReset(t *testing.T) {
	checker := &fakeChecker{allowed: map[string]bool{"admin@example.com": true}}
	m := NewMachine(checker, zap.NewNop())
	defer m.Close()

	m.Apply(admin)
	require.Eventually(t, func() bool { return m.State().Authorized() }, time.Second, 5*time.Millisecond)

	m.Reset()
	require.Eventually(t, func() bool { return m.State().User == nil }, time.Second, 5*time.Millisecond)
	assert.False(t, m.State().IsAllowed)
	assert.False(t, m.State().Loading)
}

func TestMachineSubscribeSeesLatest(t *testing.T) {
	checker := &fakeChecker{allowed: map[string]bool{"admin@example.com": true}}
	m := NewMachine(checker, zap.NewNop())
	defer m.Close()

	ch, unsubscribe := m.Subscribe()
	first := <-ch
	assert.True(t, first.Loading)

	m.Apply(admin)

	deadline := time.After(time.Second)
	for {
		select {
		case s := <-ch:
			if s.Authorized() {
				unsubscribe()
				_, open := <-ch
				assert.False(t, open)
				return
			}
		case <-deadline:
			t.Fatal("never saw authorized state")
		}
	}
}

func TestMachineWaitSettled(t *testing.T) {
	m := NewMachine(&fakeChecker{}, zap.NewNop())
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.True(t, m.WaitSettled(ctx).Loading)

	m.Apply(nil)
	s := m.WaitSettled(context.Background())
	assert.False(t, s.Loading)
}

func TestMachineListen(t *testing.T) {
	src := newFakeSource()
	src.initial["s1"] = admin
	checker := &fakeChecker{allowed: map[string]bool{"admin@example.com": true}}

	m := NewMachine(checker, zap.NewNop())
	require.NoError(t, m.Listen(context.Background(), src, "s1"))
	require.Eventually(t, func() bool { return m.State().Authorized() }, time.Second, 5*time.Millisecond)

	src.emit("s1", nil)
	require.Eventually(t, func() bool { return m.State().User == nil }, time.Second, 5*time.Millisecond)

	m.Close()
	src.mu.Lock()
	defer src.mu.Unlock()
	assert.True(t, src.stopped["s1"])
}
