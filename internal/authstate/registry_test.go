package authstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryGetReusesMachine(t *testing.T) {
	src := newFakeSource()
	src.initial["s1"] = admin
	checker := &fakeChecker{allowed: map[string]bool{"admin@example.com": true}}

	r := NewRegistry(checker, src, zap.NewNop(), time.Minute)
	m1 := r.Get("s1")
	m2 := r.Get("s1")
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, r.Len())

	require.Eventually(t, func() bool { return m1.State().Authorized() }, time.Second, 5*time.Millisecond)

	r.Reset("s1")
	require.Eventually(t, func() bool { return m1.State().User == nil }, time.Second, 5*time.Millisecond)
}

func TestRegistryWatchFailureDenies(t *testing.T) {
	src := newFakeSource()
	src.watchErr = errors.New("redis down")

	r := NewRegistry(&fakeChecker{}, src, zap.NewNop(), time.Minute)
	m := r.Get("s1")

	s := m.WaitSettled(context.Background())
	assert.Nil(t, s.User)
	assert.False(t, s.IsAllowed)
}

func TestRegistryEvictsIdle(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(&fakeChecker{}, src, zap.NewNop(), time.Minute)

	r.Get("old")
	r.Get("new")
	r.mu.Lock()
	r.machines["old"].lastUsed = time.Now().Add(-2 * time.Minute)
	r.mu.Unlock()

	assert.Equal(t, 1, r.evictIdle(time.Now()))
	assert.Equal(t, 1, r.Len())

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.True(t, src.stopped["old"])
	assert.False(t, src.stopped["new"])
}

func TestRegistryRunClosesOnCancel(t *testing.T) {
	r := NewRegistry(&fakeChecker{}, newFakeSource(), zap.NewNop(), time.Minute)
	r.Get("s1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, r.Len())
}
