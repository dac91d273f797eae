package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
	"github.com/aretw0/logicflow/pkg/session"
)

// slowStore simulates IO latency to provoke lost updates if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Save(ctx context.Context, id string, conv *domain.Conversation) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, id, conv)
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func TestManager_UpdateSerializes(t *testing.T) {
	store := slowStore{memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(_ context.Context, c *domain.Conversation) error {
				c.Turns = append(c.Turns, domain.Turn{Role: domain.RoleUser, Content: fmt.Sprint(n)})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	conv, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, conv.Turns, writers, "no turn may be lost")
}

func TestManager_UpdateError(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	boom := errors.New("assistant failed")

	_, err := manager.Update(ctx, "s", func(_ context.Context, c *domain.Conversation) error {
		c.FlowText = "INPUT: A"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = manager.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "a failed turn is not persisted")
}

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, conv)
		}()
	}
	wg.Wait()

	conv, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, conv.ID)
	assert.Empty(t, conv.Turns)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

type recordingLocker struct {
	mu     sync.Mutex
	keys   []string
	ttls   []time.Duration
	frees  int
	failOn string
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == l.failOn {
		return nil, errors.New("contended")
	}
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.frees++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{failOn: "session:busy"}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "a", domain.NewConversation("a")))
	assert.Equal(t, []string{"session:a"}, locker.keys)
	assert.Equal(t, []time.Duration{time.Minute}, locker.ttls)
	assert.Equal(t, 1, locker.frees)

	err := manager.Save(ctx, "busy", domain.NewConversation("busy"))
	assert.ErrorContains(t, err, "distributed lock")
}
