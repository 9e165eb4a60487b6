package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"limslite-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRedis struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryRedis) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = string(encoded)
	return true, nil
}

func TestLockService(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	locker := NewLockService(store, zap.NewNop())
	ctx := context.Background()

	acquired, value, err := locker.TryLock(ctx, "lims:mllp:message:MSG-1", time.Second)
	require.NoError(t, err)
	require.True(t, acquired)
	assert.NotEmpty(t, value)

	again, _, err := locker.TryLock(ctx, "lims:mllp:message:MSG-1", time.Second)
	require.NoError(t, err)
	assert.False(t, again)

	err = locker.Unlock(ctx, "lims:mllp:message:MSG-1", "someone-else")
	assert.True(t, exceptions.IsKind(err, exceptions.KindIntegration))

	require.NoError(t, locker.Unlock(ctx, "lims:mllp:message:MSG-1", value))
	stored, _ := store.Get(ctx, "lims:mllp:message:MSG-1")
	assert.Empty(t, stored)

	assert.NoError(t, locker.Unlock(ctx, "lims:mllp:message:MSG-1", value))
}
