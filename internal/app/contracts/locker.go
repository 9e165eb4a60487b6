package contracts

import (
	"context"
	"time"
)

// LockerService guards one message control id at a time across
// connections and processes. TryLock reports false when another holder owns
// key; the returned value must be passed back to Unlock.
type LockerService interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
}

// RedisRepository is the key/value surface the locker needs. Values are
// stored JSON encoded; Get returns "" for a missing key.
type RedisRepository interface {
	Get(ctx context.Context, key string) (string, error)
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
