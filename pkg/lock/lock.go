package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker grants short-lived exclusive access to a key. Lock returns a token that
// identifies the holder; Unlock releases the key only while that token still owns it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

func newToken() string {
	return uuid.NewString()
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements Locker with SETNX so that every API replica shares the same locks.
type RedisLock struct {
	client *redis.Client
}

// NewRedisLock wraps an existing client.
func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

// Lock reports whether the key was acquired and the holder token.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "lock.RedisLock.Lock"

	token := newToken()
	ok, err := r.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock deletes the key if it still holds token. A lock that expired and was
// taken by another holder is left alone.
func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	if err := unlockScript.Run(ctx, r.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryLock is a process-local Locker used when Redis is disabled.
type MemoryLock struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	clock func() time.Time
}

// NewMemoryLock returns an empty in-process locker.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]memoryEntry), clock: time.Now}
}

// Lock reports whether the key was acquired. Expired entries are reclaimed.
func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	k := lockKey(key)
	if entry, ok := m.held[k]; ok && now.Before(entry.expires) {
		return "", false, nil
	}
	token := newToken()
	m.held[k] = memoryEntry{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Unlock releases the key when token still owns it.
func (m *MemoryLock) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := lockKey(key)
	if entry, ok := m.held[k]; ok && entry.token == token {
		delete(m.held, k)
	}
	return nil
}
