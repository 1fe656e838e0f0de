package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erp/marketsync/internal/domain/integration"
)

type heldLock struct {
	token     string
	expiresAt time.Time
}

// InMemoryRunLock implements integration.RunLock with a map of expiring
// entries. It only guards runs within one process.
type InMemoryRunLock struct {
	mu    sync.Mutex
	locks map[string]heldLock
	now   func() time.Time
}

// NewInMemoryRunLock creates a new in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		locks: make(map[string]heldLock),
		now:   time.Now,
	}
}

// TryAcquire takes the lock unless an unexpired holder exists
func (l *InMemoryRunLock) TryAcquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[key]; ok && now.Before(held.expiresAt) {
		return "", nil
	}
	token := uuid.NewString()
	l.locks[key] = heldLock{token: token, expiresAt: now.Add(ttl)}
	return token, nil
}

// Release drops the lock when token still owns it
func (l *InMemoryRunLock) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
	return nil
}

// Size returns the number of unexpired locks (for testing/monitoring)
func (l *InMemoryRunLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for _, held := range l.locks {
		if now.Before(held.expiresAt) {
			n++
		}
	}
	return n
}

// Ensure InMemoryRunLock implements integration.RunLock
var _ integration.RunLock = (*InMemoryRunLock)(nil)
