package session

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store with the same replace-on-save and
// TTL semantics as the redis implementation. It backs tests and local
// development without a redis instance.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[int64]memoryRecord
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		records: make(map[int64]memoryRecord),
	}
}

func (m *MemoryStore) Save(_ context.Context, userID int64, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = memoryRecord{
		token:     refreshToken,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Find(_ context.Context, userID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(rec.expiresAt) {
		delete(m.records, userID)
		return "", false, nil
	}
	return rec.token, true, nil
}

func (m *MemoryStore) Require(ctx context.Context, userID int64) (string, error) {
	val, ok, err := m.Find(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoSession
	}
	return val, nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	return nil
}
