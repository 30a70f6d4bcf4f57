// Package session tracks logged-out session ids until their tokens expire.
package session

import (
	"context"
	"sync"
	"time"
)

// Revoker records sessions that were ended by logout. A revoked session id
// only needs to be remembered until the token carrying it would expire anyway.
type Revoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// MemoryRevoker keeps revoked ids in process memory. Suitable for a single
// instance; use RedisRevoker when several instances share sessions.
type MemoryRevoker struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // session id -> expiry
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	r := &MemoryRevoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}

	go r.cleanupLoop()

	return r
}

func (r *MemoryRevoker) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[sessionID] = r.now().Add(ttl)
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expiry, ok := r.revoked[sessionID]
	if !ok {
		return false, nil
	}
	return r.now().Before(expiry), nil
}

// cleanupLoop periodically drops expired entries
func (r *MemoryRevoker) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanup()
	}
}

func (r *MemoryRevoker) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, expiry := range r.revoked {
		if !now.Before(expiry) {
			delete(r.revoked, id)
		}
	}
}
