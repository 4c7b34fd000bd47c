package push

import (
	"context"
	"sort"
	"sync"
)

// TokenStore is the device token registry. Register is an upsert keyed by
// token.
type TokenStore interface {
	Register(ctx context.Context, token DeviceToken) error
	List(ctx context.Context) ([]DeviceToken, error)
	Remove(ctx context.Context, token string) error
}

// MemoryTokenStore backs tests and FCM-less local development.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]DeviceToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]DeviceToken)}
}

func (s *MemoryTokenStore) Register(_ context.Context, token DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

func (s *MemoryTokenStore) List(_ context.Context) ([]DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DeviceToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (s *MemoryTokenStore) Remove(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
