package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/announcer/internal/repo"
)

var _ repo.KV = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

func New() *Store {
	return &Store{
		scopes: make(map[string]map[string]string),
	}
}

func (m *Store) Get(ctx context.Context, scope, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.scopes[scope][key]
	return v, ok, nil
}

func (m *Store) Set(ctx context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv := m.scopes[scope]
	if kv == nil {
		kv = make(map[string]string)
		m.scopes[scope] = kv
	}
	kv[key] = value
	return nil
}

func (m *Store) Delete(ctx context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv := m.scopes[scope]
	if kv == nil {
		return nil
	}
	delete(kv, key)
	if len(kv) == 0 {
		delete(m.scopes, scope)
	}
	return nil
}
