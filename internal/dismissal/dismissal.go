// Package dismissal tracks which announcements a visitor has closed.
//
// The set lives under a single key as a JSON array of IDs. Persistence is best
// effort: when the backing store fails, reads report nothing dismissed and
// writes are dropped after a warning. Callers never see an error.
package dismissal

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/engine"
	"github.com/hamed0406/announcer/internal/repo"
)

// Key is the store name the dismissed IDs are kept under.
const Key = "dismissedAnnouncements"

// scopeLocks serialises writers of the same scope within this process.
var scopeLocks [64]sync.Mutex

func lockFor(scope string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scope))
	return &scopeLocks[h.Sum32()%uint32(len(scopeLocks))]
}

// Store is one visitor's dismissal set.
type Store struct {
	kv    repo.KV
	scope string
	log   *zap.Logger
}

func New(kv repo.KV, scope string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, scope: scope, log: log}
}

// List returns the dismissed IDs in dismissal order.
func (s *Store) List(ctx context.Context) []string {
	if s.kv == nil {
		return nil
	}
	raw, ok, err := s.kv.Get(ctx, s.scope, Key)
	if err != nil {
		s.log.Warn("dismissal_read_failed", zap.String("scope", s.scope), zap.Error(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.log.Warn("dismissal_decode_failed", zap.String("scope", s.scope), zap.Error(err))
		return nil
	}
	return ids
}

// Set returns the dismissals in the form the engine filters on.
func (s *Store) Set(ctx context.Context) engine.Set {
	return engine.NewSet(s.List(ctx)...)
}

func (s *Store) IsDismissed(ctx context.Context, id string) bool {
	return slices.Contains(s.List(ctx), id)
}

// Dismiss records id. Dismissing an ID twice leaves a single entry.
func (s *Store) Dismiss(ctx context.Context, id string) {
	if s.kv == nil {
		return
	}
	mu := lockFor(s.scope)
	mu.Lock()
	defer mu.Unlock()

	ids := s.List(ctx)
	if slices.Contains(ids, id) {
		return
	}
	ids = append(ids, id)
	b, err := json.Marshal(ids)
	if err != nil {
		s.log.Warn("dismissal_encode_failed", zap.String("scope", s.scope), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.scope, Key, string(b)); err != nil {
		s.log.Warn("dismissal_write_failed",
			zap.String("scope", s.scope),
			zap.String("announcement_id", id),
			zap.Error(err),
		)
	}
}

// Clear forgets every dismissal in scope.
func (s *Store) Clear(ctx context.Context) {
	if s.kv == nil {
		return
	}
	mu := lockFor(s.scope)
	mu.Lock()
	defer mu.Unlock()

	if err := s.kv.Delete(ctx, s.scope, Key); err != nil {
		s.log.Warn("dismissal_clear_failed", zap.String("scope", s.scope), zap.Error(err))
		return
	}
	s.log.Info("dismissals_cleared", zap.String("scope", s.scope))
}
