// Package catalog loads the announcement catalog once per page load.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/domain"
)

// DefaultPath is the relative resource path the site publishes its catalog at.
const DefaultPath = "announcements-data.json"

var ErrNotArray = errors.New("catalog: payload is not a JSON array")

// Source yields the full catalog, in authored order.
type Source interface {
	Load(ctx context.Context) ([]domain.Announcement, error)
}

// FileSource reads the catalog from a file on disk.
type FileSource struct {
	Path string
	Log  *zap.Logger
}

func NewFileSource(path string, log *zap.Logger) *FileSource {
	if path == "" {
		path = DefaultPath
	}
	return &FileSource{Path: path, Log: log}
}

func (f *FileSource) Load(ctx context.Context) ([]domain.Announcement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(b, f.Log)
}

// Decode parses a JSON array of records. Elements that fail to decode or
// validate are skipped so one bad record cannot hide the rest.
func Decode(b []byte, log *zap.Logger) ([]domain.Announcement, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotArray
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]domain.Announcement, 0, len(raw))
	for i, r := range raw {
		var a domain.Announcement
		if err := json.Unmarshal(r, &a); err != nil {
			log.Warn("catalog_record_skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := a.Validate(); err != nil {
			log.Warn("catalog_record_skipped", zap.Int("index", i), zap.String("id", a.ID), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// LoadOrEmpty fetches the catalog, logging and swallowing any failure.
// ok is false when the fetch failed and the empty catalog is a fallback.
func LoadOrEmpty(ctx context.Context, src Source, log *zap.Logger) (catalog []domain.Announcement, ok bool) {
	if log == nil {
		log = zap.NewNop()
	}
	if src == nil {
		log.Warn("catalog_source_missing")
		return nil, false
	}
	as, err := src.Load(ctx)
	if err != nil {
		log.Error("catalog_load_failed", zap.Error(err))
		return nil, false
	}
	return as, true
}
