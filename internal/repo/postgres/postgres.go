package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/repo"
)

var _ repo.KV = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		log.Error("postgres_schema_failed", zap.Error(err))
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("postgres_schema_applied")
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Get(ctx context.Context, scope, key string) (string, bool, error) {
	var v string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv WHERE scope = $1 AND key = $2`,
		scope, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get kv: %w", err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, scope, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv (scope, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		scope, key, value,
	)
	if err != nil {
		s.log.Warn("postgres_set_failed", zap.String("scope", scope), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("set kv: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, scope, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE scope = $1 AND key = $2`, scope, key); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}
