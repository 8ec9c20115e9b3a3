package store

import (
	"context"
	"encoding/json"
	"time"

	"lernplan_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKey = "lernplan:snapshot"

type cacheEnvelope struct {
	Version string          `json:"version"`
	Content json.RawMessage `json:"content"`
}

// CachedStore legt gelesene Snapshots read-through in Redis ab. Schreibfehler
// des Caches sind nie fatal; der innere Speicher bleibt die Wahrheit.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (s *CachedStore) Name() string { return s.inner.Name() }

func (s *CachedStore) Fetch(ctx context.Context) ([]byte, string, error) {
	raw, err := s.rdb.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var env cacheEnvelope
		if err := json.Unmarshal(raw, &env); err == nil {
			return env.Content, env.Version, nil
		}
		// Defekter Cache-Eintrag: verwerfen und durchreichen
		s.rdb.Del(ctx, cacheKey)
	}

	content, version, err := s.inner.Fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	s.put(ctx, version, content)
	return content, version, nil
}

func (s *CachedStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	version, err := s.inner.CompareAndSwap(ctx, expected, content)
	if err != nil {
		// Nach einem Konflikt ist der Cache-Stand verdächtig
		s.rdb.Del(ctx, cacheKey)
		return "", err
	}
	s.put(ctx, version, content)
	return version, nil
}

func (s *CachedStore) put(ctx context.Context, version string, content []byte) {
	raw, err := json.Marshal(cacheEnvelope{Version: version, Content: json.RawMessage(content)})
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		logger.Log.Warn("snapshot cache write failed", zap.Error(err))
	}
}
