// Package cache decorates a registry client with a Redis lookaside cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/registry/metrics"
)

// Redis key prefix for cached registry searches
const searchKeyPrefix = "registry:search:"

// Lookaside serves registry searches from Redis when a fresh entry exists and
// falls through to the wrapped client otherwise. Cache failures never fail a
// lookup: an unreachable Redis or a corrupt entry degrades to a live search.
type Lookaside struct {
	inner   identity.RegistryClient
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New wraps inner with a lookaside cache. The Redis client lifecycle is
// managed externally; callers that run without Redis should use inner directly.
func New(inner identity.RegistryClient, client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Lookaside {
	return &Lookaside{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func (l *Lookaside) Search(ctx context.Context, first, last string, hint identity.Hint) ([]identity.RegistryHit, error) {
	key := searchKey(first, last, hint)
	if hits, ok := l.fromCache(ctx, key); ok {
		return hits, nil
	}

	start := time.Now()
	hits, err := l.inner.Search(ctx, first, last, hint)
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveSearchLatency(time.Since(start))
	l.store(ctx, key, hits)
	return hits, nil
}

func (l *Lookaside) fromCache(ctx context.Context, key string) ([]identity.RegistryHit, bool) {
	payload, err := l.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.metrics.RecordCacheMiss()
		} else {
			l.metrics.RecordCacheBypass()
			l.logger.WarnContext(ctx, "registry cache unreachable, using live search", "error", err)
		}
		return nil, false
	}

	var hits []identity.RegistryHit
	if err := json.Unmarshal(payload, &hits); err != nil {
		l.metrics.RecordCacheBypass()
		l.logger.WarnContext(ctx, "registry cache entry corrupt, using live search", "key", key, "error", err)
		return nil, false
	}

	l.metrics.RecordCacheHit()
	return hits, true
}

func (l *Lookaside) store(ctx context.Context, key string, hits []identity.RegistryHit) {
	payload, err := json.Marshal(hits)
	if err != nil {
		l.logger.WarnContext(ctx, "encode registry cache entry", "key", key, "error", err)
		return
	}
	if err := l.client.Set(ctx, key, payload, l.ttl).Err(); err != nil {
		l.logger.WarnContext(ctx, "write registry cache entry", "key", key, "error", err)
	}
}

// searchKey is case-insensitive: the registry treats name and locale filters
// without regard to case, so lookups that differ only by case share an entry.
func searchKey(first, last string, hint identity.Hint) string {
	parts := []string{first, last, hint.State, hint.City}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return searchKeyPrefix + strings.Join(parts, ":")
}
