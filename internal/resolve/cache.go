package resolve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
)

const snapshotKey = "service-desk:catalog:snapshot"

// Loader serves catalog snapshots for resolution, caching them in
// Redis so every inbound message does not hit Postgres. Cache failures
// fall through to the repository; repository failures surface to the
// caller, who treats resolution as advisory.
type Loader struct {
	repo   repository.CatalogRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewLoader builds a loader. cache may be nil, which disables caching.
func NewLoader(repo repository.CatalogRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Loader {
	return &Loader{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Entries returns the current catalog snapshot.
func (l *Loader) Entries(ctx context.Context) ([]domain.CatalogEntry, error) {
	if cached, ok := l.fromCache(ctx); ok {
		return cached, nil
	}

	entries, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	l.toCache(ctx, entries)
	return entries, nil
}

func (l *Loader) fromCache(ctx context.Context) ([]domain.CatalogEntry, bool) {
	if l.cache == nil {
		return nil, false
	}
	raw, err := l.cache.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			l.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []domain.CatalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.logger.Warn("catalog cache corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return entries, true
}

func (l *Loader) toCache(ctx context.Context, entries []domain.CatalogEntry) {
	if l.cache == nil || l.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := l.cache.Set(ctx, snapshotKey, raw, l.ttl).Err(); err != nil {
		l.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}
