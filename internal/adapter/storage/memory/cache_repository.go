package memory

import (
	"context"
	"fmt"
	"time"

	"chain-registry/internal/config"
	"chain-registry/internal/domain/entity"
	domainRepo "chain-registry/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.CacheRepository = (*CacheRepository)(nil)

const rpcDetailKeyPrefix = "rpc_detail_"

// CacheRepository implements domainRepo.CacheRepository using the go-cache in-memory library.
type CacheRepository struct {
	cache      *cache.Cache
	logger     *zap.Logger
	defaultTTL time.Duration
}

// NewCacheRepository creates a new in-memory cache repository instance.
func NewCacheRepository(cfg config.Config, logger *zap.Logger) *CacheRepository {
	defaultExpiration := cfg.Cache.GetDefaultExpiration()
	cleanupInterval := cfg.Cache.GetCleanupInterval()

	defaultTTL := cfg.Checker.GetCacheTTL()
	if defaultTTL <= 0 {
		defaultTTL = defaultExpiration
	}

	logger.Info("Initialized go-cache for memory storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	return &CacheRepository{
		cache:      cache.New(defaultExpiration, cleanupInterval),
		logger:     logger.Named("MemoryCacheStorage"),
		defaultTTL: defaultTTL,
	}
}

// GetRPCDetail retrieves a cached check result, returning found status.
func (r *CacheRepository) GetRPCDetail(_ context.Context, chainKey string) (entity.RPCDetail, bool, error) {
	key := rpcDetailKeyPrefix + chainKey
	if x, found := r.cache.Get(key); found {
		if detail, ok := x.(entity.RPCDetail); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", key))
			return detail, true, nil
		}
		r.logger.Warn("Memory cache data type mismatch for key",
			zap.String("key", key), zap.String("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", key))
	return entity.RPCDetail{}, false, nil
}

// SetRPCDetail caches a check result. A non-positive ttl uses the configured default.
func (r *CacheRepository) SetRPCDetail(_ context.Context, chainKey string, detail entity.RPCDetail, ttl time.Duration) error {
	key := rpcDetailKeyPrefix + chainKey
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	r.cache.Set(key, detail, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
