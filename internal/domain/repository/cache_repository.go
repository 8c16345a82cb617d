package repository

import (
	"context"
	"time"

	"chain-registry/internal/domain/entity"
)

// CacheRepository defines the interface for caching RPC check results.
type CacheRepository interface {
	// GetRPCDetail retrieves the cached check result for a chain's composite key.
	GetRPCDetail(ctx context.Context, chainKey string) (entity.RPCDetail, bool, error)

	// SetRPCDetail stores the check result for a chain's composite key with a specified TTL.
	SetRPCDetail(ctx context.Context, chainKey string, detail entity.RPCDetail, ttl time.Duration) error
}
