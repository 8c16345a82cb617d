package service

import (
	"context"
	"time"

	"chain-registry/internal/domain/entity"
)

// RPCChecker defines the interface for checking RPC endpoint status.
type RPCChecker interface {
	CheckRPC(ctx context.Context, rpcURL entity.RPCURL, chainType entity.ChainType) (bool, time.Duration, error)
}
