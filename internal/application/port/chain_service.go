package port

import (
	"context"

	"chain-registry/internal/domain/entity"
)

// ChainFilter narrows ListChains. Zero values match everything.
type ChainFilter struct {
	ChainType entity.ChainType
	Mainnet   *bool
	FeeMarket *bool
}

// Matches reports whether the chain passes every set criterion.
func (f ChainFilter) Matches(c entity.Chain) bool {
	if f.ChainType != "" && c.ChainType != f.ChainType {
		return false
	}
	if f.Mainnet != nil && c.IsMainnet() != *f.Mainnet {
		return false
	}
	if f.FeeMarket != nil && c.SupportsFeeMarket() != *f.FeeMarket {
		return false
	}
	return true
}

// ChainService defines the interface for querying the chain catalog and checking chain RPCs.
type ChainService interface {
	// GetChain finds a chain by id and family tag.
	GetChain(ctx context.Context, chainID int64, tag string) (entity.Chain, error)

	// GetEVMChain finds a chain by id within the EVM partition.
	GetEVMChain(ctx context.Context, chainID int64) (entity.Chain, error)

	// GetSolanaChain finds a chain by id within the Solana partition.
	GetSolanaChain(ctx context.Context, chainID int64) (entity.Chain, error)

	// ListChains returns the catalog in insertion order, filtered.
	ListChains(ctx context.Context, filter ChainFilter) ([]entity.Chain, error)

	// CheckChainRPC returns the cached probe result of a chain's RPC, probing on a miss.
	CheckChainRPC(ctx context.Context, chainID int64, tag string) (entity.RPCDetail, error)
}
