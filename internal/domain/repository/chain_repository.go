package repository

import (
	"context"

	"chain-registry/internal/domain/entity"
)

// ChainRepository defines the interface for a source of chain descriptors.
type ChainRepository interface {
	// GetAllChains retrieves the list of all chains from the underlying data source.
	GetAllChains(ctx context.Context) ([]entity.Chain, error)
}
