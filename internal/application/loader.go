package application

import (
	"context"
	"fmt"

	"chain-registry/internal/adapter/storage/catalog"
	"chain-registry/internal/adapter/storage/chainlist"
	"chain-registry/internal/config"
	"chain-registry/internal/domain/entity"
	domainRepo "chain-registry/internal/domain/repository"
	"chain-registry/internal/registry"

	"go.uber.org/zap"
)

// CatalogSources lists where the catalog comes from. Base is required;
// Override and Supplement are optional.
type CatalogSources struct {
	Base domainRepo.ChainRepository
	// Override is overlaid on Base when Extend is set, otherwise it replaces Base.
	Override   domainRepo.ChainRepository
	Extend     bool
	Supplement domainRepo.ChainRepository
}

// DefaultRegistry builds a registry from the embedded built-in table.
func DefaultRegistry() (*registry.Registry, error) {
	chains, err := catalog.Builtin()
	if err != nil {
		return nil, err
	}
	return registry.New(chains)
}

// LoadRegistry reads every configured source and composes them into a registry.
// A failing supplement source is logged and skipped; base and override failures abort.
func LoadRegistry(ctx context.Context, logger *zap.Logger, sources CatalogSources) (*registry.Registry, error) {
	logger = logger.Named("CatalogLoader")

	if sources.Base == nil {
		return nil, fmt.Errorf("catalog base source is required")
	}

	var chains []entity.Chain
	if sources.Override == nil || sources.Extend {
		base, err := sources.Base.GetAllChains(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load base catalog: %w", err)
		}
		chains = base
	}

	if sources.Override != nil {
		override, err := sources.Override.GetAllChains(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog override: %w", err)
		}
		if sources.Extend {
			var rejected []entity.Chain
			chains, rejected = registry.Overlay(chains, override)
			for _, c := range rejected {
				logger.Warn("Override entry conflicts with another chain of the same type, dropped",
					zap.String("key", c.Key()), zap.Int64("chainId", c.ID),
				)
			}
			logger.Info("Catalog override applied",
				zap.Int("overrideCount", len(override)), zap.Int("rejectedCount", len(rejected)),
			)
		} else {
			chains = override
			logger.Info("Catalog replaced by override", zap.Int("count", len(override)))
		}
	}

	if sources.Supplement != nil {
		extra, err := sources.Supplement.GetAllChains(ctx)
		if err != nil {
			logger.Warn("Supplement source failed, continuing without it", zap.Error(err))
		} else {
			valid := make([]entity.Chain, 0, len(extra))
			for _, c := range extra {
				if vErr := registry.Validate(c); vErr != nil {
					logger.Debug("Supplement entry invalid, skipped", zap.String("key", c.Key()), zap.Error(vErr))
					continue
				}
				valid = append(valid, c)
			}
			var skipped []entity.Chain
			chains, skipped = registry.Supplement(chains, valid)
			logger.Info("Catalog supplemented",
				zap.Int("addedCount", len(valid)-len(skipped)), zap.Int("skippedCount", len(skipped)),
			)
		}
	}

	reg, err := registry.New(chains)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	logger.Info("Registry loaded", zap.Int("count", reg.Len()))
	return reg, nil
}

// SourcesFromConfig builds the catalog sources selected by configuration.
func SourcesFromConfig(cfg config.Config, logger *zap.Logger) (CatalogSources, error) {
	sources := CatalogSources{
		Base:   catalog.NewBuiltinRepository(logger),
		Extend: cfg.Catalog.Extend,
	}
	if cfg.Catalog.Path != "" {
		fileRepo, err := catalog.NewFileRepository(cfg.Catalog.Path, logger)
		if err != nil {
			return CatalogSources{}, err
		}
		sources.Override = fileRepo
	}
	if cfg.Chainlist.Enabled {
		sources.Supplement = chainlist.NewRepository(cfg.Chainlist, logger)
	}
	return sources, nil
}
