package catalog

import (
	"fmt"
	"strings"

	dto "chain-registry/internal/adapter/storage/catalog/dto"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
)

// toDomainChain converts one raw catalog entry to a domain chain.
func toDomainChain(raw dto.ChainRaw) (entity.Chain, error) {
	var rpcURL entity.RPCURL
	if raw.RPCURL != "" {
		u, err := entity.NewRPCURL(raw.RPCURL)
		if err != nil {
			return entity.Chain{}, fmt.Errorf("%w: %s-%d: %v", domain.ErrInvalidChain, raw.Tag, raw.ID, err)
		}
		rpcURL = u
	}

	var features []entity.Feature
	if len(raw.Features) > 0 {
		features = make([]entity.Feature, len(raw.Features))
		for i, f := range raw.Features {
			features[i] = entity.Feature{Name: string(f)}
		}
	}

	fullName := raw.FullName
	if fullName == "" {
		fullName = strings.TrimSpace(raw.Name + " " + raw.Network)
	}

	return entity.Chain{
		ID:        raw.ID,
		Tag:       strings.ToLower(raw.Tag),
		Name:      raw.Name,
		ChainType: entity.ChainType(strings.ToLower(raw.ChainType)),
		Icon:      raw.Icon,
		FullName:  fullName,
		Network:   raw.Network,
		Website:   raw.Website,
		RPCURL:    rpcURL,
		NativeCurrency: entity.Currency{
			Name:     raw.NativeCurrency.Name,
			Symbol:   raw.NativeCurrency.Symbol,
			Decimals: raw.NativeCurrency.Decimals,
		},
		BlockExplorerURL: raw.BlockExplorerURL,
		Features:         features,
		FaucetURL:        raw.FaucetURL,
	}, nil
}

// toDomainChains converts all raw entries, failing on the first invalid one.
func toDomainChains(rawChains []dto.ChainRaw) ([]entity.Chain, error) {
	chains := make([]entity.Chain, 0, len(rawChains))
	for i, raw := range rawChains {
		c, err := toDomainChain(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		chains = append(chains, c)
	}
	return chains, nil
}
