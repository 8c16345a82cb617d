package chainlist

import (
	"strings"

	dto "chain-registry/internal/adapter/storage/chainlist/dto"
	"chain-registry/internal/domain/entity"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// mapNetwork derives the environment label. chainid.network only sometimes
// sets "network", so the entry name is used as a fallback.
func mapNetwork(raw dto.ChainRaw) string {
	if raw.Network != "" {
		return titleCaser.String(strings.ToLower(raw.Network))
	}
	lowerName := strings.ToLower(raw.Name)
	for _, word := range []string{"testnet", "devnet", "sepolia", "goerli", "holesky"} {
		if strings.Contains(lowerName, word) {
			return titleCaser.String(word)
		}
	}
	return entity.NetworkMainnet
}

// pickRPC returns the first plain http(s) endpoint; templated URLs that need an API key are skipped.
func pickRPC(rpcs []string) (entity.RPCURL, bool) {
	for _, raw := range rpcs {
		if strings.Contains(raw, "${") {
			continue
		}
		u, err := entity.NewRPCURL(raw)
		if err != nil {
			continue
		}
		if p := u.Protocol(); p == entity.ProtocolHTTP || p == entity.ProtocolHTTPS {
			return u, true
		}
	}
	return "", false
}

// toDomainChains converts chainid.network entries into EVM descriptors.
// Entries without a usable RPC, a family or a positive id are skipped, as are deprecated ones.
func toDomainChains(rawChains []dto.ChainRaw, logger *zap.Logger) []entity.Chain {
	if rawChains == nil {
		return nil
	}
	domainChains := make([]entity.Chain, 0, len(rawChains))
	for _, raw := range rawChains {
		if raw.ChainID <= 0 || strings.TrimSpace(raw.Chain) == "" || raw.Status == "deprecated" {
			continue
		}

		rpcURL, ok := pickRPC(raw.RPC)
		if !ok {
			if logger != nil {
				logger.Debug("Skipping chain without usable RPC URL during mapping",
					zap.Int64("chainId", raw.ChainID), zap.String("name", raw.Name),
				)
			}
			continue
		}

		var features []entity.Feature
		for _, f := range raw.Features {
			if f.Name == entity.FeatureEIP1559 {
				features = []entity.Feature{{Name: entity.FeatureEIP1559}}
				break
			}
		}

		var explorer string
		if len(raw.Explorers) > 0 {
			explorer = raw.Explorers[0].URL
		}

		network := mapNetwork(raw)
		var faucet string
		if network != entity.NetworkMainnet && len(raw.Faucets) > 0 {
			faucet = raw.Faucets[0]
		}

		domainChains = append(domainChains, entity.Chain{
			ID:        raw.ChainID,
			Tag:       strings.ToLower(strings.ReplaceAll(raw.Chain, " ", "")),
			Name:      raw.Chain,
			ChainType: entity.ChainTypeEVM,
			Icon:      raw.Icon,
			FullName:  raw.Name,
			Network:   network,
			Website:   raw.InfoURL,
			RPCURL:    rpcURL,
			NativeCurrency: entity.Currency{
				Name:     raw.Currency.Name,
				Symbol:   raw.Currency.Symbol,
				Decimals: raw.Currency.Decimals,
			},
			BlockExplorerURL: explorer,
			Features:         features,
			FaucetURL:        faucet,
		})
	}
	return domainChains
}
