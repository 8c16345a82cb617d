package http

import (
	"chain-registry/internal/domain/entity"
)

// CurrencyResponse is the JSON form of a native currency.
type CurrencyResponse struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainResponse is the JSON form of a chain descriptor with its derived classifications.
type ChainResponse struct {
	Key              string           `json:"key"`
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	ChainType        string           `json:"chainType"`
	Icon             string           `json:"icon,omitempty"`
	FullName         string           `json:"fullName"`
	Network          string           `json:"network"`
	Website          string           `json:"website,omitempty"`
	NativeCurrency   CurrencyResponse `json:"nativeCurrency"`
	RPCURL           string           `json:"rpcUrl,omitempty"`
	BlockExplorerURL string           `json:"blockExplorerUrl,omitempty"`
	Features         []string         `json:"features"`
	FaucetURL        string           `json:"faucetUrl,omitempty"`
	IsMainnet        bool             `json:"isMainnet"`
	EIP1559          bool             `json:"eip1559"`
	WalletLink       bool             `json:"walletLink"`
}

// RPCDetailResponse is the JSON form of a probe result.
type RPCDetailResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Protocol  string `json:"protocol"`
	IsWorking bool   `json:"isWorking"`
	LatencyMs *int64 `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toChainResponse(c entity.Chain) ChainResponse {
	features := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		features = append(features, f.Name)
	}
	return ChainResponse{
		Key:       c.Key(),
		ID:        c.ID,
		Name:      c.Name,
		ChainType: c.ChainType.String(),
		Icon:      c.Icon,
		FullName:  c.FullName,
		Network:   c.Network,
		Website:   c.Website,
		NativeCurrency: CurrencyResponse{
			Name:     c.NativeCurrency.Name,
			Symbol:   c.NativeCurrency.Symbol,
			Decimals: c.NativeCurrency.Decimals,
		},
		RPCURL:           c.RPCURL.String(),
		BlockExplorerURL: c.BlockExplorerURL,
		Features:         features,
		FaucetURL:        c.FaucetURL,
		IsMainnet:        c.IsMainnet(),
		EIP1559:          c.SupportsFeeMarket(),
		WalletLink:       c.SupportsGenericWalletLink(),
	}
}

func toChainResponses(chains []entity.Chain) []ChainResponse {
	out := make([]ChainResponse, 0, len(chains))
	for _, c := range chains {
		out = append(out, toChainResponse(c))
	}
	return out
}

func toRPCDetailResponse(d entity.RPCDetail) RPCDetailResponse {
	return RPCDetailResponse{
		Key:       d.ChainKey,
		URL:       d.URL.String(),
		Protocol:  string(d.Protocol),
		IsWorking: d.IsWorking,
		LatencyMs: d.LatencyMs,
		Error:     d.Error,
	}
}
