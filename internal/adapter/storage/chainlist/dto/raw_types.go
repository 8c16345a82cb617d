package chainlist_dto

// ChainRaw is one network entry of the chainid.network chains.json feed.
// Only the fields mapped into descriptors are decoded.
type ChainRaw struct {
	Name      string        `json:"name"`
	Chain     string        `json:"chain"`
	Icon      string        `json:"icon,omitempty"`
	RPC       []string      `json:"rpc"`
	Features  []FeatureRaw  `json:"features,omitempty"`
	Faucets   []string      `json:"faucets,omitempty"`
	Currency  CurrencyRaw   `json:"nativeCurrency"`
	InfoURL   string        `json:"infoURL"`
	ShortName string        `json:"shortName"`
	ChainID   int64         `json:"chainId"`
	Explorers []ExplorerRaw `json:"explorers,omitempty"`
	Title     string        `json:"title,omitempty"`
	Network   string        `json:"network,omitempty"`
	Status    string        `json:"status,omitempty"`
	RedFlags  []string      `json:"redFlags,omitempty"`
}

// CurrencyRaw defines the native currency details of a chain from raw data.
type CurrencyRaw struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ExplorerRaw defines details about a block explorer for a chain from raw data.
type ExplorerRaw struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Standard string `json:"standard"`
}

// FeatureRaw defines a feature supported by a chain from raw data.
type FeatureRaw struct {
	Name string `json:"name"`
}
