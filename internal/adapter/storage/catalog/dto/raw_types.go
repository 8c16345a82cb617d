package catalog_dto

// ChainRaw is one catalog entry as written in a catalog file. JSON files are
// decoded through the YAML parser, so the yaml tags cover both formats.
type ChainRaw struct {
	Tag              string       `yaml:"tag"`
	ID               int64        `yaml:"id"`
	Name             string       `yaml:"name"`
	ChainType        string       `yaml:"chainType"`
	Icon             string       `yaml:"icon,omitempty"`
	FullName         string       `yaml:"fullName"`
	Network          string       `yaml:"network"`
	Website          string       `yaml:"website,omitempty"`
	NativeCurrency   CurrencyRaw  `yaml:"nativeCurrency"`
	RPCURL           string       `yaml:"rpcUrl"`
	BlockExplorerURL string       `yaml:"blockExplorerUrl,omitempty"`
	Features         []FeatureRaw `yaml:"features,omitempty"`
	FaucetURL        string       `yaml:"faucetUrl,omitempty"`
}

// CurrencyRaw defines the native currency of a catalog entry.
type CurrencyRaw struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

// FeatureRaw is a feature tag. Catalog files write it as a bare string.
type FeatureRaw string
