package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ChainType defines the protocol family a network belongs to.
type ChainType string

// Constants for known chain families.
const (
	ChainTypeEVM    ChainType = "evm"
	ChainTypeSolana ChainType = "solana"
)

// String returns the string representation of the ChainType.
func (t ChainType) String() string {
	return string(t)
}

// NetworkMainnet is the only network label classified as production.
// The comparison is case-sensitive: "mainnet" is not a mainnet.
const NetworkMainnet = "Mainnet"

// FeatureEIP1559 marks fee-market style transaction pricing.
const FeatureEIP1559 = "EIP1559"

// tronName is carved out of wallet-linking because its signing scheme differs.
const tronName = "Tron"

// Chain represents one distinguishable network configuration.
type Chain struct {
	ID               int64
	Tag              string
	Name             string
	ChainType        ChainType
	Icon             string
	FullName         string
	Network          string
	Website          string
	RPCURL           RPCURL
	BlockExplorerURL string
	NativeCurrency   Currency
	Features         []Feature
	FaucetURL        string
}

// Currency defines the native currency details of a chain.
type Currency struct {
	Name     string
	Symbol   string
	Decimals int
}

// Feature defines a feature supported by a chain.
type Feature struct {
	Name string
}

// Key returns the composite lookup key, e.g. "ethereum-1".
func (c Chain) Key() string {
	return ChainKey(c.Tag, c.ID)
}

// ChainKey builds the composite key for a family tag and chain id.
func ChainKey(tag string, chainID int64) string {
	return strings.ToLower(tag) + "-" + strconv.FormatInt(chainID, 10)
}

func (c Chain) IsEVM() bool {
	return c.ChainType == ChainTypeEVM
}

func (c Chain) IsSolana() bool {
	return c.ChainType == ChainTypeSolana
}

func (c Chain) IsMainnet() bool {
	return c.Network == NetworkMainnet
}

// IsTron reports whether the descriptor belongs to the Tron family.
func (c Chain) IsTron() bool {
	return c.Name == tronName
}

// SupportsFeeMarket reports EIP-1559 support. A nil or empty feature list is false.
func (c Chain) SupportsFeeMarket() bool {
	for _, f := range c.Features {
		if f.Name == FeatureEIP1559 {
			return true
		}
	}
	return false
}

// SupportsGenericWalletLink reports whether the chain can be used with the
// generic wallet-linking protocol. Tron is EVM-typed but excluded.
func (c Chain) SupportsGenericWalletLink() bool {
	return c.IsEVM() && !c.IsTron()
}

// HasFaucet reports whether a test-token faucet is known for the chain.
func (c Chain) HasFaucet() bool {
	return c.FaucetURL != ""
}

// Clone returns a copy that shares no mutable state with c.
func (c Chain) Clone() Chain {
	if c.Features != nil {
		features := make([]Feature, len(c.Features))
		copy(features, c.Features)
		c.Features = features
	}
	return c
}

func (c Chain) String() string {
	return fmt.Sprintf(
		"name:%s id:%d chainType:%s network:%s nativeCurrency:%s/%s/%d fullName:%s eip1559:%t mainnet:%t",
		c.Name, c.ID, c.ChainType, c.Network,
		c.NativeCurrency.Name, c.NativeCurrency.Symbol, c.NativeCurrency.Decimals,
		c.FullName, c.SupportsFeeMarket(), c.IsMainnet(),
	)
}
