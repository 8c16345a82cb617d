package bridge

import (
	"fmt"

	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/pkg/apperrors"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// AddressScheme names how account addresses are written on a chain family.
type AddressScheme string

const (
	SchemeHex         AddressScheme = "hex"
	SchemeBase58Check AddressScheme = "base58check"
	SchemeBase58      AddressScheme = "base58"
)

const (
	tronAddressVersion = 0x41
	tronPayloadLen     = 20
	solanaKeyLen       = 32
)

// SchemeFor returns the address scheme of a chain.
func SchemeFor(chain entity.Chain) AddressScheme {
	switch {
	case chain.IsSolana():
		return SchemeBase58
	case chain.IsTron():
		return SchemeBase58Check
	default:
		return SchemeHex
	}
}

// SerializeMessage prepares a UTF-8 message for signing. Solana signers take
// base58 of the raw bytes; every other family signs the text as is.
func SerializeMessage(chain entity.Chain, message string) string {
	if chain.IsSolana() {
		return base58.Encode([]byte(message))
	}
	return message
}

// ValidateAddress checks an address against the chain's scheme. Mixed-case
// hex addresses must carry a valid EIP-55 checksum.
func ValidateAddress(chain entity.Chain, address string) error {
	switch SchemeFor(chain) {
	case SchemeBase58:
		if decoded := base58.Decode(address); len(decoded) != solanaKeyLen {
			return fmt.Errorf("%w: %q is not a %d-byte base58 key", apperrors.ErrInvalidInput, address, solanaKeyLen)
		}
	case SchemeBase58Check:
		payload, version, err := base58.CheckDecode(address)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidInput, address, err)
		}
		if version != tronAddressVersion || len(payload) != tronPayloadLen {
			return fmt.Errorf("%w: %q is not a tron address", apperrors.ErrInvalidInput, address)
		}
	default:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%w: %q is not a hex address", apperrors.ErrInvalidInput, address)
		}
		if isMixedCase(address) && common.HexToAddress(address).Hex()[2:] != trimHexPrefix(address) {
			return fmt.Errorf("%w: %q has an invalid checksum", apperrors.ErrInvalidInput, address)
		}
	}
	return nil
}

// NormalizeAddress validates an address and returns its canonical form
// (EIP-55 checksummed for hex chains).
func NormalizeAddress(chain entity.Chain, address string) (string, error) {
	if err := ValidateAddress(chain, address); err != nil {
		return "", err
	}
	if SchemeFor(chain) == SchemeHex {
		return common.HexToAddress(address).Hex(), nil
	}
	return address, nil
}

func trimHexPrefix(address string) string {
	if len(address) >= 2 && address[0] == '0' && (address[1] == 'x' || address[1] == 'X') {
		return address[2:]
	}
	return address
}

func isMixedCase(address string) bool {
	var lower, upper bool
	hex := trimHexPrefix(address)
	for _, r := range hex {
		switch {
		case r >= 'a' && r <= 'f':
			lower = true
		case r >= 'A' && r <= 'F':
			upper = true
		}
	}
	return lower && upper
}

// TransactionType picks the envelope for EVM transactions: dynamic-fee when
// the chain has a fee market, legacy otherwise. Tron and non-EVM chains have
// no Ethereum envelope.
func TransactionType(chain entity.Chain) (uint8, error) {
	if !chain.IsEVM() || chain.IsTron() {
		return 0, fmt.Errorf("%w: %s has no ethereum transaction envelope", domain.ErrUnsupportedChainType, chain.Key())
	}
	if chain.SupportsFeeMarket() {
		return types.DynamicFeeTxType, nil
	}
	return types.LegacyTxType, nil
}
