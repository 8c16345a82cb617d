package domain

import "errors"

var (
	// ErrChainNotFound means the requested chain was not found.
	ErrChainNotFound = errors.New("chain not found")

	// ErrDuplicateChain means two descriptors share a composite key or a (chainType, id) pair.
	ErrDuplicateChain = errors.New("duplicate chain")

	// ErrInvalidChain means a descriptor violates a catalog invariant.
	ErrInvalidChain = errors.New("invalid chain descriptor")

	// ErrUnsupportedChainType means the operation is not defined for the chain family.
	ErrUnsupportedChainType = errors.New("unsupported chain type")

	// ErrNoRPCsAvailable means there is no configured or working RPC for the chain.
	ErrNoRPCsAvailable = errors.New("no RPCs available for the chain")

	// ErrUpstreamSourceFailure means an error occurred while fetching data from the upstream source (e.g., chainid.network).
	ErrUpstreamSourceFailure = errors.New("upstream source failure")
)
