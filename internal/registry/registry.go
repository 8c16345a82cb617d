// Package registry holds the immutable catalog of chain descriptors and
// answers identity and classification lookups against it.
//
// A Registry is built once and never mutated, so a single instance can be
// shared by any number of goroutines without locking.
package registry

import (
	"fmt"
	"strings"

	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
)

type typedKey struct {
	chainType entity.ChainType
	id        int64
}

// Registry is an indexed, read-only set of chain descriptors.
type Registry struct {
	chains  []entity.Chain
	byKey   map[string]int
	byTyped map[typedKey]int
	tags    map[string]struct{}
}

// New validates the descriptors and indexes them by composite key and by
// (chainType, id). Insertion order is preserved for All.
func New(chains []entity.Chain) (*Registry, error) {
	r := &Registry{
		chains:  make([]entity.Chain, 0, len(chains)),
		byKey:   make(map[string]int, len(chains)),
		byTyped: make(map[typedKey]int, len(chains)),
		tags:    make(map[string]struct{}),
	}

	for _, c := range chains {
		if err := Validate(c); err != nil {
			return nil, err
		}

		key := c.Key()
		if existing, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("%w: key %q used by %q and %q",
				domain.ErrDuplicateChain, key, r.chains[existing].FullName, c.FullName,
			)
		}
		tk := typedKey{chainType: c.ChainType, id: c.ID}
		if existing, ok := r.byTyped[tk]; ok {
			return nil, fmt.Errorf("%w: %s chain id %d used by %q and %q",
				domain.ErrDuplicateChain, c.ChainType, c.ID, r.chains[existing].Key(), key,
			)
		}

		r.byKey[key] = len(r.chains)
		r.byTyped[tk] = len(r.chains)
		r.tags[strings.ToLower(c.Tag)] = struct{}{}
		r.chains = append(r.chains, c.Clone())
	}

	return r, nil
}

// Validate checks the per-descriptor invariants.
func Validate(c entity.Chain) error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: chain id must be positive, got %d (%s)", domain.ErrInvalidChain, c.ID, c.FullName)
	}
	if strings.TrimSpace(c.Tag) == "" {
		return fmt.Errorf("%w: empty family tag for chain %d", domain.ErrInvalidChain, c.ID)
	}
	if c.ChainType == "" {
		return fmt.Errorf("%w: empty chain type for %s", domain.ErrInvalidChain, c.Key())
	}
	for _, f := range c.Features {
		if f.Name != entity.FeatureEIP1559 {
			return fmt.Errorf("%w: unknown feature %q on %s", domain.ErrInvalidChain, f.Name, c.Key())
		}
	}
	if c.RPCURL != "" {
		if _, err := entity.NewRPCURL(c.RPCURL.String()); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidChain, c.Key(), err)
		}
	}
	return nil
}

// Lookup resolves a chain by numeric id and family tag. The tag is matched
// case-insensitively. Malformed input is simply not found.
func (r *Registry) Lookup(chainID int64, familyTag string) (entity.Chain, bool) {
	if chainID <= 0 || familyTag == "" {
		return entity.Chain{}, false
	}
	i, ok := r.byKey[entity.ChainKey(familyTag, chainID)]
	if !ok {
		return entity.Chain{}, false
	}
	return r.chains[i].Clone(), true
}

// HasTag reports whether any descriptor uses the family tag, case-insensitively.
func (r *Registry) HasTag(familyTag string) bool {
	_, ok := r.tags[strings.ToLower(strings.TrimSpace(familyTag))]
	return ok
}

// LookupTyped resolves a chain by id within one chain-type partition.
func (r *Registry) LookupTyped(chainType entity.ChainType, chainID int64) (entity.Chain, bool) {
	i, ok := r.byTyped[typedKey{chainType: chainType, id: chainID}]
	if !ok {
		return entity.Chain{}, false
	}
	return r.chains[i].Clone(), true
}

// LookupEVM returns the EVM chain with the given id.
func (r *Registry) LookupEVM(chainID int64) (entity.Chain, bool) {
	return r.LookupTyped(entity.ChainTypeEVM, chainID)
}

// LookupSolana returns the Solana chain with the given id.
func (r *Registry) LookupSolana(chainID int64) (entity.Chain, bool) {
	return r.LookupTyped(entity.ChainTypeSolana, chainID)
}

// All returns every descriptor in insertion order.
func (r *Registry) All() []entity.Chain {
	out := make([]entity.Chain, len(r.chains))
	for i, c := range r.chains {
		out[i] = c.Clone()
	}
	return out
}

// Filter returns the descriptors matching keep, in insertion order.
func (r *Registry) Filter(keep func(entity.Chain) bool) []entity.Chain {
	var out []entity.Chain
	for _, c := range r.chains {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.chains)
}
