package registry

import (
	"chain-registry/internal/domain/entity"
)

// Overlay returns base with overlay applied: an overlay entry replaces the
// base entry with the same composite key, and new keys are appended. Overlay
// entries whose (chainType, id) is already taken by a different key are
// returned as rejected.
func Overlay(base, overlay []entity.Chain) (merged, rejected []entity.Chain) {
	merged = make([]entity.Chain, len(base))
	copy(merged, base)

	byKey := make(map[string]int, len(merged))
	byTyped := make(map[typedKey]string, len(merged))
	for i, c := range merged {
		byKey[c.Key()] = i
		byTyped[typedKey{chainType: c.ChainType, id: c.ID}] = c.Key()
	}

	for _, c := range overlay {
		key := c.Key()
		tk := typedKey{chainType: c.ChainType, id: c.ID}
		if owner, taken := byTyped[tk]; taken && owner != key {
			rejected = append(rejected, c)
			continue
		}
		if i, ok := byKey[key]; ok {
			old := merged[i]
			delete(byTyped, typedKey{chainType: old.ChainType, id: old.ID})
			merged[i] = c
		} else {
			byKey[key] = len(merged)
			merged = append(merged, c)
		}
		byTyped[tk] = key
	}
	return merged, rejected
}

// Supplement appends the extra entries whose composite key and
// (chainType, id) are both unused; the others are returned as skipped.
func Supplement(base, extra []entity.Chain) (merged, skipped []entity.Chain) {
	merged = make([]entity.Chain, len(base), len(base)+len(extra))
	copy(merged, base)

	keys := make(map[string]struct{}, len(merged))
	typed := make(map[typedKey]struct{}, len(merged))
	for _, c := range merged {
		keys[c.Key()] = struct{}{}
		typed[typedKey{chainType: c.ChainType, id: c.ID}] = struct{}{}
	}

	for _, c := range extra {
		tk := typedKey{chainType: c.ChainType, id: c.ID}
		_, keyTaken := keys[c.Key()]
		_, idTaken := typed[tk]
		if keyTaken || idTaken {
			skipped = append(skipped, c)
			continue
		}
		keys[c.Key()] = struct{}{}
		typed[tk] = struct{}{}
		merged = append(merged, c)
	}
	return merged, skipped
}
