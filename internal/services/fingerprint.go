package services

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"slices"

	"bi-dashboard/internal/models"
)

// Fingerprint derives the cache key for a filter specification: the
// md5 of its canonical serialization. Canonicalization sorts and
// dedupes every value set and elides empty clauses, so two specs that
// select the same rows in a different order share one key.
func Fingerprint(spec models.FilterSpec) string {
	canon := canonicalize(spec)
	raw, err := json.Marshal(canon)
	if err != nil {
		// FilterSpec contains only marshalable fields; this cannot
		// happen with a well-formed spec.
		return ""
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func canonicalize(spec models.FilterSpec) models.FilterSpec {
	spec.States = canonicalSet(spec.States)
	spec.Districts = canonicalSet(spec.Districts)
	spec.RBMs = canonicalSet(spec.RBMs)
	spec.BDMs = canonicalSet(spec.BDMs)
	spec.Branches = canonicalSet(spec.Branches)
	spec.Brands = canonicalSet(spec.Brands)
	spec.Products = canonicalSet(spec.Products)

	// Both bounds or neither: a lone bound never filters.
	if !spec.HasPriceRange() {
		spec.PriceMin = nil
		spec.PriceMax = nil
	}

	return spec
}

func canonicalSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
