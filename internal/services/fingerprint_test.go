package services

import (
	"testing"

	"bi-dashboard/internal/models"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := models.FilterSpec{
		States: []string{"Kerala", "Karnataka"},
		Brands: []string{"B2", "B1"},
	}
	b := models.FilterSpec{
		States: []string{"Karnataka", "Kerala"},
		Brands: []string{"B1", "B2"},
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("specs differing only in set order should share a fingerprint")
	}
}

func TestFingerprint_Dedupes(t *testing.T) {
	a := models.FilterSpec{Branches: []string{"X", "X", "Y"}}
	b := models.FilterSpec{Branches: []string{"Y", "X"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("duplicate set values should not change the fingerprint")
	}
}

func TestFingerprint_LonePriceBoundIgnored(t *testing.T) {
	minPrice := 100.0
	withLoneBound := models.FilterSpec{PriceMin: &minPrice}
	unbounded := models.FilterSpec{}

	if Fingerprint(withLoneBound) != Fingerprint(unbounded) {
		t.Error("a lone price bound never filters and should not change the fingerprint")
	}

	maxPrice := 500.0
	ranged := models.FilterSpec{PriceMin: &minPrice, PriceMax: &maxPrice}
	if Fingerprint(ranged) == Fingerprint(unbounded) {
		t.Error("a full price range must produce a distinct fingerprint")
	}
}

func TestFingerprint_DistinguishesSpecs(t *testing.T) {
	a := models.FilterSpec{PeriodType: models.PeriodYear, Year: 2024}
	b := models.FilterSpec{PeriodType: models.PeriodYear, Year: 2023}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different years must yield different fingerprints")
	}
}
