package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want PackageType
		ok   bool
	}{
		{"pallet", PalletOther, true},
		{" Pallets ", PalletOther, true},
		{"Cartons", Carton, true},
		{"BOX", Box, true},
		{"boxes", Box, true},
		{"cases", Crate, true},
		{"drums", Drum, true},
		{"sacks", Bag, true},
		{"coils", Roll, true},
		{"units", Container, true},
		{"pallet_other", PalletOther, true},
		{"gitterbox", Other, false},
		{"", Other, false},
	}
	for _, tt := range tests {
		got, ok := Canonicalize(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestPackageTypeIn(t *testing.T) {
	pt, ok := PackageTypeIn("4 cartons on 2 pallets", nil)
	assert.True(t, ok)
	assert.Equal(t, PalletOther, pt)

	pt, ok = PackageTypeIn("REF ABC 2 drums", nil)
	assert.True(t, ok)
	assert.Equal(t, Drum, pt)

	_, ok = PackageTypeIn("Machinery and other goods", nil)
	assert.False(t, ok)
}

func TestPackageTypeInOverrides(t *testing.T) {
	overrides := map[PackageType]PackageType{Carton: Box, Roll: PalletOther}

	pt, _ := PackageTypeIn("12 cartons", overrides)
	assert.Equal(t, Box, pt)

	pt, _ = PackageTypeIn("Paper rolls", overrides)
	assert.Equal(t, PalletOther, pt)

	pt, _ = PackageTypeIn("20ft container", overrides)
	assert.Equal(t, Container, pt)
}
