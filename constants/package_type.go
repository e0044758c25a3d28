package constants

import (
	"slices"
	"strings"
	"unicode"
)

// PackageType is the canonical packaging enumeration every vendor vocabulary maps onto.
type PackageType string

const (
	PalletOther PackageType = "PALLET_OTHER"
	Carton      PackageType = "CARTON"
	Box         PackageType = "BOX"
	Crate       PackageType = "CRATE"
	Drum        PackageType = "DRUM"
	Bag         PackageType = "BAG"
	Roll        PackageType = "ROLL"
	Container   PackageType = "CONTAINER"
	Other       PackageType = "OTHER"
)

var allPackageTypes = []PackageType{
	PalletOther,
	Carton,
	Box,
	Crate,
	Drum,
	Bag,
	Roll,
	Container,
	Other,
}

// PackageTypes returns the enumeration as strings, e.g. for a schema enum.
func PackageTypes() []string {
	result := make([]string, len(allPackageTypes))
	for i, pt := range allPackageTypes {
		result[i] = string(pt)
	}
	return result
}

// PackageTypeMap is a per-vendor vocabulary table with a documented fallback.
type PackageTypeMap struct {
	Entries  map[string]PackageType
	Fallback PackageType
}

// Lookup maps a vendor term. Unknown terms return the fallback, never an error.
func (m PackageTypeMap) Lookup(term string) PackageType {
	if pt, ok := m.Entries[strings.TrimSpace(term)]; ok {
		return pt
	}
	return m.Fallback
}

var packageSynonyms = map[string]PackageType{
	"pallet":    PalletOther,
	"pal":       PalletOther,
	"carton":    Carton,
	"ctn":       Carton,
	"box":       Box,
	"package":   Box,
	"crate":     Crate,
	"case":      Crate,
	"drum":      Drum,
	"barrel":    Drum,
	"bag":       Bag,
	"sack":      Bag,
	"roll":      Roll,
	"coil":      Roll,
	"container": Container,
	"unit":      Container,
}

// Canonicalize maps a free-form packaging word ("pallet", "Cartons", "BOX")
// onto the enumeration. The bool reports whether the word was recognised.
func Canonicalize(input string) (PackageType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}

	for _, w := range []string{normalized, strings.TrimSuffix(normalized, "es"), strings.TrimSuffix(normalized, "s")} {
		if pt, ok := packageSynonyms[w]; ok {
			return pt, true
		}
	}

	for _, pt := range allPackageTypes {
		if normalized == strings.ToLower(string(pt)) {
			return pt, true
		}
	}

	return Other, false
}

// PackageTypeIn canonicalizes every word of text and keeps the one listed
// earliest in the enumeration, so "4 cartons on 2 pallets" is a pallet load.
// Overrides re-map canonical types for vendors that use a word differently.
func PackageTypeIn(text string, overrides map[PackageType]PackageType) (PackageType, bool) {
	best, found := Other, false
	rank := len(allPackageTypes)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		pt, ok := Canonicalize(w)
		if !ok || pt == Other {
			continue
		}
		if r := slices.Index(allPackageTypes, pt); r < rank {
			best, rank, found = pt, r, true
		}
	}
	if to, ok := overrides[best]; found && ok {
		best = to
	}
	return best, found
}
