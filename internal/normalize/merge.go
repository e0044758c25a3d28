package normalize

import (
	"slices"

	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// LocationMerger accumulates stops in order, folding stops with the same
// company, street, postal code, city and country into one entry whose
// subcargo indices collect every cargo item using it.
type LocationMerger struct {
	locations []order.Location
}

// Add appends loc, or merges its subcargo indices into an existing stop at
// the same address. Time windows of merged duplicates are not compared.
func (m *LocationMerger) Add(loc order.Location) {
	loc.CompanyAddress.SubcargoIndices = slices.Clone(loc.CompanyAddress.SubcargoIndices)
	for i := range m.locations {
		existing := &m.locations[i].CompanyAddress
		if !existing.SameAddress(loc.CompanyAddress) {
			continue
		}
		for _, idx := range loc.CompanyAddress.SubcargoIndices {
			if !slices.Contains(existing.SubcargoIndices, idx) {
				existing.SubcargoIndices = append(existing.SubcargoIndices, idx)
			}
		}
		return
	}
	m.locations = append(m.locations, loc)
}

// Locations returns the merged stops in first-seen order.
func (m *LocationMerger) Locations() []order.Location {
	return slices.Clone(m.locations)
}

// MergeLocations folds locs through a fresh LocationMerger.
func MergeLocations(locs ...order.Location) []order.Location {
	var m LocationMerger
	for _, l := range locs {
		m.Add(l)
	}
	return m.Locations()
}
