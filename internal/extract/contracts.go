// Package extract selects the vendor layout a document follows and runs the
// matching extractor through schema assembly.
package extract

import (
	"github.com/joseph-ayodele/freight-orders/internal/carrier/access"
	"github.com/joseph-ayodele/freight-orders/internal/carrier/delamode"
	"github.com/joseph-ayodele/freight-orders/internal/carrier/skoda"
	"github.com/joseph-ayodele/freight-orders/internal/carrier/transalliance"
	"github.com/joseph-ayodele/freight-orders/internal/carrier/ziegler"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// Extractor reads one vendor layout.
type Extractor interface {
	// Name is a short stable vendor id.
	Name() string
	// MatchesFormat reports whether lines follow this layout. It must not
	// panic on short or malformed input.
	MatchesFormat(lines []string) bool
	// Extract builds an unvalidated record from lines. filename only feeds
	// attachment_filenames.
	Extract(lines []string, filename string) (*order.Record, error)
}

// Registry is the ordered list of known layouts. It is never mutated after
// construction and is safe for concurrent use.
type Registry []Extractor

// DefaultRegistry returns every supported vendor in dispatch order.
func DefaultRegistry() Registry {
	return Registry{
		access.New(),
		delamode.New(),
		skoda.New(),
		transalliance.New(),
		ziegler.New(),
	}
}

// Names lists the registered vendors in order.
func (r Registry) Names() []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.Name()
	}
	return out
}

// Lookup returns the extractor registered under name.
func (r Registry) Lookup(name string) (Extractor, bool) {
	for _, e := range r {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}
