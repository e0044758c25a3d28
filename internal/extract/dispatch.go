package extract

import (
	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// Dispatch returns the first extractor whose predicate accepts lines.
func (r Registry) Dispatch(lines []string, filename string) (Extractor, error) {
	for _, e := range r {
		if matches(e, lines) {
			return e, nil
		}
	}
	return nil, common.FormatNotRecognized(filename)
}

// Matching returns the names of every extractor accepting lines. More than
// one name means two predicates overlap.
func (r Registry) Matching(lines []string) []string {
	var out []string
	for _, e := range r {
		if matches(e, lines) {
			out = append(out, e.Name())
		}
	}
	return out
}

// matches treats a panicking predicate as a non-match.
func matches(e Extractor, lines []string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return e.MatchesFormat(lines)
}
