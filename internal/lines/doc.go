package lines

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// Doc is a vendor-scoped view over a document. Every lookup that fails
// returns a MalformedDocument error naming the vendor and the anchor.
type Doc struct {
	Vendor string
	Lines  []string
}

// Exact returns the index of the first line equal to label.
func (d Doc) Exact(label string) (int, error) {
	i := FindExact(d.Lines, label)
	if i < 0 {
		return -1, common.MalformedDocument(d.Vendor, label, "not found")
	}
	return i, nil
}

// Prefix returns the index of the first line starting with prefix.
func (d Doc) Prefix(prefix string) (int, error) {
	i := FindPrefix(d.Lines, prefix)
	if i < 0 {
		return -1, common.MalformedDocument(d.Vendor, prefix, "not found")
	}
	return i, nil
}

// Line returns line i, reporting anchor when i is out of range.
func (d Doc) Line(i int, anchor string) (string, error) {
	l, ok := At(d.Lines, i)
	if !ok {
		return "", common.MalformedDocument(d.Vendor, anchor, fmt.Sprintf("line %d out of range", i))
	}
	return l, nil
}

// Offset finds label and returns the line off lines away from it.
func (d Doc) Offset(label string, off int) (string, error) {
	i, err := d.Exact(label)
	if err != nil {
		return "", err
	}
	return d.Line(i+off, label)
}

// PrefixValue finds the first line starting with prefix and returns the rest of it.
func (d Doc) PrefixValue(prefix string) (string, error) {
	i, err := d.Prefix(prefix)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(d.Lines[i], prefix), nil
}

// Section returns the lines strictly between the first line equal to start
// and the first line equal to end after it.
func (d Doc) Section(start, end string) ([]string, error) {
	s, err := d.Exact(start)
	if err != nil {
		return nil, err
	}
	e := FindFunc(d.Lines, s+1, func(_ int, l string) bool { return l == end })
	if e < 0 {
		return nil, common.MalformedDocument(d.Vendor, end, "not found after "+start)
	}
	return d.Lines[s+1 : e], nil
}

// Match applies re to s and returns the submatches, naming anchor on failure.
func (d Doc) Match(re *regexp.Regexp, s, anchor string) ([]string, error) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, common.MalformedDocument(d.Vendor, anchor, fmt.Sprintf("%q does not match %s", s, re))
	}
	return m, nil
}
