// Package normalize holds the shared field normalizers used by every vendor
// extractor: locale-aware numbers, countries, dates and time windows,
// package dimensions, one-line addresses and stop de-duplication.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

var spaceStripper = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

// Uncomma turns a number that may use either "," or "." as the decimal
// separator into a float. When there is no comma, or the first comma comes
// before the first point, commas are thousands separators; otherwise points
// are thousands separators and the comma is the decimal mark.
// Empty input yields nil.
func Uncomma(input string) (*float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}

	commaPos := strings.Index(s, ",")
	pointPos := strings.Index(s, ".")

	var out string
	if commaPos < 0 || (pointPos >= 0 && commaPos < pointPos) {
		out = strings.ReplaceAll(s, ",", "")
	} else {
		out = strings.ReplaceAll(s, ".", "")
		out = strings.ReplaceAll(out, ",", ".")
	}
	out = spaceStripper.Replace(out)

	d, err := decimal.NewFromString(out)
	if err != nil {
		return nil, common.NumericParseFailure(input)
	}
	f, _ := d.Float64()
	return &f, nil
}

// Number is Uncomma for values that must be present.
func Number(input string) (float64, error) {
	f, err := Uncomma(input)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, common.NumericParseFailure(input)
	}
	return *f, nil
}

// Grouped parses a number printed with "," thousands separators and an
// optional "." decimal part, as English-language documents write them.
func Grouped(input string) (float64, error) {
	d, err := decimal.NewFromString(spaceStripper.Replace(strings.ReplaceAll(strings.TrimSpace(input), ",", "")))
	if err != nil {
		return 0, common.NumericParseFailure(input)
	}
	f, _ := d.Float64()
	return f, nil
}

// Count parses a package count, rounding to the nearest integer. Missing or
// non-positive counts become 1.
func Count(input string) (int, error) {
	f, err := Uncomma(input)
	if err != nil {
		return 0, err
	}
	if f == nil || *f < 1 {
		return 1, nil
	}
	return int(decimal.NewFromFloat(*f).Round(0).IntPart()), nil
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Letters keeps only the ASCII letters of s.
func Letters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripNonNumeric drops everything but digits, separators and a minus sign,
// e.g. "1.250,00 EUR" -> "1.250,00".
func StripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
