package normalize

import (
	"regexp"
)

// DimsPattern captures three locale-formatted numbers separated by "x"
// and/or whitespace, e.g. "120x80x150", "120 x 80 x 150", "120,5 80 150".
const DimsPattern = `([0-9][0-9,.]*)\s*[x\s]\s*([0-9][0-9,.]*)\s*[x\s]\s*([0-9][0-9,.]*)`

var dimsRe = regexp.MustCompile(DimsPattern)

// Dimensions of one package in meters.
type Dimensions struct {
	Width  float64
	Length float64
	Height float64
}

// DimensionsFromCentimeters normalizes three centimeter tokens into meters.
func DimensionsFromCentimeters(width, length, height string) (Dimensions, error) {
	var out Dimensions
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{width, &out.Width},
		{length, &out.Length},
		{height, &out.Height},
	} {
		v, err := Number(f.raw)
		if err != nil {
			return Dimensions{}, err
		}
		*f.dst = v / 100
	}
	return out, nil
}

// ParseDimensions finds the first dimension triple in s. ok is false when
// s holds none.
func ParseDimensions(s string) (dims Dimensions, ok bool, err error) {
	m := dimsRe.FindStringSubmatch(s)
	if m == nil {
		return Dimensions{}, false, nil
	}
	dims, err = DimensionsFromCentimeters(m[1], m[2], m[3])
	if err != nil {
		return Dimensions{}, false, err
	}
	return dims, true, nil
}
