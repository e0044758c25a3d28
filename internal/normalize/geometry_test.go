package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/internal/order"
)

func TestParseDimensions(t *testing.T) {
	for _, in := range []string{"120x80x150", "120 x 80 x 150", "Išmatavimai: 120x80x150 cm"} {
		d, ok, err := ParseDimensions(in)
		require.NoError(t, err, in)
		require.True(t, ok, in)
		assert.InDelta(t, 1.2, d.Width, 1e-9)
		assert.InDelta(t, 0.8, d.Length, 1e-9)
		assert.InDelta(t, 1.5, d.Height, 1e-9)
	}

	_, ok, err := ParseDimensions("no sizes here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountryISO(t *testing.T) {
	tests := map[string]string{
		"Germany":     "DE",
		"deutschland": "DE",
		"D":           "DE",
		"Österreich":  "AT",
		"osterreich":  "AT",
		"A":           "AT",
		"Lithuania":   "LT",
		" lietuva. ":  "LT",
		"UK":          "GB",
		"Česko":       "CZ",
	}
	for in, want := range tests {
		got := CountryISO(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}
	assert.Nil(t, CountryISO("Atlantis"))
	assert.Nil(t, CountryISO(""))
}

func TestAddressPatternParse(t *testing.T) {
	p := AddressPattern{
		Re:                regexp.MustCompile(`(?i)^(?P<company>.+?)\s*, +(?P<street>.+?)\s*, +(?P<postal>[A-Z]{1,2}-?[0-9]{4,}) +(?P<city>.+)$`),
		DigitsOnlyPostal:  true,
		CountryFromPostal: true,
	}

	addr, extra, ok := p.Parse("Muster Papier AG, Industriestrasse 5, D-83022 Rosenheim")
	require.True(t, ok)
	assert.Equal(t, "Muster Papier AG", addr.Company)
	assert.Equal(t, "Muster Papier AG", addr.Title)
	assert.Equal(t, "Industriestrasse 5", addr.StreetAddress)
	assert.Equal(t, "83022", addr.PostalCode)
	assert.Equal(t, "Rosenheim", addr.City)
	assert.Equal(t, order.String("DE"), addr.Country)
	assert.Empty(t, extra)

	_, _, ok = p.Parse("just some words")
	assert.False(t, ok)
}

func TestAddressPatternExtraGroups(t *testing.T) {
	p := AddressPattern{
		Re: regexp.MustCompile(`^(?P<company>[^,]+), (?P<city>[^,]+), (?P<country>[^,]+), (?P<time>.+)$`),
	}
	addr, extra, ok := p.Parse("Depot, Kaunas, Lietuva, 8:00-12:00")
	require.True(t, ok)
	assert.Equal(t, order.String("LT"), addr.Country)
	assert.Equal(t, "8:00-12:00", extra["time"])
}
