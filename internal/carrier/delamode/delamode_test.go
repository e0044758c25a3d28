package delamode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
)

func TestMatchesFormat(t *testing.T) {
	ex := New()
	assert.False(t, ex.MatchesFormat([]string{referencePrefix + " 1"}))
	assert.False(t, ex.MatchesFormat([]string{referencePrefix + " 1", "", "Vežėjas:", "Pastabos:"}))
	assert.True(t, ex.MatchesFormat([]string{referencePrefix + " 1", "", "Vežėjas:", "Pastabos:", issuer}))
}

func TestParseWindowUsesSlotOrInlineClock(t *testing.T) {
	w, err := parseWindow("2024-03-04", "8:00-16:00", Location)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04T08:00:00+02:00", w.From.Format(time.RFC3339))
	require.NotNil(t, w.To)
	assert.Equal(t, "2024-03-04T16:00:00+02:00", w.To.Format(time.RFC3339))

	// a clock printed with the date wins over the address slot
	w, err = parseWindow("2024-07-01 10:30", "8:00-16:00", Location)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01T10:30:00+03:00", w.From.Format(time.RFC3339))
	assert.Nil(t, w.To)

	w, err = parseWindow("04.03.2024", "", Location)
	require.NoError(t, err)
	assert.Equal(t, 0, w.From.Hour())

	_, err = parseWindow("soon", "", Location)
	assert.ErrorIs(t, err, common.ErrDateParse)
}

func TestExtractCargo(t *testing.T) {
	part := []string{
		"Krovinio ID: 77",
		"Iškrovimo nr.: IK-9",
		"Kiekis: 4",
		"Pakavimo vienetai: Pcs",
		"Svoris: 1 kg",
		"Išmatavimai: 100x50x20 cm",
	}
	c, err := extractCargo(part)
	require.NoError(t, err)
	assert.Equal(t, "77", c.Number)
	assert.Equal(t, "IK-9", c.Title)
	assert.Equal(t, 4, c.PackageCount)
	assert.Equal(t, constants.Other, c.PackageType)
	assert.InDelta(t, 1.0, *c.Weight, 1e-9)
	assert.Nil(t, c.Volume)
	assert.InDelta(t, 0.2, *c.PkgHeight, 1e-9)
}

func TestExtractLoadsRequiresHeading(t *testing.T) {
	_, _, _, err := extractLoads([]string{"Krovinių informacija", ""})
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
}

func TestExtractStopRejectsAddress(t *testing.T) {
	part := []string{
		pickupAddressPrefix + "somewhere",
		"",
		pickupDatePrefix + "2024-03-04",
	}
	_, err := extractStop(part, pickupAddressPrefix, pickupDatePrefix)
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
}

func TestExtractRejectsFreightLine(t *testing.T) {
	ls := []string{
		referencePrefix + " X-1", "", "Vežėjas:", "Pastabos:", issuer,
		freightLabel, "", "1450,00",
	}
	_, err := New().Extract(ls, "d.pdf")
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, freightLabel, appErr.Field)
}

func TestExtractRejectsEmptyReference(t *testing.T) {
	ls := []string{referencePrefix, "", "Vežėjas:", "Pastabos:", issuer}
	_, err := New().Extract(ls, "d.pdf")
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
}
