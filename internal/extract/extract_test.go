package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/assemble"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

func fixture(t *testing.T, name string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return strings.Split(string(b), "\n")
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	a, err := assemble.New()
	require.NoError(t, err)
	return NewPipeline(nil, DefaultRegistry(), a)
}

func ts(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func TestDispatchIsExclusive(t *testing.T) {
	reg := DefaultRegistry()
	labelled := map[string]string{
		"access_1.txt":        "access",
		"delamode_1.txt":      "delamode",
		"skoda_1.txt":         "skoda",
		"transalliance_1.txt": "transalliance",
		"ziegler_1.txt":       "ziegler",
	}
	for file, vendor := range labelled {
		t.Run(file, func(t *testing.T) {
			ls := fixture(t, file)
			assert.Equal(t, []string{vendor}, reg.Matching(ls))

			ex, err := reg.Dispatch(ls, file)
			require.NoError(t, err)
			assert.Equal(t, vendor, ex.Name())
		})
	}
}

func TestDispatchUnknownDocument(t *testing.T) {
	reg := DefaultRegistry()
	for _, ls := range [][]string{
		nil,
		{""},
		{"Access Logistic GmbH, Amerling 130, A-6233 Kramsach"},
		{"INVOICE", "", "Total: 12,00 EUR"},
	} {
		assert.Empty(t, reg.Matching(ls))
		_, err := reg.Dispatch(ls, "Scan.PDF")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrFormatNotRecognized)
	}
}

type panicky struct{}

func (panicky) Name() string                { return "panicky" }
func (panicky) MatchesFormat([]string) bool { panic("index out of range") }
func (panicky) Extract([]string, string) (*order.Record, error) {
	return nil, nil
}

func TestDispatchSurvivesPanickingPredicate(t *testing.T) {
	reg := append(Registry{panicky{}}, DefaultRegistry()...)
	ex, err := reg.Dispatch(fixture(t, "skoda_1.txt"), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "skoda", ex.Name())
}

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"access", "delamode", "skoda", "transalliance", "ziegler"},
		DefaultRegistry().Names())
	_, ok := DefaultRegistry().Lookup("ziegler")
	assert.True(t, ok)
}

func TestAccessEndToEnd(t *testing.T) {
	res, err := newPipeline(t).Process(fixture(t, "access_1.txt"), "Access_Order.PDF")
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "access", res.Vendor)
	assert.Equal(t, "Access Logistic GmbH", rec.Customer.Details.Company)
	assert.Equal(t, order.String("AT"), rec.Customer.Details.Country)
	assert.Equal(t, "Anna Berger", rec.Customer.Details.ContactPerson)
	assert.Equal(t, order.SideNone, rec.Customer.Side)
	assert.Equal(t, "2024-0815", rec.OrderReference)
	assert.Equal(t, "W-12345X / AB123", rec.TransportNumbers)
	assert.InDelta(t, 1250.0, *rec.FreightPrice, 1e-9)
	assert.Equal(t, "EUR", rec.FreightCurrency)
	assert.Equal(t, []string{"access_order.pdf"}, rec.AttachmentFilenames)

	require.Len(t, rec.LoadingLocations, 1)
	pickup := rec.LoadingLocations[0]
	assert.Equal(t, "Muster Papier AG", pickup.CompanyAddress.Company)
	assert.Equal(t, "83022", pickup.CompanyAddress.PostalCode)
	assert.Equal(t, order.String("DE"), pickup.CompanyAddress.Country)
	assert.Equal(t, "2024-03-01T08:00:00+01:00", pickup.Time.From.Format(time.RFC3339))
	assert.Equal(t, "2024-03-01T10:00:00+01:00", ts(pickup.Time.To))

	require.Len(t, rec.DestinationLocations, 1)
	drop := rec.DestinationLocations[0]
	assert.Equal(t, "Wien", drop.CompanyAddress.City)
	assert.Equal(t, order.String("AT"), drop.CompanyAddress.Country)
	assert.Equal(t, "2024-03-02T07:30:00+01:00", drop.Time.From.Format(time.RFC3339))
	assert.Nil(t, drop.Time.To)

	require.Len(t, rec.Cargos, 1)
	c := rec.Cargos[0]
	assert.Equal(t, "Paper rolls", c.Title)
	assert.Equal(t, "LR-4711; UR-0815", c.Number)
	assert.Equal(t, 33, c.PackageCount)
	assert.Equal(t, constants.PalletOther, c.PackageType)
	assert.InDelta(t, 24000.0, *c.Weight, 1e-9)
	assert.InDelta(t, 13.6, *c.Ldm, 1e-9)
}

func TestDelamodeEndToEnd(t *testing.T) {
	res, err := newPipeline(t).Process(fixture(t, "delamode_1.txt"), "dlm.pdf")
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "DLM-2024-0042", rec.OrderReference)
	assert.Equal(t, "ABC123 / XY456", rec.TransportNumbers)
	assert.InDelta(t, 1450.0, *rec.FreightPrice, 1e-9)
	assert.Equal(t, "EUR", rec.FreightCurrency)
	assert.Equal(t, "300614485", rec.Customer.Details.CompanyCode)

	require.Len(t, rec.Cargos, 2)
	first := rec.Cargos[0]
	assert.Equal(t, "1001", first.Number)
	assert.Equal(t, "PK-1; IK-1", first.Title)
	assert.Equal(t, 2, first.PackageCount)
	assert.Equal(t, constants.Other, first.PackageType)
	assert.InDelta(t, 1200.0, *first.Weight, 1e-9)
	assert.InDelta(t, 3.5, *first.Volume, 1e-9)
	assert.InDelta(t, 1.2, *first.PkgWidth, 1e-9)
	assert.InDelta(t, 0.8, *first.PkgLength, 1e-9)
	assert.InDelta(t, 1.5, *first.PkgHeight, 1e-9)
	assert.Equal(t, constants.Other, rec.Cargos[1].PackageType)

	// both loads are collected at the same warehouse
	require.Len(t, rec.LoadingLocations, 1)
	pickup := rec.LoadingLocations[0]
	assert.Equal(t, "UAB Sandelis", pickup.CompanyAddress.Company)
	assert.Equal(t, "Savanorių pr. 1", pickup.CompanyAddress.StreetAddress)
	assert.Equal(t, "03116", pickup.CompanyAddress.PostalCode)
	assert.Equal(t, "Vilnius", pickup.CompanyAddress.City)
	assert.Equal(t, order.String("LT"), pickup.CompanyAddress.Country)
	assert.ElementsMatch(t, []int{0, 1}, pickup.CompanyAddress.SubcargoIndices)
	assert.Equal(t, "2024-03-04T08:00:00+02:00", pickup.Time.From.Format(time.RFC3339))
	assert.Equal(t, "2024-03-04T16:00:00+02:00", ts(pickup.Time.To))

	require.Len(t, rec.DestinationLocations, 2)
	assert.Equal(t, "Bremen", rec.DestinationLocations[0].CompanyAddress.City)
	assert.Equal(t, order.String("DE"), rec.DestinationLocations[0].CompanyAddress.Country)
	assert.Equal(t, []int{0}, rec.DestinationLocations[0].CompanyAddress.SubcargoIndices)
	assert.Equal(t, "2024-03-06T10:00:00+02:00", rec.DestinationLocations[0].Time.From.Format(time.RFC3339))
	assert.Nil(t, rec.DestinationLocations[0].Time.To)
	assert.Equal(t, []int{1}, rec.DestinationLocations[1].CompanyAddress.SubcargoIndices)
}

func TestSkodaEndToEnd(t *testing.T) {
	res, err := newPipeline(t).Process(fixture(t, "skoda_1.txt"), "LL_7781.pdf")
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, order.SideSender, rec.Customer.Side)
	assert.Equal(t, "SK-2024-7781", rec.OrderReference)
	assert.Equal(t, "4711009", rec.CustomerNumber)

	require.Len(t, rec.LoadingLocations, 1)
	assert.Equal(t, "Škoda Auto, a.s.", rec.LoadingLocations[0].CompanyAddress.Company)
	assert.Equal(t, "2024-03-15T00:00:00+01:00", rec.LoadingLocations[0].Time.From.Format(time.RFC3339))

	require.Len(t, rec.DestinationLocations, 1)
	dest := rec.DestinationLocations[0].CompanyAddress
	assert.Equal(t, "Autohaus Nord GmbH", dest.Company)
	assert.Equal(t, "Industriestrasse 12", dest.StreetAddress)
	assert.Equal(t, "DE-24937", dest.PostalCode)
	assert.Equal(t, "Flensburg", dest.City)
	assert.Equal(t, order.String("DE"), dest.Country)
	assert.Nil(t, rec.DestinationLocations[0].Time)

	require.Len(t, rec.Cargos, 2)
	assert.Equal(t, "123456", rec.Cargos[0].Number)
	assert.Equal(t, "Dveře přední", rec.Cargos[0].Title)
	assert.InDelta(t, 450.5, *rec.Cargos[0].Weight, 1e-9)
	assert.InDelta(t, 1.0, *rec.Cargos[0].PkgHeight, 1e-9)
	assert.Equal(t, "654321", rec.Cargos[1].Number)
	assert.Equal(t, "Nárazník", rec.Cargos[1].Title)
	assert.InDelta(t, 2.0, *rec.Cargos[1].PkgWidth, 1e-9)
	assert.InDelta(t, 300.0, *rec.Cargos[1].Weight, 1e-9)
	for _, c := range rec.Cargos {
		assert.Equal(t, 1, c.PackageCount)
		assert.Equal(t, constants.Other, c.PackageType)
	}
}

func TestTransallianceEndToEnd(t *testing.T) {
	res, err := newPipeline(t).Process(fixture(t, "transalliance_1.txt"), "ta.pdf")
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "TA123456", rec.OrderReference)
	assert.InDelta(t, 1250.0, *rec.FreightPrice, 1e-9)
	assert.Equal(t, "EUR", rec.FreightCurrency)
	assert.Equal(t, order.SideSender, rec.Customer.Side)
	assert.Equal(t, "Unknown", rec.Customer.Details.City)

	require.Len(t, rec.LoadingLocations, 1)
	pickup := rec.LoadingLocations[0]
	assert.Equal(t, "NORTH DEPOT LTD", pickup.CompanyAddress.Company)
	assert.Equal(t, "UNIT 5 DOCK ROAD", pickup.CompanyAddress.StreetAddress)
	assert.Equal(t, "GB-L20 8DT", pickup.CompanyAddress.PostalCode)
	assert.Equal(t, "LIVERPOOL", pickup.CompanyAddress.City)
	assert.Equal(t, order.String("GB"), pickup.CompanyAddress.Country)
	assert.Equal(t, "2024-03-05T08:00:00Z", pickup.Time.From.Format(time.RFC3339))
	assert.Equal(t, "2024-03-05T12:00:00Z", ts(pickup.Time.To))

	require.Len(t, rec.DestinationLocations, 1)
	assert.Equal(t, "SOUTHAMPTON", rec.DestinationLocations[0].CompanyAddress.City)

	require.Len(t, rec.Cargos, 1)
	c := rec.Cargos[0]
	assert.Equal(t, "Paper pallets", c.Title)
	assert.Equal(t, constants.PalletOther, c.PackageType)
	assert.Equal(t, 1, c.PackageCount)
	assert.InDelta(t, 24000.0, *c.Weight, 1e-9)
	assert.InDelta(t, 13.6, *c.Ldm, 1e-9)
}

func TestZieglerEndToEnd(t *testing.T) {
	res, err := newPipeline(t).Process(fixture(t, "ziegler_1.txt"), "ZIEGLER.pdf")
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "4500123456", rec.OrderReference)
	assert.InDelta(t, 1150.0, *rec.FreightPrice, 1e-9)
	assert.Equal(t, "GBP", rec.FreightCurrency)
	assert.Equal(t, "SS17 9DY", rec.Customer.Details.PostalCode)
	assert.Equal(t, "STANFORD-LE-HOPE", rec.Customer.Details.City)

	require.Len(t, rec.LoadingLocations, 1)
	pickup := rec.LoadingLocations[0]
	assert.Equal(t, "ALPHA PAPER LTD", pickup.CompanyAddress.Company)
	assert.Equal(t, "12 MILL ROAD", pickup.CompanyAddress.StreetAddress)
	assert.Equal(t, "BOLTON", pickup.CompanyAddress.City)
	assert.Equal(t, "BL1 2AB", pickup.CompanyAddress.PostalCode)
	assert.Equal(t, "2024-03-04T08:00:00Z", pickup.Time.From.Format(time.RFC3339))
	assert.Equal(t, "2024-03-04T16:00:00Z", ts(pickup.Time.To))

	require.Len(t, rec.DestinationLocations, 1)
	drop := rec.DestinationLocations[0]
	assert.Equal(t, "SIEGEL LOGISTICS", drop.CompanyAddress.Company)
	assert.Equal(t, "69007", drop.CompanyAddress.PostalCode)
	assert.Equal(t, "LYON", drop.CompanyAddress.City)
	assert.Equal(t, "2024-03-06T00:00:00Z", drop.Time.From.Format(time.RFC3339))

	require.Len(t, rec.Cargos, 1)
	c := rec.Cargos[0]
	assert.Equal(t, "ZX991", c.Title)
	assert.Equal(t, 6, c.PackageCount)
	assert.Equal(t, constants.PalletOther, c.PackageType)
	assert.InDelta(t, 1200.0, *c.Weight, 1e-9)
}

func TestProcessReportsVendorOnExtractionFailure(t *testing.T) {
	ls := fixture(t, "access_1.txt")
	for i, l := range ls {
		if l == "Best regards" {
			ls[i] = "Kind regards"
		}
	}
	res, err := newPipeline(t).Process(ls, "a.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
	assert.Equal(t, "access", res.Vendor)
	assert.Nil(t, res.Record)
}
