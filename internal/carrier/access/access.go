// Package access reads transport orders issued by Access Logistic GmbH
// (Kramsach, AT).
package access

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/lines"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// Name identifies the vendor in logs and errors.
const Name = "access"

const (
	headerLine    = "Access Logistic GmbH, Amerling 130, A-6233 Kramsach"
	contactPrefix = "Contactperson: "
	stopSize      = 6
)

// Location is the zone printed dates are read in.
var Location = normalize.MustLocation("Europe/Vienna")

var packageTypes = constants.PackageTypeMap{
	Entries: map[string]constants.PackageType{
		"EW-Paletten": constants.PalletOther,
		"Ladung":      constants.Carton,
		"Stück":       constants.Other,
	},
	Fallback: constants.PalletOther,
}

var (
	trailerRe  = regexp.MustCompile(`^[A-Z]{2}[0-9]{3}( |$)`)
	datetimeRe = regexp.MustCompile(`^([0-9.]+) ?([0-9:]+)?-?([0-9:]+)?$`)
	address    = normalize.AddressPattern{
		Re:                regexp.MustCompile(`(?i)^(?P<company>.+?)\s*, +(?P<street>.+?)\s*, +(?P<postal>[A-Z]{1,2}-?[0-9]{4,}) +(?P<city>.+)$`),
		DigitsOnlyPostal:  true,
		CountryFromPostal: true,
	}
)

// Extractor implements the Access layout.
type Extractor struct{}

// New returns the Access extractor.
func New() Extractor { return Extractor{} }

func (Extractor) Name() string { return Name }

// MatchesFormat checks the letterhead, the "To:" block and the contact line.
func (Extractor) MatchesFormat(ls []string) bool {
	if len(ls) < 5 {
		return false
	}
	return ls[0] == headerLine &&
		ls[2] == "To:" &&
		strings.HasPrefix(ls[4], contactPrefix)
}

// Extract builds an unvalidated order record from the document lines.
func (Extractor) Extract(ls []string, filename string) (*order.Record, error) {
	doc := lines.Doc{Vendor: Name, Lines: ls}

	ref, err := doc.Offset("Tournumber:", 2)
	if err != nil {
		return nil, err
	}

	rawPrice, err := doc.Offset("Freight rate in €:", 2)
	if err != nil {
		return nil, err
	}
	price, err := normalize.Number(normalize.StripNonNumeric(rawPrice))
	if err != nil {
		return nil, err
	}

	loadingLines, err := doc.Section("Loading sequence:", "Unloading sequence:")
	if err != nil {
		return nil, err
	}
	loading, err := extractStops(loadingLines, "Loading sequence:")
	if err != nil {
		return nil, err
	}

	unloadingLines, err := doc.Section("Unloading sequence:", "Best regards")
	if err != nil {
		return nil, err
	}
	destinations, err := extractStops(unloadingLines, "Unloading sequence:")
	if err != nil {
		return nil, err
	}

	contact, err := doc.PrefixValue(contactPrefix)
	if err != nil {
		return nil, err
	}

	cargo, err := extractCargo(doc)
	if err != nil {
		return nil, err
	}

	return &order.Record{
		Customer:             Customer(contact),
		LoadingLocations:     loading,
		DestinationLocations: destinations,
		Cargos:               []order.Cargo{cargo},
		OrderReference:       strings.Trim(ref, "* "),
		TransportNumbers:     transportNumbers(ls),
		FreightPrice:         order.Float(price),
		FreightCurrency:      "EUR",
		AttachmentFilenames:  order.AttachmentFilenames(filename),
	}, nil
}

// Customer is the fixed Access identity with the document's contact person.
func Customer(contact string) order.Customer {
	return order.Customer{
		Side: order.SideNone,
		Details: order.CompanyAddress{
			Company:       "Access Logistic GmbH",
			StreetAddress: "Amerling 130",
			City:          "Kramsach",
			PostalCode:    "6233",
			Country:       order.String("AT"),
			VatCode:       "ATU74076812",
			ContactPerson: strings.TrimSpace(contact),
		},
	}
}

// transportNumbers joins the truck plate and, when printed before the
// vehicle type, the trailer plate.
func transportNumbers(ls []string) string {
	truckIdx := lines.FindExact(ls, "Truck, trailer:")
	if truckIdx < 0 {
		return ""
	}
	truck, _ := lines.At(ls, truckIdx+2)
	parts := []string{strings.TrimSpace(truck)}

	vehicleIdx := lines.FindExact(ls, "Vehicle type:")
	if vehicleIdx > truckIdx {
		trailerIdx := lines.FindMatch(lines.Slice(ls, 0, vehicleIdx), truckIdx+1, trailerRe)
		if trailerIdx >= 0 {
			parts = append(parts, strings.SplitN(ls[trailerIdx], " ", 2)[0])
		}
	}
	return lines.JoinNonEmpty(parts, " / ")
}

func extractStops(section []string, anchor string) ([]order.Location, error) {
	var out []order.Location
	for _, chunk := range lines.Chunk(section, stopSize) {
		if len(lines.NonBlank(chunk)) == 0 {
			continue
		}
		if len(chunk) < 5 {
			return nil, common.MalformedDocument(Name, anchor, "truncated stop block")
		}

		window, err := parseWindow(strings.TrimSpace(chunk[2]))
		if err != nil {
			return nil, err
		}
		addr, _, ok := address.Parse(strings.TrimSpace(chunk[4]))
		if !ok {
			return nil, common.MalformedDocument(Name, anchor, "unparseable address "+chunk[4])
		}
		out = append(out, order.Location{CompanyAddress: addr, Time: window})
	}
	if len(out) == 0 {
		return nil, common.MalformedDocument(Name, anchor, "no stops")
	}
	return out, nil
}

// parseWindow reads "01.03.2024 08:00-10:00", "01.03.2024 08:00" or a bare date.
func parseWindow(s string) (*order.TimeWindow, error) {
	m := datetimeRe.FindStringSubmatch(s)
	if m == nil {
		return nil, common.DateParseFailure(s)
	}
	day, err := normalize.ParseDate(m[1], Location, "02.01.2006", "2.1.2006", "02.01.06")
	if err != nil {
		return nil, err
	}
	var from, to *normalize.Clock
	if m[2] != "" {
		c, err := normalize.ParseClock(m[2])
		if err != nil {
			return nil, err
		}
		from = &c
	}
	if m[3] != "" {
		c, err := normalize.ParseClock(m[3])
		if err != nil {
			return nil, err
		}
		to = &c
	}
	return normalize.Window(day, from, to), nil
}

func extractCargo(doc lines.Doc) (order.Cargo, error) {
	title, err := doc.Offset("Load:", 1)
	if err != nil {
		return order.Cargo{}, err
	}
	amount, err := doc.Offset("Amount:", 1)
	if err != nil {
		return order.Cargo{}, err
	}
	count, err := normalize.Count(normalize.StripNonNumeric(amount))
	if err != nil {
		return order.Cargo{}, err
	}
	unit, err := doc.Offset("Unit:", 1)
	if err != nil {
		return order.Cargo{}, err
	}
	rawWeight, err := doc.Offset("Weight:", 1)
	if err != nil {
		return order.Cargo{}, err
	}
	weight, err := normalize.Uncomma(normalize.StripNonNumeric(rawWeight))
	if err != nil {
		return order.Cargo{}, err
	}

	var ldm *float64
	if i := lines.FindExact(doc.Lines, "Loadingmeter:"); i >= 0 {
		raw, _ := lines.At(doc.Lines, i+1)
		if ldm, err = normalize.Uncomma(normalize.StripNonNumeric(raw)); err != nil {
			return order.Cargo{}, err
		}
	}

	refs := []string{
		referenceValue(doc.Lines, "Loading reference:"),
		referenceValue(doc.Lines, "Unloading reference:"),
	}

	return order.Cargo{
		Title:        strings.TrimSpace(title),
		Number:       lines.JoinNonEmpty(refs, "; "),
		PackageCount: count,
		PackageType:  packageTypes.Lookup(unit),
		Weight:       weight,
		Ldm:          ldm,
	}, nil
}

func referenceValue(ls []string, prefix string) string {
	i := lines.FindPrefix(ls, prefix)
	if i < 0 {
		return ""
	}
	parts := strings.SplitN(ls[i], ": ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
