// Package delamode reads Lithuanian transport orders ("Pervežimo užsakymas")
// issued by Delamode Baltics, UAB. A document lists one block per load; each
// block names its own pickup and drop-off address, and identical addresses
// are merged into one stop referencing several cargo positions.
package delamode

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/lines"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

const Name = "delamode"

const (
	referencePrefix = "Pervežimo užsakymas Nr."
	issuer          = "Delamode Baltics, UAB"

	freightLabel   = "Sutarta kaina be PVM:"
	payTermLabel   = "Apmokėjimo terminas:"
	transportLabel = "Priekaba: (none)"

	loadPrefix        = "Krovinio ID:"
	loadIDPrefix      = "Krovinio ID: "
	loadingNoPrefix   = "Pakrovimo nr.: "
	unloadingNoPrefix = "Iškrovimo nr.: "
	countPrefix       = "Kiekis: "
	unitPrefix        = "Pakavimo vienetai: "
	weightPrefix      = "Svoris: "
	volumePrefix      = "Tūris: "
	dimsPrefix        = "Išmatavimai: "

	pickupAddressPrefix  = "Pasikrovimo adresas: "
	pickupDatePrefix     = "Pakrovimo data: "
	dropoffAddressPrefix = "Pristatymo adresas: "
	dropoffDatePrefix    = "Iškrovimo data: "
)

var Location = normalize.MustLocation("Europe/Vilnius")

var packageTypes = constants.PackageTypeMap{
	Entries:  map[string]constants.PackageType{"Pcs": constants.Other},
	Fallback: constants.Other,
}

var (
	address = normalize.AddressPattern{
		Re: regexp.MustCompile(`(?i)^(?:(?P<company>.+?),+ )?(?:(?P<street>.+?)?,+ )?(?:[A-Z]{1,2}[ \-]*)?(?P<postal>[0-9 ]{4,}) (?P<city>[^,]+?),+ (?P<country>.+?)(?:,+ (?P<time>.+?))?$`),
	}
	timeRe = regexp.MustCompile(`([0-9]{1,2}:[0-9]{2})[^0-9]*([0-9]{1,2}:[0-9]{2})?`)
)

var dateLayouts = []string{"2006-01-02", "2006.01.02", "02.01.2006"}

type Extractor struct{}

func New() Extractor { return Extractor{} }

func (Extractor) Name() string { return Name }

func (Extractor) MatchesFormat(ls []string) bool {
	if len(ls) < 4 {
		return false
	}
	return strings.HasPrefix(ls[0], referencePrefix) &&
		ls[2] == "Vežėjas:" &&
		ls[3] == "Pastabos:" &&
		lines.FindExact(ls, issuer) >= 0
}

func (Extractor) Extract(ls []string, filename string) (*order.Record, error) {
	doc := lines.Doc{Vendor: Name, Lines: ls}

	head, err := doc.Line(0, referencePrefix)
	if err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(strings.TrimPrefix(head, referencePrefix))
	if ref == "" {
		return nil, common.MalformedDocument(Name, referencePrefix, "empty order number")
	}

	freightIdx, err := doc.Exact(freightLabel)
	if err != nil {
		return nil, err
	}
	freightLine, err := doc.Line(freightIdx+2, freightLabel)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(freightLine)
	if len(fields) != 2 {
		return nil, common.MalformedDocument(Name, freightLabel, "expected \"<price> <currency>\", got "+freightLine)
	}
	price, err := normalize.Number(fields[0])
	if err != nil {
		return nil, err
	}

	payTermIdx, err := doc.Exact(payTermLabel)
	if err != nil {
		return nil, err
	}
	cargos, loading, destinations, err := extractLoads(lines.Slice(ls, freightIdx+4, payTermIdx))
	if err != nil {
		return nil, err
	}

	var transport string
	if i := lines.FindExact(ls, transportLabel); i >= 0 {
		transport, _ = lines.At(ls, i+2)
	}

	return &order.Record{
		Customer:             Customer(),
		LoadingLocations:     loading,
		DestinationLocations: destinations,
		Cargos:               cargos,
		OrderReference:       ref,
		TransportNumbers:     strings.TrimSpace(transport),
		FreightPrice:         order.Float(price),
		FreightCurrency:      strings.ToUpper(fields[1]),
		AttachmentFilenames:  order.AttachmentFilenames(filename),
	}, nil
}

func Customer() order.Customer {
	return order.Customer{
		Side: order.SideNone,
		Details: order.CompanyAddress{
			Company:       issuer,
			StreetAddress: "Naugarduko g. 98",
			PostalCode:    "03160",
			City:          "Vilnius",
			Country:       order.String("LT"),
			CompanyCode:   "300614485",
			VatCode:       "LT100002783011",
		},
	}
}

// extractLoads splits the cargo block at every load heading. Each load
// contributes one cargo and references its pickup and drop-off stops.
func extractLoads(block []string) ([]order.Cargo, []order.Location, []order.Location, error) {
	headings := lines.AllPrefix(block, loadPrefix)
	if len(headings) == 0 {
		return nil, nil, nil, common.MalformedDocument(Name, loadPrefix, "no loads")
	}

	var (
		cargos       []order.Cargo
		pickups      normalize.LocationMerger
		destinations normalize.LocationMerger
	)
	for i, start := range headings {
		end := len(block)
		if i+1 < len(headings) {
			end = headings[i+1]
		}
		part := block[start:end]

		cargo, err := extractCargo(part)
		if err != nil {
			return nil, nil, nil, err
		}
		cargos = append(cargos, cargo)

		origin, err := extractStop(part, pickupAddressPrefix, pickupDatePrefix)
		if err != nil {
			return nil, nil, nil, err
		}
		origin.CompanyAddress.SubcargoIndices = []int{i}
		pickups.Add(origin)

		dest, err := extractStop(part, dropoffAddressPrefix, dropoffDatePrefix)
		if err != nil {
			return nil, nil, nil, err
		}
		dest.CompanyAddress.SubcargoIndices = []int{i}
		destinations.Add(dest)
	}
	return cargos, pickups.Locations(), destinations.Locations(), nil
}

func extractCargo(part []string) (order.Cargo, error) {
	value := func(prefix string) (string, bool) {
		i := lines.FindPrefix(part, prefix)
		if i < 0 {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(part[i], prefix)), true
	}
	// second token of "Svoris: 1200 kg"
	measure := func(prefix string) (*float64, error) {
		i := lines.FindPrefix(part, prefix)
		if i < 0 {
			return nil, nil
		}
		tokens := strings.Fields(part[i])
		if len(tokens) < 2 {
			return nil, nil
		}
		return normalize.Uncomma(tokens[1])
	}

	var cargo order.Cargo
	cargo.Number, _ = value(loadIDPrefix)

	load, _ := value(loadingNoPrefix)
	unload, _ := value(unloadingNoPrefix)
	cargo.Title = lines.JoinNonEmpty([]string{load, unload}, "; ")

	count, _ := value(countPrefix)
	n, err := normalize.Count(count)
	if err != nil {
		return order.Cargo{}, err
	}
	cargo.PackageCount = n

	unit, _ := value(unitPrefix)
	cargo.PackageType = packageTypes.Lookup(unit)

	if cargo.Weight, err = measure(weightPrefix); err != nil {
		return order.Cargo{}, err
	}
	if cargo.Volume, err = measure(volumePrefix); err != nil {
		return order.Cargo{}, err
	}

	if dims, ok := value(dimsPrefix); ok {
		d, found, err := normalize.ParseDimensions(dims)
		if err != nil {
			return order.Cargo{}, err
		}
		if found {
			cargo.PkgWidth = order.Float(d.Width)
			cargo.PkgLength = order.Float(d.Length)
			cargo.PkgHeight = order.Float(d.Height)
		}
	}
	return cargo, nil
}

// extractStop joins the address lines that follow addressPrefix up to the
// next blank line and combines the date line with the address time slot.
func extractStop(part []string, addressPrefix, datePrefix string) (order.Location, error) {
	i := lines.FindPrefix(part, addressPrefix)
	if i < 0 {
		return order.Location{}, common.MalformedDocument(Name, addressPrefix, "not found")
	}
	var pieces []string
	for ; i < len(part) && strings.TrimSpace(part[i]) != ""; i++ {
		pieces = append(pieces, strings.TrimSpace(strings.Replace(part[i], addressPrefix, "", 1)))
	}
	line := strings.Join(pieces, " ")

	addr, extra, ok := address.Parse(line)
	if !ok {
		return order.Location{}, common.MalformedDocument(Name, addressPrefix, "unparseable address "+line)
	}

	j := lines.FindPrefix(part, datePrefix)
	if j < 0 {
		return order.Location{}, common.MalformedDocument(Name, datePrefix, "not found")
	}
	window, err := parseWindow(strings.TrimPrefix(part[j], datePrefix), extra["time"], Location)
	if err != nil {
		return order.Location{}, err
	}
	return order.Location{CompanyAddress: addr, Time: window}, nil
}

// parseWindow reads a date that may carry its own clock ("2024-03-01 08:00")
// or takes the clock range from slot ("8:00-16:00").
func parseWindow(date, slot string, loc *time.Location) (*order.TimeWindow, error) {
	date = strings.TrimSpace(date)
	source := slot
	if idx := timeRe.FindStringIndex(date); idx != nil {
		source = date[idx[0]:]
		date = strings.TrimSpace(date[:idx[0]])
	}

	day, err := normalize.ParseDate(date, loc, dateLayouts...)
	if err != nil {
		return nil, err
	}

	m := timeRe.FindStringSubmatch(source)
	if m == nil {
		return normalize.Window(day, nil, nil), nil
	}
	from, err := normalize.ParseClock(m[1])
	if err != nil {
		return nil, err
	}
	var to *normalize.Clock
	if m[2] != "" {
		c, err := normalize.ParseClock(m[2])
		if err != nil {
			return nil, err
		}
		to = &c
	}
	return normalize.Window(day, &from, to), nil
}
