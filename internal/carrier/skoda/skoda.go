// Package skoda reads loading lists ("NÁLOŽNÍ LIST") printed by Škoda Auto.
// The layout is positional: most header fields sit on fixed line numbers.
package skoda

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/lines"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

const Name = "skoda"

const (
	datePrefix     = "DATUM: "
	titleLine      = "NÁLOŽNÍ LIST / VERLADESCHEIN / LOADING LIST"
	customerHeader = "ODBĚRATEL / ABNEHMER / CUSTOMER NO."
	brandPrefix    = "Š k o d a"
	nettoLabel     = "NETTO"
	matMarker      = "X"

	customerNumberLine = 5
	consigneeLine      = 7
	streetPostalLine   = 9
	cityCountryLine    = 10
	referenceLine      = 17
	brandLine          = 19
)

var Location = normalize.MustLocation("Europe/Prague")

const numberTitle = `([\p{L}\p{N}_]+?)\s+(.*?)`

var (
	dateRe         = regexp.MustCompile(`DATUM: ([0-9.]+)`)
	streetPostalRe = regexp.MustCompile(`^(.*?),?\s*((?:[A-Z]{2})?[- ]*[0-9-]{4,}?)$`)
	cityCountryRe  = regexp.MustCompile(`^(.*?)\s+([\p{L}\p{N}_]+)$`)
	dividerRe      = regexp.MustCompile(`^_+$`)
	numberTitleRe  = regexp.MustCompile(`^` + numberTitle + `$`)
	dimsRe         = regexp.MustCompile(`^` + normalize.DimsPattern + `$`)
	joinedRe       = regexp.MustCompile(`^(` + numberTitle + `)\s+(` + normalize.DimsPattern + `)$`)
)

type Extractor struct{}

func New() Extractor { return Extractor{} }

func (Extractor) Name() string { return Name }

func (Extractor) MatchesFormat(ls []string) bool {
	if len(ls) <= brandLine {
		return false
	}
	return strings.HasPrefix(ls[0], datePrefix) &&
		ls[2] == titleLine &&
		ls[4] == customerHeader &&
		strings.HasPrefix(ls[brandLine], brandPrefix)
}

func (Extractor) Extract(ls []string, filename string) (*order.Record, error) {
	doc := lines.Doc{Vendor: Name, Lines: ls}
	if len(ls) <= brandLine {
		return nil, common.MalformedDocument(Name, brandPrefix, "document too short")
	}

	m, err := doc.Match(dateRe, ls[0], datePrefix)
	if err != nil {
		return nil, err
	}
	printed, err := normalize.ParseDate(m[1], Location, "02.01.2006", "2.1.2006")
	if err != nil {
		return nil, err
	}
	// goods are collected the day after the list is printed
	pickup := normalize.Window(printed.AddDate(0, 0, 1), nil, nil)

	customer := Customer()
	consignee, err := consigneeAddress(doc, ls[consigneeLine], ls[streetPostalLine], ls[cityCountryLine])
	if err != nil {
		return nil, err
	}

	cargos, err := extractCargos(doc)
	if err != nil {
		return nil, err
	}

	return &order.Record{
		Customer: customer,
		LoadingLocations: []order.Location{{
			CompanyAddress: customer.Details,
			Time:           pickup,
		}},
		DestinationLocations: []order.Location{{CompanyAddress: consignee}},
		Cargos:               cargos,
		OrderReference:       strings.TrimSpace(ls[referenceLine]),
		CustomerNumber:       strings.TrimSpace(ls[customerNumberLine]),
		AttachmentFilenames:  order.AttachmentFilenames(filename),
	}, nil
}

func Customer() order.Customer {
	return order.Customer{
		Side: order.SideSender,
		Details: order.CompanyAddress{
			Company:       "Škoda Auto, a.s.",
			StreetAddress: "tř. Václava Klementa 869",
			City:          "Mladá Boleslav II",
			PostalCode:    "293 01",
			VatCode:       "CZ00177041",
			CompanyCode:   "643408312",
		},
	}
}

func consigneeAddress(doc lines.Doc, company, streetPostal, cityCountry string) (order.CompanyAddress, error) {
	sp, err := doc.Match(streetPostalRe, strings.TrimSpace(streetPostal), "consignee street")
	if err != nil {
		return order.CompanyAddress{}, err
	}
	cc, err := doc.Match(cityCountryRe, strings.TrimSpace(cityCountry), "consignee city")
	if err != nil {
		return order.CompanyAddress{}, err
	}
	return order.CompanyAddress{
		Company:       strings.TrimSpace(company),
		StreetAddress: strings.TrimSpace(sp[1]),
		PostalCode:    strings.TrimSpace(sp[2]),
		City:          strings.TrimSpace(cc[1]),
		Country:       normalize.CountryISO(cc[2]),
	}, nil
}

// extractCargos walks the item table between the two underscore dividers.
// An item is a "number title" line, a dimensions line (or both on one
// line), an optional X marker and the weight, followed by one spare line.
func extractCargos(doc lines.Doc) ([]order.Cargo, error) {
	ls := doc.Lines
	start := lines.FindMatch(ls, 0, dividerRe)
	if start < 1 || ls[start-1] != nettoLabel {
		return nil, common.MalformedDocument(Name, nettoLabel, "cargo table header not found")
	}
	end := lines.FindMatch(ls, start+1, dividerRe)
	if end < 0 {
		return nil, common.MalformedDocument(Name, nettoLabel, "cargo table not closed")
	}

	var cargos []order.Cargo
	for i := start + 1; i < end; {
		skip := 0
		head, err := doc.Line(i, nettoLabel)
		if err != nil {
			return nil, err
		}

		var ntLine, dimsLine string
		if m := joinedRe.FindStringSubmatch(head); m != nil {
			ntLine, dimsLine = m[1], m[4]
			skip--
		} else {
			ntLine = head
			if dimsLine, err = doc.Line(i+1, nettoLabel); err != nil {
				return nil, err
			}
		}

		cargo := order.Cargo{
			Title:        strings.TrimSpace(ntLine),
			PackageCount: 1,
			PackageType:  constants.Other,
		}
		if nt := numberTitleRe.FindStringSubmatch(strings.TrimSpace(ntLine)); nt != nil {
			cargo.Number, cargo.Title = nt[1], nt[2]
		}
		if d := dimsRe.FindStringSubmatch(strings.TrimSpace(dimsLine)); d != nil {
			dims, err := normalize.DimensionsFromCentimeters(d[1], d[2], d[3])
			if err != nil {
				return nil, err
			}
			cargo.PkgWidth = order.Float(dims.Width)
			cargo.PkgLength = order.Float(dims.Length)
			cargo.PkgHeight = order.Float(dims.Height)
		}

		marker, err := doc.Line(i+2+skip, nettoLabel)
		if err != nil {
			return nil, err
		}
		if marker == matMarker {
			skip++
		}
		weight, err := doc.Line(i+2+skip, nettoLabel)
		if err != nil {
			return nil, err
		}
		w, err := normalize.Number(weight)
		if err != nil {
			return nil, err
		}
		cargo.Weight = order.Float(w)

		cargos = append(cargos, cargo)
		i += 4 + skip
	}
	if len(cargos) == 0 {
		return nil, common.MalformedDocument(Name, nettoLabel, "no cargo items")
	}
	return cargos, nil
}
