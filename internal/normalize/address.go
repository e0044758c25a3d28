package normalize

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// AddressPattern splits a one-line address with a vendor-specific regex
// using named groups: company, street, postal, city and country. Any other
// named group is returned to the caller as an extra.
type AddressPattern struct {
	Re *regexp.Regexp
	// DigitsOnlyPostal keeps only the digits of the postal group.
	DigitsOnlyPostal bool
	// CountryFromPostal resolves the country from the letters of the postal
	// group ("A-6233" -> AT) when there is no country group.
	CountryFromPostal bool
}

// Parse applies the pattern. ok is false when the line does not match.
func (p AddressPattern) Parse(line string) (addr order.CompanyAddress, extra map[string]string, ok bool) {
	m := p.Re.FindStringSubmatch(line)
	if m == nil {
		return order.CompanyAddress{}, nil, false
	}
	groups := make(map[string]string, len(m))
	for i, name := range p.Re.SubexpNames() {
		if name != "" {
			groups[name] = strings.TrimSpace(m[i])
		}
	}

	addr.Company = groups["company"]
	addr.Title = groups["company"]
	addr.StreetAddress = groups["street"]
	addr.City = groups["city"]

	postal := groups["postal"]
	switch {
	case groups["country"] != "":
		addr.Country = CountryISO(groups["country"])
	case p.CountryFromPostal:
		addr.Country = CountryISO(Letters(postal))
	}
	if p.DigitsOnlyPostal {
		postal = Digits(postal)
	}
	addr.PostalCode = postal

	extra = make(map[string]string)
	for k, v := range groups {
		switch k {
		case "company", "street", "postal", "city", "country":
		default:
			extra[k] = v
		}
	}
	return addr, extra, true
}
