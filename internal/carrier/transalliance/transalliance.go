// Package transalliance reads chartering confirmations from Transalliance TS
// Ltd. The layout varies between documents, so stops and cargo lines are
// located by scanning near their headers and any address part that cannot
// be recognised falls back to a placeholder instead of failing.
package transalliance

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/lines"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

const Name = "transalliance"

const (
	DefaultLoadingCompany  = "Loading Location"
	DefaultDeliveryCompany = "Delivery Location"
	DefaultCity            = "Unknown"

	headerScan  = 20
	dateScan    = 6
	stopScan    = 15
	addressScan = 8
	cargoScan   = 10
	contextScan = 5

	cargoPrefix = "M. nature:"
)

var Location = normalize.MustLocation("Europe/London")

var (
	refRe     = regexp.MustCompile(`(?i)^REF\.\s*:\s*([A-Z0-9]+)`)
	freightRe = regexp.MustCompile(`(?i)SHIPPING PRICE\s+([\d.,]+)\s+(EUR|USD|GBP|PLN|ZAR)`)

	contactCompanyRe = regexp.MustCompile(`(?i)^([A-Z][A-Z\s&.()/0-9]+?)\s+(.+?)\s+Contact:`)
	contactLineRe    = regexp.MustCompile(`(?i)^(.+?)\s+Contact:`)
	companyRestRe    = regexp.MustCompile(`(?i)^([A-Z][A-Z\s&.()/0-9]+?)\s+(.+)$`)
	customerAddrRe   = regexp.MustCompile(`(?i)(.+?)\s+([A-Z]{2}-\d{5})\s+(.+?)(?:\s+Contact:|$)`)

	shortDateRe   = regexp.MustCompile(`\d{2}/\d{2}/\d{2}`)
	hourRangeRe   = regexp.MustCompile(`\d{1,2}h\d{2}\s*-\s*\d{1,2}h\d{2}`)
	onWindowRe    = regexp.MustCompile(`(?i)ON:\s*(\d{2}/\d{2}/\d{2})(?:\s+(\d{1,2}h\d{2})\s*-\s*(\d{1,2}h\d{2}))?`)
	dateWindowRe  = regexp.MustCompile(`(\d{2}/\d{2}/\d{2})\s+(\d{1,2}h\d{2})\s*-\s*(\d{1,2}h\d{2})`)
	standaloneRe  = regexp.MustCompile(`(?i)^[A-Z][A-Z\s&.,()0-9]+$`)
	streetLineRe  = regexp.MustCompile(`(?i)^[A-Z0-9\s.,\-]+(?:STREET|ST|ROAD|RD|AVENUE|AVE|LANE|LN|WAY|DRIVE|DR)$`)
	postalCityRe  = regexp.MustCompile(`(?i)^(GB-[A-Z0-9\s]+\s+[A-Z\s]+|[A-Z]{2}-[\d\s]+\s+[A-Z\s]+|\d{5}\s+[A-Z\s\-]+)$`)
	plainAddrRe   = regexp.MustCompile(`(?i)^[A-Z0-9\s.,\-/]+$`)
	prefixedTail  = regexp.MustCompile(`(?i)^([A-Z]{2})-([A-Z0-9\s]+)\s+(.+)$`)
	numericTail   = regexp.MustCompile(`^(\d{5})\s+(.+)$`)
	countryPrefix = regexp.MustCompile(`^[A-Z]{2}-`)

	lmWeightRe    = regexp.MustCompile(`^(\d{1,2},\d{3})\s+(\d{5},\d{3})$`)
	countWeightRe = regexp.MustCompile(`^(\d{1,4}(?:,\d{3})*)\s+(\d{3,}(?:,\d{3})*)$`)
	weightOnlyRe  = regexp.MustCompile(`^(\d{4,}(?:,\d{3})*)$`)
	anyWeightRe   = regexp.MustCompile(`(\d{4,}(?:,\d{3})*)`)
	stopPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^([A-Z][A-Z\s&.,()0-9]+?(?:LTD|GMBH|SA|SL|BV|GROUP|COMPANY|CORP|INC|PORT|WORLD|GATEWAY)?)\s+(.+?)\s+(GB-[A-Z0-9\s]+)\s+([A-Z\s]+?)(?:\s+Contact:|$)`),
		regexp.MustCompile(`(?i)^([A-Z][A-Z\s&.,()0-9]+?(?:LTD|GMBH|SA|SL|BV|GROUP|COMPANY|CORP|INC|FRANCE)?)\s+(.+?)\s+(\d{5})\s+([A-Z\s\-]+?)(?:\s+Contact:|$)`),
		regexp.MustCompile(`(?i)^([A-Z][A-Z\s&.,()0-9]+?(?:LTD|GMBH|SA|SL|BV|GROUP|COMPANY|CORP|INC)?)\s+(.+?)\s+([A-Z]{2}-?[\d\s]+)\s+([A-Z\s\-]+?)(?:\s+Contact:|$)`),
	}
)

var excludedCompanies = map[string]bool{
	"REFERENCE": true, "INSTRUCTIONS": true, "OT": true, "LM": true,
	"LOADING": true, "DELIVERY": true, "ON": true, "CONTACT": true,
}

var companyMarkers = []string{"LTD", "GMBH", "SA", "SL", "BV", "GROUP", "COMPANY", "CORP", "INC", "PORT", "WORLD"}

var packageOverrides = map[constants.PackageType]constants.PackageType{
	constants.Carton: constants.Box,
	constants.Roll:   constants.PalletOther,
}

type Extractor struct{}

func New() Extractor { return Extractor{} }

func (Extractor) Name() string { return Name }

// MatchesFormat looks for the document title and the issuer in the first
// non-blank lines.
func (Extractor) MatchesFormat(ls []string) bool {
	head := lines.Head(ls, headerScan)
	return strings.Contains(head, "CHARTERING CONFIRMATION") &&
		strings.Contains(head, "TRANSALLIANCE TS LTD")
}

func (Extractor) Extract(raw []string, filename string) (*order.Record, error) {
	ls := lines.NonBlank(raw)

	ref, err := orderReference(ls)
	if err != nil {
		return nil, err
	}
	customer, err := extractCustomer(ls)
	if err != nil {
		return nil, err
	}
	loading, destinations, err := extractStops(ls)
	if err != nil {
		return nil, err
	}
	cargos, err := extractCargos(ls)
	if err != nil {
		return nil, err
	}

	rec := &order.Record{
		Customer:             customer,
		LoadingLocations:     loading,
		DestinationLocations: destinations,
		Cargos:               cargos,
		OrderReference:       ref,
		AttachmentFilenames:  order.AttachmentFilenames(filename),
	}
	if err := applyFreight(ls, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func orderReference(ls []string) (string, error) {
	for _, l := range ls {
		if m := refRe.FindStringSubmatch(l); m != nil {
			return m[1], nil
		}
	}
	return "", common.MalformedDocument(Name, "REF.:", "not found")
}

func applyFreight(ls []string, rec *order.Record) error {
	for _, l := range ls {
		m := freightRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		price, err := normalize.Number(m[1])
		if err != nil {
			return err
		}
		rec.FreightPrice = order.Float(price)
		rec.FreightCurrency = strings.ToUpper(m[2])
		return nil
	}
	return nil
}

// extractCustomer takes the first "<COMPANY> <address> Contact:" line.
func extractCustomer(ls []string) (order.Customer, error) {
	for _, l := range ls {
		l = strings.TrimSpace(l)
		if !strings.Contains(l, "Contact:") {
			continue
		}

		var company, addr string
		if m := contactCompanyRe.FindStringSubmatch(l); m != nil {
			company, addr = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		} else if m := contactLineRe.FindStringSubmatch(l); m != nil {
			full := strings.TrimSpace(m[1])
			company = full
			if s := companyRestRe.FindStringSubmatch(full); s != nil {
				company, addr = strings.TrimSpace(s[1]), strings.TrimSpace(s[2])
			}
		}
		if company == "" {
			continue
		}

		details := order.CompanyAddress{Company: company}
		if m := customerAddrRe.FindStringSubmatch(addr); m != nil {
			details.StreetAddress = strings.TrimSpace(m[1])
			details.PostalCode = m[2]
			details.City = strings.TrimSpace(m[3])
			details.Country = normalize.CountryISO(m[2][:2])
		}
		if len(details.City) < 2 {
			details.City = DefaultCity
		}
		return order.Customer{Side: order.SideSender, Details: details}, nil
	}
	return order.Customer{}, common.MalformedDocument(Name, "Contact:", "customer not found")
}

func extractStops(ls []string) ([]order.Location, []order.Location, error) {
	var loading, delivery []order.Location
	for idx, l := range ls {
		header := strings.TrimSpace(l)
		if header != "Loading" && header != "Delivery" {
			continue
		}
		for j := idx + 1; j < min(idx+dateScan, len(ls)); j++ {
			cand := strings.TrimSpace(ls[j])
			if !strings.Contains(cand, "ON:") && !shortDateRe.MatchString(cand) && !hourRangeRe.MatchString(cand) {
				continue
			}
			if header == "Loading" {
				loading = append(loading, parseStop(ls, j, DefaultLoadingCompany))
			} else {
				delivery = append(delivery, parseStop(ls, j, DefaultDeliveryCompany))
			}
			break
		}
	}
	if len(loading) == 0 {
		return nil, nil, common.MalformedDocument(Name, "Loading", "no loading stop")
	}
	if len(delivery) == 0 {
		return nil, nil, common.MalformedDocument(Name, "Delivery", "no delivery stop")
	}
	return loading, delivery, nil
}

func parseStop(ls []string, anchor int, defaultCompany string) order.Location {
	window := parseDateWindow(ls[anchor])

	var (
		company string
		addr    []string
	)
	for i := anchor + 1; i < min(anchor+stopScan, len(ls)); i++ {
		row := strings.TrimSpace(ls[i])
		if row == "" {
			continue
		}
		if company, addr = companyAndAddress(row, ls, i); company != "" {
			break
		}
	}

	street, postal, city := splitAddressTail(addr)
	if company == "" {
		company = defaultCompany
	}
	if len(city) < 2 {
		city = DefaultCity
	}

	ca := order.CompanyAddress{
		Company:       company,
		StreetAddress: street,
		PostalCode:    postal,
		City:          city,
	}
	if m := countryPrefix.FindString(postal); m != "" {
		ca.Country = normalize.CountryISO(m[:2])
	}
	return order.Location{CompanyAddress: ca, Time: window}
}

func companyAndAddress(row string, ls []string, i int) (string, []string) {
	for _, re := range stopPatterns {
		m := re.FindStringSubmatch(row)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if excludedCompanies[strings.ToUpper(candidate)] {
			continue
		}
		tail := strings.TrimSpace(m[3]) + " "
		if strings.HasPrefix(m[3], "GB-") || countryPrefix.MatchString(m[3]) {
			tail += strings.TrimSpace(m[4])
		} else {
			tail += strings.ReplaceAll(strings.TrimSpace(m[4]), "-", " ")
		}
		return candidate, []string{strings.TrimSpace(m[2]), tail}
	}
	if isStandaloneCompany(row) {
		return strings.TrimSpace(row), addressLines(ls, i+1)
	}
	return "", nil
}

func isStandaloneCompany(l string) bool {
	l = strings.TrimSpace(l)
	if !standaloneRe.MatchString(l) {
		return false
	}
	if len(l) > 5 {
		return true
	}
	for _, marker := range companyMarkers {
		if strings.Contains(l, marker) {
			return true
		}
	}
	return false
}

// addressLines collects street lines after a standalone company name up to
// and including the postal-code line.
func addressLines(ls []string, start int) []string {
	var out []string
	for j := start; j < min(start+addressScan, len(ls)); j++ {
		l := strings.TrimSpace(ls[j])
		switch {
		case l == "":
		case streetLineRe.MatchString(l):
			out = append(out, l)
		case postalCityRe.MatchString(l):
			return append(out, l)
		case plainAddrRe.MatchString(l) && !strings.Contains(l, "Contact:"):
			out = append(out, l)
		}
	}
	return out
}

// parseDateWindow reads "ON: dd/mm/yy [HHhMM - HHhMM]". Unreadable dates
// leave the stop without a time window.
func parseDateWindow(l string) *order.TimeWindow {
	var date, from, to string
	if m := onWindowRe.FindStringSubmatch(l); m != nil {
		date, from, to = m[1], m[2], m[3]
	} else if m := dateWindowRe.FindStringSubmatch(l); m != nil {
		date, from, to = m[1], m[2], m[3]
	} else if m := shortDateRe.FindString(l); m != "" {
		date = m
	} else {
		return nil
	}

	day, err := normalize.ParseDate(date, Location, "02/01/06")
	if err != nil {
		return nil
	}
	if from == "" {
		return normalize.Window(day, nil, nil)
	}
	f, err := normalize.ParseClock(from)
	if err != nil {
		return nil
	}
	t, err := normalize.ParseClock(to)
	if err != nil {
		return nil
	}
	return normalize.Window(day, &f, &t)
}

func splitAddressTail(addr []string) (street, postal, city string) {
	var streets []string
	for _, row := range addr {
		r := strings.TrimSpace(row)
		if m := prefixedTail.FindStringSubmatch(r); m != nil {
			postal = strings.ToUpper(m[1]) + "-" + strings.TrimSpace(m[2])
			city = strings.TrimSpace(m[3])
			continue
		}
		if m := numericTail.FindStringSubmatch(r); m != nil {
			postal = m[1]
			city = strings.ReplaceAll(strings.TrimSpace(m[2]), "-", " ")
			continue
		}
		streets = append(streets, r)
	}
	return strings.Join(streets, " "), postal, city
}

// extractCargos reads one cargo per "M. nature:" line, looking back for the
// figures row printed above it.
func extractCargos(ls []string) ([]order.Cargo, error) {
	var cargos []order.Cargo
	for i, l := range ls {
		if !strings.HasPrefix(l, cargoPrefix) {
			continue
		}
		title := strings.TrimSpace(strings.TrimPrefix(l, cargoPrefix))
		cargo := order.Cargo{
			Title:        title,
			PackageCount: 1,
			PackageType:  packageType(title),
		}

		var weight float64
		for j := i - 1; j >= max(0, i-cargoScan); j-- {
			row := strings.TrimSpace(ls[j])
			if m := lmWeightRe.FindStringSubmatch(row); m != nil {
				// loading meters and kilograms, both with three decimals
				ldm, err := normalize.Number(m[1])
				if err != nil {
					return nil, err
				}
				if weight, err = normalize.Number(m[2]); err != nil {
					return nil, err
				}
				cargo.Ldm = order.Float(ldm)
				break
			}
			if m := countWeightRe.FindStringSubmatch(row); m != nil {
				if n, _ := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); n > 0 {
					cargo.PackageCount = n
				}
				w, err := normalize.Grouped(m[2])
				if err != nil {
					return nil, err
				}
				weight = w
				break
			}
			if m := weightOnlyRe.FindStringSubmatch(row); m != nil {
				w, err := normalize.Grouped(m[1])
				if err != nil {
					return nil, err
				}
				weight = w
				break
			}
		}
		if weight == 0 {
			weight = nearbyWeight(ls, i)
		}
		cargo.Weight = order.Float(weight)
		cargos = append(cargos, cargo)
	}
	if len(cargos) == 0 {
		return nil, common.MalformedDocument(Name, cargoPrefix, "no cargo lines")
	}
	return cargos, nil
}

func nearbyWeight(ls []string, i int) float64 {
	for j := max(0, i-15); j <= min(i+contextScan, len(ls)-1); j++ {
		m := anyWeightRe.FindStringSubmatch(ls[j])
		if m == nil {
			continue
		}
		if w, err := normalize.Grouped(m[1]); err == nil && w >= 1000 && w <= 100_000_000 {
			return w
		}
	}
	return 0
}

// packageType guesses the packaging from the goods description; most
// Transalliance loads are palletised, rolls included.
func packageType(title string) constants.PackageType {
	if pt, ok := constants.PackageTypeIn(title, packageOverrides); ok {
		return pt
	}
	return constants.PalletOther
}
