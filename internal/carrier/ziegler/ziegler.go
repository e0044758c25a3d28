// Package ziegler reads booking instructions from Ziegler UK Ltd. Like
// Transalliance the layout is loose: stops are found from their
// "Collection"/"Delivery" lines and unreadable parts fall back to defaults.
package ziegler

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

const Name = "ziegler"

const (
	Issuer                 = "ZIEGLER UK LTD"
	DefaultCity            = "N/A"
	DefaultLoadingCompany  = "Loading Location"
	DefaultDeliveryCompany = "Delivery Location"
	DefaultCargoTitle      = "Palletized Cargo"
	DefaultCurrency        = "EUR"

	headerScan   = 15
	dateLookhead = 3
	stopScan     = 6
	weightRadius = 2

	dateLayout = "02/01/2006"
)

var Location = normalize.MustLocation("Europe/London")

var stopNoise = []string{"Collection", "Delivery", "REF", "WH"}

var (
	refRe          = regexp.MustCompile(`^(\d{6,11})\s+[\d,.]+`)
	priceRe        = regexp.MustCompile(`(\d{6,11})\s+([\d,.]+)`)
	currencyRe     = regexp.MustCompile(`(?i)\b(EUR|GBP|USD|CHF|PLN|CZK|HUF)\b`)
	foreignCurRe   = regexp.MustCompile(`(?i)\b(GBP|USD|CHF|PLN|CZK|HUF)\b`)
	ukPostcodeTail = regexp.MustCompile(`^(.+)\s+([A-Z]{1,2}\d{1,2}\s+\d[A-Z]{2})$`)

	collectionRangeRe = regexp.MustCompile(`Collection\s+(\d{4}-\d{4})\s+(\d{2}/\d{2}/\d{4})`)
	collectionWordRe  = regexp.MustCompile(`Collection\s+(\d{4}-\w+)\s+(\d{2}/\d{2}/\d{4})`)
	collectionOpenRe  = regexp.MustCompile(`Collection\s+(\d{4}-\d+\w+)`)
	deliveryDateRe    = regexp.MustCompile(`Delivery\s+.*?(\d{2}/\d{2}/\d{4})`)
	deliveryRe        = regexp.MustCompile(`Delivery\s+`)
	dateRe            = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)

	companyAddrRe  = regexp.MustCompile(`(?i)^([A-Z][A-Z\s&()/C]+(?:LTD|LIMITED|CO|INC|GMBH|SAS|SA|LOGISTICS|SOLUTIONS))\s+(.+)$`)
	companyOnlyRe  = regexp.MustCompile(`(?i)^([A-Z][A-Z\s&()/C]+(?:LTD|LIMITED|CO|INC|GMBH|SAS|SA|LOGISTICS|SOLUTIONS))$`)
	companyWordsRe = regexp.MustCompile(`(?i)^([A-Z][A-Z\s&()/]{8,}?)$`)
	streetWordRe   = regexp.MustCompile(`^(ROAD|STREET|AVENUE|LANE|WAY|HALL|INDUSTRIAL|ESTATE|PARK|CROSSING)`)
	nextCompanyRe  = regexp.MustCompile(`^[A-Z][A-Z\s&()/]+(?:LTD|LIMITED|CO|INC)`)
	bareDateRe     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	cityPostalRe   = regexp.MustCompile(`^([A-Z]+(?:\s+[A-Z]+)*),\s*([A-Z0-9]+\s+[A-Z0-9]+)$`)
	streetCityRe   = regexp.MustCompile(`^(.+)\s+([A-Z]+(?:\s+[A-Z]+)*),\s*([A-Z0-9]+\s+[A-Z0-9]+)$`)
	ukPostalCityRe = regexp.MustCompile(`^(.+?)\s+([A-Z0-9]{2,4}\s+[A-Z0-9]{3})\s+([A-Z\s]+)$`)
	fivePostalRe   = regexp.MustCompile(`^(.+?\s+)?(\d{5})\s+([A-Z\s]+)$`)
	frPostalRe     = regexp.MustCompile(`^([A-Z\s]+),\s*FR(\d{5})$`)
	hhmmRangeRe    = regexp.MustCompile(`(\d{4})-(\d{4})`)
	hhmmToPMRe     = regexp.MustCompile(`(?i)(\d{4})-(\d+)(pm)`)

	palletsRe     = regexp.MustCompile(`(?i)(\d+)\s+PALLETS?`)
	palletCountRe = regexp.MustCompile(`(?i)\s*\d+\s+PALLETS?`)
	refPalletsRe  = regexp.MustCompile(`(?i)REF\s+\d+\s+PALLETS?\s+REF\s+([A-Z0-9]+)`)
	refRefRe      = regexp.MustCompile(`(?i)REF\s+REF\s+([A-Z0-9]+)`)
	refWordRe     = regexp.MustCompile(`(?i)REF\s+([A-Z0-9]+)`)
	whWordRe      = regexp.MustCompile(`(?i)WH\s+([A-Z0-9]+)`)
	codeRe        = regexp.MustCompile(`(?i)([A-Z0-9]{3,})`)
	kgRe          = regexp.MustCompile(`(?i)(\d{1,4}(?:,\d{3})*(?:\.\d+)?)\s*KG`)
	weightLabelRe = regexp.MustCompile(`(?i)(?:WEIGHT|WT):\s*(\d{1,4}(?:,\d{3})*(?:\.\d+)?)`)
)

// Ziegler bookings count cartons as boxes.
var packageOverrides = map[constants.PackageType]constants.PackageType{
	constants.Carton: constants.Box,
}

type Extractor struct{}

func New() Extractor { return Extractor{} }

func (Extractor) Name() string { return Name }

func (Extractor) MatchesFormat(ls []string) bool {
	head := lines.Head(ls, headerScan)
	return strings.Contains(head, "BOOKING INSTRUCTION") &&
		strings.Contains(head, Issuer)
}

func (Extractor) Extract(raw []string, filename string) (*order.Record, error) {
	ls := lines.NonBlank(raw)

	ref, err := orderReference(ls)
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
	price, currency, err := freight(ls)
	if err != nil {
		return nil, err
	}

	return &order.Record{
		Customer:             extractCustomer(ls),
		LoadingLocations:     loading,
		DestinationLocations: destinations,
		Cargos:               cargos,
		OrderReference:       ref,
		FreightPrice:         price,
		FreightCurrency:      currency,
		AttachmentFilenames:  order.AttachmentFilenames(filename),
	}, nil
}

func orderReference(ls []string) (string, error) {
	for _, l := range ls {
		if m := refRe.FindStringSubmatch(l); m != nil {
			return m[1], nil
		}
	}
	return "", common.MalformedDocument(Name, "reference", "no reference and price line")
}

// freight reads the price printed after the reference. The currency is the
// one on that line, else the first non-euro code in the document.
func freight(ls []string) (*float64, string, error) {
	var price *float64
	currency := DefaultCurrency
	for _, l := range ls {
		m := priceRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		p, err := normalize.Grouped(m[2])
		if err != nil {
			return nil, "", err
		}
		price = order.Float(p)
		if c := currencyRe.FindStringSubmatch(l); c != nil {
			currency = strings.ToUpper(c[1])
		}
		break
	}
	if currency == DefaultCurrency {
		for _, l := range ls {
			if c := foreignCurRe.FindStringSubmatch(l); c != nil {
				currency = strings.ToUpper(c[1])
				break
			}
		}
	}
	return price, currency, nil
}

// extractCustomer reads the line carrying the issuer name and the UK
// address line under it.
func extractCustomer(ls []string) order.Customer {
	details := order.CompanyAddress{Company: Issuer}
	for i, l := range lines.Slice(ls, 0, headerScan) {
		l = strings.TrimSpace(l)
		if !strings.Contains(l, Issuer) {
			continue
		}
		if rest := strings.TrimSpace(strings.Replace(l, Issuer, "", 1)); rest != "" {
			details.Company = rest
		}
		next, ok := lines.At(ls, i+1)
		if !ok {
			break
		}
		m := ukPostcodeTail.FindStringSubmatch(strings.TrimSpace(next))
		if m == nil {
			break
		}
		before := strings.TrimSpace(m[1])
		details.PostalCode = strings.TrimSpace(m[2])
		details.Country = order.String("GB")
		if parts := strings.Split(before, ","); len(parts) >= 2 {
			details.StreetAddress = strings.TrimSpace(parts[0])
			details.City = strings.TrimSpace(parts[1])
		} else if words := strings.Split(before, " "); len(words) >= 3 {
			details.StreetAddress = strings.Join(words[:2], " ")
			details.City = strings.Join(words[2:], " ")
		} else {
			details.StreetAddress = before
		}
		break
	}
	if details.City == "" {
		details.City = DefaultCity
	}
	return order.Customer{Side: order.SideSender, Details: details}
}

func extractStops(ls []string) ([]order.Location, []order.Location, error) {
	var loading, delivery []order.Location
	for idx, l := range ls {
		if strings.Contains(l, "Collection") {
			switch {
			case collectionRangeRe.MatchString(l):
				m := collectionRangeRe.FindStringSubmatch(l)
				loading = append(loading, parseStop(ls, idx, DefaultLoadingCompany, m[1], m[2]))
			case collectionWordRe.MatchString(l):
				m := collectionWordRe.FindStringSubmatch(l)
				loading = append(loading, parseStop(ls, idx, DefaultLoadingCompany, m[1], m[2]))
			case collectionOpenRe.MatchString(l):
				m := collectionOpenRe.FindStringSubmatch(l)
				if date := dateAfter(ls, idx); date != "" {
					loading = append(loading, parseStop(ls, idx, DefaultLoadingCompany, m[1], date))
				}
			}
		}
		if strings.Contains(l, "Delivery") {
			if m := deliveryDateRe.FindStringSubmatch(l); m != nil {
				delivery = append(delivery, parseStop(ls, idx, DefaultDeliveryCompany, "", m[1]))
			} else if deliveryRe.MatchString(l) {
				if date := dateAfter(ls, idx); date != "" {
					delivery = append(delivery, parseStop(ls, idx, DefaultDeliveryCompany, "", date))
				}
			}
		}
	}
	if len(loading) == 0 {
		return nil, nil, common.MalformedDocument(Name, "Collection", "no collection stop")
	}
	if len(delivery) == 0 {
		return nil, nil, common.MalformedDocument(Name, "Delivery", "no delivery stop")
	}
	return loading, delivery, nil
}

func dateAfter(ls []string, idx int) string {
	for j := idx + 1; j < min(idx+dateLookhead, len(ls)); j++ {
		if m := dateRe.FindStringSubmatch(ls[j]); m != nil {
			return m[1]
		}
	}
	return ""
}

func isStopNoise(l string) bool {
	for _, w := range stopNoise {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

// parseStop takes the first company-looking line under the stop header and
// at most one address line after it.
func parseStop(ls []string, anchor int, defaultCompany, slot, date string) order.Location {
	var (
		company string
		addr    []string
	)
	for i := anchor + 1; i < min(anchor+stopScan, len(ls)); i++ {
		row := strings.TrimSpace(ls[i])
		if row == "" || isStopNoise(row) {
			continue
		}
		if m := companyAddrRe.FindStringSubmatch(row); m != nil {
			company = strings.TrimSpace(m[1])
			addr = append(addr, strings.TrimSpace(m[2]))
		} else if m := companyOnlyRe.FindStringSubmatch(row); m != nil {
			company = strings.TrimSpace(m[1])
		} else if m := companyWordsRe.FindStringSubmatch(row); m != nil {
			if candidate := strings.TrimSpace(m[1]); !streetWordRe.MatchString(candidate) {
				company = candidate
			}
		}
		if company == "" {
			continue
		}
		if next, ok := lines.At(ls, i+1); ok {
			next = strings.TrimSpace(next)
			if next != "" && !isStopNoise(next) && !nextCompanyRe.MatchString(next) {
				addr = append(addr, next)
			}
		}
		break
	}

	street, postal, city := splitAddressTail(addr)
	if company == "" {
		company = defaultCompany
	}
	if len(city) < 2 {
		city = DefaultCity
	}
	if bareDateRe.MatchString(street) {
		street = ""
	}

	return order.Location{
		CompanyAddress: order.CompanyAddress{
			Company:       company,
			StreetAddress: street,
			PostalCode:    postal,
			City:          city,
		},
		Time: parseDateTime(date, slot),
	}
}

// parseDateTime reads "dd/mm/yyyy" with an optional "HHMM-HHMM" or
// "HHMM-Hpm" slot. An unreadable date leaves the stop without a window.
func parseDateTime(date, slot string) *order.TimeWindow {
	day, err := normalize.ParseDate(date, Location, dateLayout)
	if err != nil {
		return nil
	}
	if m := hhmmRangeRe.FindStringSubmatch(slot); m != nil {
		from, errFrom := normalize.ParseClock(m[1])
		to, errTo := normalize.ParseClock(m[2])
		if errFrom == nil && errTo == nil {
			return normalize.Window(day, &from, &to)
		}
	}
	if m := hhmmToPMRe.FindStringSubmatch(slot); m != nil {
		from, errFrom := normalize.ParseClock(m[1])
		to, errTo := normalize.ParseClock(m[2] + m[3])
		if errFrom == nil && errTo == nil {
			return normalize.Window(day, &from, &to)
		}
	}
	return normalize.Window(day, nil, nil)
}

func splitAddressTail(addr []string) (street, postal, city string) {
	var streets []string
	for _, row := range addr {
		r := strings.TrimSpace(row)
		if m := cityPostalRe.FindStringSubmatch(r); m != nil {
			city, postal = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			continue
		}
		if m := streetCityRe.FindStringSubmatch(r); m != nil {
			streets = append(streets, strings.TrimSpace(m[1]))
			city, postal = strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
			continue
		}
		if m := ukPostalCityRe.FindStringSubmatch(r); m != nil {
			streets = append(streets, strings.TrimSpace(m[1]))
			postal, city = strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
			continue
		}
		if m := fivePostalRe.FindStringSubmatch(r); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				streets = append(streets, s)
			}
			postal, city = m[2], strings.TrimSpace(m[3])
			continue
		}
		if m := frPostalRe.FindStringSubmatch(r); m != nil {
			city, postal = strings.TrimSpace(m[1]), m[2]
			continue
		}
		streets = append(streets, r)
	}
	return strings.Join(streets, " "), postal, city
}

// extractCargos reads one cargo per "N PALLETS" line.
func extractCargos(ls []string) ([]order.Cargo, error) {
	var cargos []order.Cargo
	for i, l := range ls {
		m := palletsRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		count, _ := strconv.Atoi(m[1])
		title := cargoTitle(l)
		if title == "" {
			title = DefaultCargoTitle
		}
		weight, err := lineWeight(ls, i)
		if err != nil {
			return nil, err
		}
		cargos = append(cargos, order.Cargo{
			Title:        title,
			PackageCount: max(count, 1),
			PackageType:  packageType(l),
			Weight:       order.Float(weight),
		})
	}
	if len(cargos) == 0 {
		return nil, common.MalformedDocument(Name, "PALLETS", "no cargo lines")
	}
	return cargos, nil
}

// cargoTitle picks the warehouse or reference code printed on a cargo line.
func cargoTitle(l string) string {
	text := strings.TrimSpace(palletCountRe.ReplaceAllString(l, ""))
	if m := refPalletsRe.FindStringSubmatch(l); m != nil {
		return m[1]
	}
	for _, re := range []*regexp.Regexp{refRefRe, refWordRe, whWordRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	if text != "REF" && len(text) > 2 {
		if m := codeRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func lineWeight(ls []string, i int) (float64, error) {
	if m := kgRe.FindStringSubmatch(ls[i]); m != nil {
		return normalize.Grouped(m[1])
	}
	if m := weightLabelRe.FindStringSubmatch(ls[i]); m != nil {
		return normalize.Grouped(m[1])
	}
	for j := max(0, i-weightRadius); j <= min(len(ls)-1, i+weightRadius); j++ {
		if m := kgRe.FindStringSubmatch(ls[j]); m != nil {
			return normalize.Grouped(m[1])
		}
	}
	return 0, nil
}

// packageType reads the packaging words on a cargo line. Ziegler bookings
// are counted in pallets, so lines without one stay pallets.
func packageType(l string) constants.PackageType {
	if pt, ok := constants.PackageTypeIn(l, packageOverrides); ok {
		return pt
	}
	return constants.PalletOther
}
