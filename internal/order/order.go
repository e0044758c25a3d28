// Package order holds the canonical order record produced from a freight
// order-confirmation document.
package order

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
)

// Side says which party the customer is relative to the transport.
type Side string

const (
	SideSender Side = "sender"
	// SideNone means the customer is the document issuer itself.
	SideNone Side = "none"
)

// CompanyAddress is one party's postal address.
type CompanyAddress struct {
	Company         string  `json:"company"`
	Title           string  `json:"title,omitempty"`
	StreetAddress   string  `json:"street_address"`
	City            string  `json:"city"`
	PostalCode      string  `json:"postal_code"`
	Country         *string `json:"country"`
	VatCode         string  `json:"vat_code,omitempty"`
	CompanyCode     string  `json:"company_code,omitempty"`
	ContactPerson   string  `json:"contact_person,omitempty"`
	SubcargoIndices []int   `json:"subcargo_indices,omitempty"`
}

// SameAddress compares the fields that identify a physical stop.
func (a CompanyAddress) SameAddress(b CompanyAddress) bool {
	return a.Company == b.Company &&
		a.StreetAddress == b.StreetAddress &&
		a.PostalCode == b.PostalCode &&
		a.City == b.City &&
		countryOf(a) == countryOf(b)
}

func countryOf(a CompanyAddress) string {
	if a.Country == nil {
		return ""
	}
	return *a.Country
}

// TimeWindow is a loading or unloading appointment. To is nil when the
// window is a single instant.
type TimeWindow struct {
	From time.Time  `json:"datetime_from"`
	To   *time.Time `json:"datetime_to,omitempty"`
}

// Location is one physical stop.
type Location struct {
	CompanyAddress CompanyAddress `json:"company_address"`
	Time           *TimeWindow    `json:"time,omitempty"`
}

// Cargo is one consignment line. Dimensions are in meters, weight in kg.
type Cargo struct {
	Title        string                `json:"title"`
	Number       string                `json:"number,omitempty"`
	PackageCount int                   `json:"package_count"`
	PackageType  constants.PackageType `json:"package_type"`
	Weight       *float64              `json:"weight,omitempty"`
	Ldm          *float64              `json:"ldm,omitempty"`
	Volume       *float64              `json:"volume,omitempty"`
	PkgWidth     *float64              `json:"pkg_width,omitempty"`
	PkgLength    *float64              `json:"pkg_length,omitempty"`
	PkgHeight    *float64              `json:"pkg_height,omitempty"`
}

// Customer is the ordering party.
type Customer struct {
	Side    Side           `json:"side"`
	Details CompanyAddress `json:"details"`
}

// Record is the canonical order.
type Record struct {
	Customer             Customer   `json:"customer"`
	LoadingLocations     []Location `json:"loading_locations"`
	DestinationLocations []Location `json:"destination_locations"`
	Cargos               []Cargo    `json:"cargos"`
	OrderReference       string     `json:"order_reference"`
	TransportNumbers     string     `json:"transport_numbers,omitempty"`
	FreightPrice         *float64   `json:"freight_price,omitempty"`
	FreightCurrency      string     `json:"freight_currency,omitempty"`
	CustomerNumber       string     `json:"customer_number,omitempty"`
	AttachmentFilenames  []string   `json:"attachment_filenames"`
}

// String returns a pointer to s, or nil for the empty string.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// AttachmentFilenames returns the attachment list for a source file name.
func AttachmentFilenames(filename string) []string {
	return []string{strings.ToLower(filename)}
}
