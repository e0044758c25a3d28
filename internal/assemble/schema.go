package assemble

import (
	"github.com/joseph-ayodele/freight-orders/constants"
)

// ContractID is the id the order schema is registered and reported under.
const ContractID = "http://localhost/order.json"

// BuildOrderJSONSchema returns the order contract (draft 2020-12) as a generic map.
func BuildOrderJSONSchema() map[string]any {
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"$id":                  ContractID,
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"customer":              ref("customer"),
			"loading_locations":     nonEmptyArray(ref("location")),
			"destination_locations": nonEmptyArray(ref("location")),
			"cargos":                nonEmptyArray(ref("cargo")),
			"order_reference":       map[string]any{"type": "string", "minLength": 1},
			"transport_numbers":     map[string]any{"type": "string"},
			"freight_price":         map[string]any{"type": "number", "minimum": 0},
			"freight_currency":      map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			"customer_number":       map[string]any{"type": "string"},
			"attachment_filenames":  nonEmptyArray(map[string]any{"type": "string"}),
		},
		"required": []string{
			"customer", "loading_locations", "destination_locations",
			"cargos", "order_reference", "attachment_filenames",
		},
		"dependentRequired": map[string]any{
			"freight_price": []string{"freight_currency"},
		},
		"$defs": map[string]any{
			"address":  addressSchema(),
			"window":   windowSchema(),
			"location": locationSchema(),
			"cargo":    cargoSchema(),
			"customer": customerSchema(),
		},
	}
}

func addressSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"company":        map[string]any{"type": "string", "minLength": 1},
			"title":          map[string]any{"type": "string"},
			"street_address": map[string]any{"type": "string"},
			"city":           map[string]any{"type": "string", "minLength": 1},
			"postal_code":    map[string]any{"type": "string"},
			"country": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^[A-Z]{2}$`,
			},
			"vat_code":       map[string]any{"type": "string"},
			"company_code":   map[string]any{"type": "string"},
			"contact_person": map[string]any{"type": "string"},
			"subcargo_indices": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items":       map[string]any{"type": "integer", "minimum": 0},
			},
		},
		"required": []string{"company", "street_address", "city", "postal_code", "country"},
	}
}

func windowSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"datetime_from": map[string]any{"type": "string", "format": "date-time"},
			"datetime_to":   map[string]any{"type": "string", "format": "date-time"},
		},
		"required": []string{"datetime_from"},
	}
}

func locationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"company_address": ref("address"),
			"time":            ref("window"),
		},
		"required": []string{"company_address"},
	}
}

func cargoSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":         map[string]any{"type": "string"},
			"number":        map[string]any{"type": "string"},
			"package_count": map[string]any{"type": "integer", "minimum": 1},
			"package_type":  map[string]any{"type": "string", "enum": constants.PackageTypes()},
			"weight":        measureProp(),
			"ldm":           measureProp(),
			"volume":        measureProp(),
			"pkg_width":     measureProp(),
			"pkg_length":    measureProp(),
			"pkg_height":    measureProp(),
		},
		"required": []string{"title", "package_count", "package_type"},
	}
}

func customerSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"side":    map[string]any{"type": "string", "enum": []string{"sender", "none"}},
			"details": ref("address"),
		},
		"required": []string{"side", "details"},
	}
}

func measureProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func nonEmptyArray(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "minItems": 1, "items": items}
}

func ref(def string) map[string]any {
	return map[string]any{"$ref": "#/$defs/" + def}
}
