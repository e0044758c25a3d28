// Package assemble turns an extracted order into the canonical record by
// validating it against the order schema contract.
package assemble

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// Assembler validates records against a compiled schema. It is safe for
// concurrent use.
type Assembler struct {
	contractID string
	schema     *jsonschema.Schema
}

// New compiles the built-in order schema.
func New() (*Assembler, error) {
	b, err := json.Marshal(BuildOrderJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return compile(ContractID, b)
}

// NewFromFile compiles a schema document read from path. An empty path
// falls back to the built-in schema.
func NewFromFile(path string) (*Assembler, error) {
	if path == "" {
		return New()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return compile(ContractID, b)
}

func compile(id string, doc []byte) (*Assembler, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(id, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Assembler{contractID: id, schema: schema}, nil
}

// ContractID returns the id violations are reported against.
func (a *Assembler) ContractID() string { return a.contractID }

// Assemble validates rec and returns it. On failure it returns a
// *common.SchemaError and no record.
func (a *Assembler) Assemble(rec *order.Record) (*order.Record, error) {
	if rec == nil {
		return nil, common.NewAppError(common.CodeInternal, "nil order record", common.ErrInternal)
	}

	v := common.NewValidator().
		Field("/loading_locations", rec.LoadingLocations, common.NonEmpty).
		Field("/destination_locations", rec.DestinationLocations, common.NonEmpty).
		Field("/cargos", rec.Cargos, common.NonEmpty).
		Field("/order_reference", rec.OrderReference, common.Required).
		Field("/freight_currency", rec.FreightCurrency, common.CurrencyCode)
	if v.HasErrors() {
		return nil, &common.SchemaError{ContractID: a.contractID, Violations: v.Errors()}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, common.NewAppError(common.CodeInternal, "marshal order", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "unmarshal order", err)
	}

	if err := a.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, common.NewAppError(common.CodeInternal, "validate order", err)
		}
		return nil, &common.SchemaError{ContractID: a.contractID, Violations: Violations(ve)}
	}
	return rec, nil
}

// Violations flattens a validation error tree into one entry per failing
// leaf, keyed by the JSON pointer of the offending value.
func Violations(ve *jsonschema.ValidationError) []common.ValidationError {
	var out []common.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := e.InstanceLocation
			if field == "" {
				field = "/"
			}
			out = append(out, common.ValidationError{Field: field, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Field, out[j].Field) < 0
	})
	return out
}
