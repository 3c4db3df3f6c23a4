// Package profile describes one generation of the vendor notification
// template: which heading labels anchor each section and how header labels
// map to canonical record fields.
//
// Template revisions move fields around and reword headers. Shipping those
// differences as a profile file keeps the extraction engine untouched when
// the vendor rolls a new template.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Canonical order field names, the values of the alias map.
const (
	FieldPONumber      = "po_number"
	FieldSoldOn        = "sold_on"
	FieldMustShipBy    = "must_ship_by"
	FieldShipMethod    = "ship_method"
	FieldDeliveryType  = "delivery_type"
	FieldPaymentMethod = "payment_method"
)

// Profile is the template description driving extraction.
type Profile struct {
	Name string `json:"name" yaml:"name" validate:"required"`

	// OrderAnchor and CustomerAnchor are the heading labels that locate
	// the order and customer sections respectively.
	OrderAnchor    string `json:"order_anchor" yaml:"order_anchor" validate:"required"`
	CustomerAnchor string `json:"customer_anchor" yaml:"customer_anchor" validate:"required"`

	// Aliases maps a header label as printed in the document to a
	// canonical order field name. Headers outside the map are ignored.
	Aliases map[string]string `json:"aliases" yaml:"aliases" validate:"required,min=1"`

	// CustomerNameSource names the canonical field whose extracted value
	// also populates Order.CustomerName. The current template generation
	// maps it to sold_on, which looks like a template defect carried over
	// from the vendor side; it is preserved here, not corrected, so a fix
	// is a one-line profile change.
	CustomerNameSource string `json:"customer_name_source" yaml:"customer_name_source" validate:"required"`

	// CustomerColumn and ShipToColumn are the header labels of the two
	// recognized columns in the customer section.
	CustomerColumn string `json:"customer_column" yaml:"customer_column" validate:"required"`
	ShipToColumn   string `json:"ship_to_column" yaml:"ship_to_column" validate:"required"`
}

// Default returns the profile matching the current template generation.
func Default() Profile {
	return Profile{
		Name:           "vendor-po-v1",
		OrderAnchor:    "PO Number",
		CustomerAnchor: "Account # / Customer #",
		Aliases: map[string]string{
			"PO Number":      FieldPONumber,
			"Sold On":        FieldSoldOn,
			"Must Ship By":   FieldMustShipBy,
			"Ship Method":    FieldShipMethod,
			"Delivery Type":  FieldDeliveryType,
			"Payment Method": FieldPaymentMethod,
		},
		CustomerNameSource: FieldSoldOn,
		CustomerColumn:     "Customer",
		ShipToColumn:       "Ship To",
	}
}

// FromFile loads a profile from a JSON or YAML file and validates it.
func FromFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile file format: %s", ext)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile for completeness.
func (p Profile) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	fields := make(map[string]bool, len(p.Aliases))
	for _, f := range p.Aliases {
		fields[f] = true
	}
	if !fields[p.CustomerNameSource] {
		return fmt.Errorf("invalid profile: customer_name_source %q is not a target of any alias",
			p.CustomerNameSource)
	}
	return nil
}
