package extract

import (
	"github.com/ordersift/ordersift/pkg/profile"
)

// normalizeOrder maps a raw header-to-value mapping onto the canonical
// order fields using the profile's alias map. Headers outside the alias set
// are dropped; canonical fields with no matching header come out as empty
// strings. Order.CustomerName is fed from the field the profile names as
// CustomerNameSource (sold_on in the current generation, a preserved
// template quirk).
func normalizeOrder(headers map[string]string, p profile.Profile) Order {
	fields := make(map[string]string, len(p.Aliases))
	for header, value := range headers {
		if canonical, ok := p.Aliases[header]; ok {
			fields[canonical] = value
		}
	}

	return Order{
		PONumber:      fieldOrEmpty(fields, profile.FieldPONumber),
		CustomerName:  fieldOrEmpty(fields, p.CustomerNameSource),
		SoldOn:        fieldOrEmpty(fields, profile.FieldSoldOn),
		MustShipBy:    fieldOrEmpty(fields, profile.FieldMustShipBy),
		ShipMethod:    fieldOrEmpty(fields, profile.FieldShipMethod),
		DeliveryType:  fieldOrEmpty(fields, profile.FieldDeliveryType),
		PaymentMethod: fieldOrEmpty(fields, profile.FieldPaymentMethod),
	}
}

// fieldOrEmpty makes the absent-header-means-empty-string policy explicit
// rather than leaning on zero-value map lookups.
func fieldOrEmpty(fields map[string]string, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	return v
}
