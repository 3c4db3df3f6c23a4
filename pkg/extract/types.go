// Package extract turns a vendor PO notification document into structured
// order records. Extraction is a pure function of the document's markup:
// no state is carried between documents and nothing here touches the
// network or disk.
package extract

// Order is the purchase-order header section of a notification.
// PONumber is the natural key. Absent fields are empty strings, never
// omitted: downstream upserts treat every column as present.
type Order struct {
	PONumber      string `json:"po_number" yaml:"po_number"`
	CustomerName  string `json:"customer_name" yaml:"customer_name"`
	SoldOn        string `json:"sold_on" yaml:"sold_on"`
	MustShipBy    string `json:"must_ship_by" yaml:"must_ship_by"`
	ShipMethod    string `json:"ship_method" yaml:"ship_method"`
	DeliveryType  string `json:"delivery_type" yaml:"delivery_type"`
	PaymentMethod string `json:"payment_method" yaml:"payment_method"`
}

// Customer is the customer / ship-to section. Name is the natural key.
type Customer struct {
	Name         string `json:"name" yaml:"name"`
	Address      string `json:"address" yaml:"address"`
	PhoneNumber  string `json:"phone_number" yaml:"phone_number"`
	EmailAddress string `json:"email_address" yaml:"email_address"`
}

// IsZero reports whether no customer data was found.
func (c Customer) IsZero() bool {
	return c == Customer{}
}

// Product is a catalog entry referenced by line items. ItemCode is the
// natural key.
type Product struct {
	ItemCode    string `json:"item_code" yaml:"item_code"`
	Description string `json:"description" yaml:"description"`
}

// LineItem links an order to a product with quantity and price. The
// composite key is (PONumber, ItemCode).
type LineItem struct {
	PONumber string  `json:"po_number" yaml:"po_number"`
	ItemCode string  `json:"item_code" yaml:"item_code"`
	Quantity int     `json:"quantity" yaml:"quantity"`
	Price    float64 `json:"price" yaml:"price"`
}

// Record is the full extraction result for one document: exactly one order
// and one customer, plus zero or more products and line items. The current
// template generation carries no line items; see ItemExtractor.
type Record struct {
	Order    Order      `json:"order" yaml:"order"`
	Customer Customer   `json:"customer" yaml:"customer"`
	Products []Product  `json:"products" yaml:"products"`
	Items    []LineItem `json:"items" yaml:"items"`
}
