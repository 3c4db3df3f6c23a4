package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/ordersift/ordersift/pkg/htmltable"
	"github.com/ordersift/ordersift/pkg/profile"
)

const orderSection = `
<table><tr><td>
	<table>
		<tr>
			<th>PO Number</th><th>Sold On</th><th>Must Ship By</th>
			<th>Ship Method</th><th>Delivery Type</th><th>Payment Method</th>
		</tr>
		<tr>
			<td>PO-1001</td><td>MegaMart</td><td>2024-03-01</td>
			<td>Ground</td><td>Residential</td><td>Invoice</td>
		</tr>
	</table>
</td></tr></table>`

const customerSection = `
<table><tr><td>
	<table>
		<tr><th>Account # / Customer #</th><th>Customer</th><th>Ship To</th></tr>
		<tr>
			<td>ACCT-55 / C-9</td>
			<td>John Doe<br>123  Main   St<br>Suite 4</td>
			<td>John Doe<br>555-867-5309<br>john@example.com</td>
		</tr>
	</table>
</td></tr></table>`

func newExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(profile.Default(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestExtract_FullDocument(t *testing.T) {
	e := newExtractor(t)

	rec, err := e.Extract(strings.NewReader(orderSection + customerSection))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := rec.Order.PONumber; got != "PO-1001" {
		t.Errorf("PONumber = %q, want PO-1001", got)
	}
	if got := rec.Order.SoldOn; got != "MegaMart" {
		t.Errorf("SoldOn = %q, want MegaMart", got)
	}
	// CustomerName mirrors the sold_on value in this template generation.
	if got := rec.Order.CustomerName; got != "MegaMart" {
		t.Errorf("CustomerName = %q, want MegaMart", got)
	}
	if got := rec.Order.MustShipBy; got != "2024-03-01" {
		t.Errorf("MustShipBy = %q, want 2024-03-01", got)
	}
	if got := rec.Order.ShipMethod; got != "Ground" {
		t.Errorf("ShipMethod = %q, want Ground", got)
	}
	if got := rec.Order.DeliveryType; got != "Residential" {
		t.Errorf("DeliveryType = %q, want Residential", got)
	}
	if got := rec.Order.PaymentMethod; got != "Invoice" {
		t.Errorf("PaymentMethod = %q, want Invoice", got)
	}

	if got := rec.Customer.Name; got != "John Doe" {
		t.Errorf("Customer.Name = %q, want John Doe", got)
	}
	if got := rec.Customer.Address; got != "123 Main St, Suite 4" {
		t.Errorf("Customer.Address = %q, want \"123 Main St, Suite 4\"", got)
	}
	if got := rec.Customer.PhoneNumber; got != "555-867-5309" {
		t.Errorf("Customer.PhoneNumber = %q, want 555-867-5309", got)
	}
	if got := rec.Customer.EmailAddress; got != "john@example.com" {
		t.Errorf("Customer.EmailAddress = %q, want john@example.com", got)
	}

	if rec.Products == nil || len(rec.Products) != 0 {
		t.Errorf("Products should be empty, not nil: %v", rec.Products)
	}
	if rec.Items == nil || len(rec.Items) != 0 {
		t.Errorf("Items should be empty, not nil: %v", rec.Items)
	}
}

func TestExtract_MissingOrderSectionIsFatal(t *testing.T) {
	e := newExtractor(t)

	rec, err := e.Extract(strings.NewReader(customerSection))
	if rec != nil {
		t.Error("no partial record should be produced")
	}
	if !errors.Is(err, htmltable.ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestExtract_MisalignedOrderTableIsFatal(t *testing.T) {
	e := newExtractor(t)

	doc := `
		<table>
			<tr><th>PO Number</th><th>Sold On</th></tr>
			<tr><td>PO-1</td></tr>
		</table>` + customerSection

	rec, err := e.Extract(strings.NewReader(doc))
	if rec != nil {
		t.Error("no partial record should be produced")
	}
	var alignErr *htmltable.AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected *AlignmentError, got %v", err)
	}
}

func TestExtract_MissingCustomerSectionDegrades(t *testing.T) {
	e := newExtractor(t)

	rec, err := e.Extract(strings.NewReader(orderSection))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !rec.Customer.IsZero() {
		t.Errorf("expected empty customer, got %+v", rec.Customer)
	}
	if rec.Order.PONumber != "PO-1001" {
		t.Error("order extraction should still succeed")
	}
}

func TestExtract_UnknownHeadersDroppedAbsentFieldsEmpty(t *testing.T) {
	e := newExtractor(t)

	doc := `
		<table>
			<tr><th>PO Number</th><th>Warehouse Code</th></tr>
			<tr><td>PO-2</td><td>WH-EAST</td></tr>
		</table>`

	rec, err := e.Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Order.PONumber != "PO-2" {
		t.Errorf("PONumber = %q, want PO-2", rec.Order.PONumber)
	}
	if rec.Order.ShipMethod != "" || rec.Order.SoldOn != "" {
		t.Errorf("absent fields should be empty strings: %+v", rec.Order)
	}
}

func TestExtract_ContactClassificationIgnoresFragmentOrder(t *testing.T) {
	// Email listed before phone in the ship-to cell.
	doc := orderSection + `
		<table>
			<tr><th>Account # / Customer #</th><th>Customer</th><th>Ship To</th></tr>
			<tr>
				<td>ACCT-1</td>
				<td>Jane Roe<br>9 Oak Ave</td>
				<td>jane@example.org<br>(555) 123 4567</td>
			</tr>
		</table>`

	rec, err := newExtractor(t).Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := rec.Customer.PhoneNumber; got != "(555) 123 4567" {
		t.Errorf("PhoneNumber = %q, want \"(555) 123 4567\"", got)
	}
	if got := rec.Customer.EmailAddress; got != "jane@example.org" {
		t.Errorf("EmailAddress = %q, want jane@example.org", got)
	}
}

func TestExtract_CustomerColumnOnly(t *testing.T) {
	// Single-column generation: no ship-to column means no contact fields.
	doc := orderSection + `
		<table>
			<tr><th>Account # / Customer #</th><th>Customer</th></tr>
			<tr><td>ACCT-2</td><td>Solo Buyer<br>1 Elm Rd</td></tr>
		</table>`

	rec, err := newExtractor(t).Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Customer.Name != "Solo Buyer" {
		t.Errorf("Name = %q, want Solo Buyer", rec.Customer.Name)
	}
	if rec.Customer.Address != "1 Elm Rd" {
		t.Errorf("Address = %q, want 1 Elm Rd", rec.Customer.Address)
	}
	if rec.Customer.PhoneNumber != "" || rec.Customer.EmailAddress != "" {
		t.Errorf("contact fields require both columns: %+v", rec.Customer)
	}
}

type fixedItems struct {
	products []Product
	items    []LineItem
	err      error
}

func (f fixedItems) ExtractItems(*goquery.Document) ([]Product, []LineItem, error) {
	return f.products, f.items, f.err
}

func TestExtract_ItemsInheritOrderNumber(t *testing.T) {
	ie := fixedItems{
		products: []Product{{ItemCode: "SKU-1", Description: "Widget"}},
		items:    []LineItem{{ItemCode: "SKU-1", Quantity: 3, Price: 9.99}},
	}
	e := newExtractor(t, WithItemExtractor(ie))

	rec, err := e.Extract(strings.NewReader(orderSection))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(rec.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(rec.Items))
	}
	if got := rec.Items[0].PONumber; got != "PO-1001" {
		t.Errorf("item PONumber = %q, want PO-1001", got)
	}
}

func TestExtract_ItemExtractorFailureIsFatal(t *testing.T) {
	mvErr := &MalformedValueError{Field: "quantity", Value: "three"}
	e := newExtractor(t, WithItemExtractor(fixedItems{err: mvErr}))

	rec, err := e.Extract(strings.NewReader(orderSection))
	if rec != nil {
		t.Error("no partial record should be produced")
	}
	var got *MalformedValueError
	if !errors.As(err, &got) {
		t.Fatalf("expected *MalformedValueError, got %v", err)
	}
	if got.Field != "quantity" {
		t.Errorf("Field = %q, want quantity", got.Field)
	}
}

func TestNew_InvalidProfile(t *testing.T) {
	if _, err := New(profile.Profile{}); err == nil {
		t.Error("expected validation error for empty profile")
	}
}

func TestLooksLikePhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"555-867-5309", true},
		{"(555) 123 4567", true},
		{"+1 555 1234", true},
		{"John Doe", false},
		{"555-CALL-NOW", false},
		{"", false},
		{"-() +", false},
	}
	for _, tt := range tests {
		if got := looksLikePhone(tt.in); got != tt.want {
			t.Errorf("looksLikePhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"john@example.com", true},
		{"john@localhost", false},
		{"example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeEmail(tt.in); got != tt.want {
			t.Errorf("looksLikeEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
