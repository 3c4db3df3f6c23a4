package extract

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/ordersift/ordersift/pkg/htmltable"
	"github.com/ordersift/ordersift/pkg/profile"
)

// Extractor assembles one Record per document according to a template
// profile. It is safe for concurrent use: extraction carries no state
// between documents.
type Extractor struct {
	profile profile.Profile
	items   ItemExtractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithItemExtractor plugs in a line-item extractor for template
// generations that render an item table.
func WithItemExtractor(ie ItemExtractor) Option {
	return func(e *Extractor) {
		if ie != nil {
			e.items = ie
		}
	}
}

// New creates an Extractor for the given profile.
func New(p profile.Profile, opts ...Option) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Extractor{
		profile: p,
		items:   noItems{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract parses one document and assembles its record tuple.
//
// The order section is load-bearing: a missing order anchor or a
// header/data misalignment fails the whole document and no partial record
// is returned. The customer section degrades instead, substituting an
// all-empty Customer. Check failures with errors.Is(err,
// htmltable.ErrSectionNotFound) and errors.As into *htmltable.AlignmentError.
func (e *Extractor) Extract(r io.Reader) (*Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return e.ExtractDocument(doc)
}

// ExtractDocument is Extract for an already-parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document) (*Record, error) {
	orderTable, err := htmltable.Locate(doc, e.profile.OrderAnchor)
	if err != nil {
		return nil, fmt.Errorf("order section: %w", err)
	}

	headers, err := htmltable.MapRows(orderTable)
	if err != nil {
		return nil, fmt.Errorf("order section: %w", err)
	}

	order := normalizeOrder(headers, e.profile)

	products, items, err := e.items.ExtractItems(doc)
	if err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}
	// Item extractors see only the tree; the composite key's order half is
	// filled in here.
	for i := range items {
		if items[i].PONumber == "" {
			items[i].PONumber = order.PONumber
		}
	}

	return &Record{
		Order:    order,
		Customer: extractCustomer(doc, e.profile),
		Products: products,
		Items:    items,
	}, nil
}
