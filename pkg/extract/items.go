package extract

import "github.com/PuerkitoBio/goquery"

// ItemExtractor is the seam for line-item extraction. The current template
// generation does not render a usable line-item table, so the default
// implementation returns empty slices; a future generation enables items by
// plugging a real extractor in via WithItemExtractor.
//
// Implementations return MalformedValueError when a quantity or price cell
// fails to parse.
type ItemExtractor interface {
	ExtractItems(doc *goquery.Document) ([]Product, []LineItem, error)
}

// noItems is the default ItemExtractor. Zero items is a valid result.
type noItems struct{}

func (noItems) ExtractItems(*goquery.Document) ([]Product, []LineItem, error) {
	return []Product{}, []LineItem{}, nil
}
