package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ordersift/ordersift/pkg/htmltable"
	"github.com/ordersift/ordersift/pkg/profile"
)

// extractCustomer assembles the customer record from the customer / ship-to
// section. It never fails: when the anchor, the recognized columns, or the
// data row are absent it returns an all-empty Customer instead.
func extractCustomer(doc *goquery.Document, p profile.Profile) Customer {
	table, err := htmltable.Locate(doc, p.CustomerAnchor)
	if err != nil {
		return Customer{}
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return Customer{}
	}

	customerIdx, shipToIdx := -1, -1
	rows.Eq(0).ChildrenFiltered("th,td").Each(func(i int, c *goquery.Selection) {
		switch htmltable.CellText(c) {
		case p.CustomerColumn:
			customerIdx = i
		case p.ShipToColumn:
			shipToIdx = i
		}
	})
	if customerIdx < 0 && shipToIdx < 0 {
		return Customer{}
	}

	primaryIdx := customerIdx
	if primaryIdx < 0 {
		primaryIdx = shipToIdx
	}

	dataCells := rows.Eq(1).ChildrenFiltered("th,td")
	if primaryIdx >= dataCells.Length() {
		return Customer{}
	}

	var cust Customer
	frags := htmltable.Fragments(dataCells.Eq(primaryIdx))
	if len(frags) > 0 {
		cust.Name = frags[0]
		lines := make([]string, 0, len(frags)-1)
		for _, f := range frags[1:] {
			lines = append(lines, htmltable.CollapseSpace(f))
		}
		cust.Address = strings.Join(lines, ", ")
	}

	// Phone and email only ever appear in the ship-to cell, and only when
	// the section carries both columns. Classification is by content shape
	// and stays best-effort: a fragment matching neither shape leaves the
	// field empty.
	if customerIdx >= 0 && shipToIdx >= 0 && shipToIdx < dataCells.Length() {
		for _, f := range htmltable.Fragments(dataCells.Eq(shipToIdx)) {
			if cust.PhoneNumber == "" && looksLikePhone(f) {
				cust.PhoneNumber = f
			} else if cust.EmailAddress == "" && looksLikeEmail(f) {
				cust.EmailAddress = f
			}
		}
	}

	return cust
}

// looksLikePhone reports whether the fragment is all digits once common
// phone punctuation is stripped.
func looksLikePhone(s string) bool {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune("-() +", r) {
			return -1
		}
		return r
	}, s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksLikeEmail reports whether the fragment carries both an @ and a dot.
func looksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}
