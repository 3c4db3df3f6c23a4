// Package htmltable locates and reads data tables inside irregular,
// deeply nested HTML table layouts.
//
// Vendor notification templates bury their data tables under several
// generations of layout wrappers, and the wrappers move between template
// revisions. Rather than addressing tables by position, this package anchors
// each logical section by a heading label and walks up a declarative
// ancestor chain to the enclosing table, accepting only leaf tables (tables
// with no nested table) so layout wrappers are never mistaken for data.
package htmltable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrSectionNotFound indicates no leaf table anchored by the requested
// label exists in the document. Callers decide whether that is fatal.
var ErrSectionNotFound = errors.New("section not found")

// AlignmentError indicates the header row and data row of a table disagree
// on cell count. No partial mapping is produced when this is returned.
type AlignmentError struct {
	HeaderCells int
	DataCells   int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("header/data cell count mismatch: %d headers, %d data cells",
		e.HeaderCells, e.DataCells)
}

// chainLink is one step of the ancestor chain from an anchor label up to
// its enclosing table. Matching climbs parents until the predicate holds;
// running out of ancestors discards the candidate instead of dereferencing
// a missing node.
type chainLink struct {
	name  string
	match func(*html.Node) bool
}

var sectionChain = []chainLink{
	{"cell", isAtom(atom.Td, atom.Th)},
	{"row", isAtom(atom.Tr)},
	{"rowgroup", isAtom(atom.Tbody, atom.Thead, atom.Tfoot)},
	{"table", isAtom(atom.Table)},
}

func isAtom(atoms ...atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range atoms {
			if n.DataAtom == a {
				return true
			}
		}
		return false
	}
}

// Locate finds the innermost table anchored by the given heading label.
//
// Every element whose own text (direct text children, not descendants)
// contains anchorLabel is a candidate anchor. For each, the ancestor chain
// cell, row, rowgroup, table is matched upward; candidates missing a link
// are discarded. The first surviving table that contains no nested table
// wins. Returns ErrSectionNotFound when no candidate survives.
//
// A label split across inline siblings (<b>PO</b> Number) belongs to no
// single element's own text and is not found. Anchor labels must be a
// substring the template renders inside one node; every known template
// generation does.
func Locate(doc *goquery.Document, anchorLabel string) (*goquery.Selection, error) {
	if anchorLabel == "" {
		return nil, fmt.Errorf("empty anchor label: %w", ErrSectionNotFound)
	}

	var table *html.Node
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n := s.Get(0)
		if !strings.Contains(ownText(n), anchorLabel) {
			return true
		}
		t := ascendChain(n)
		if t == nil || hasNestedTable(t) {
			return true
		}
		table = t
		return false
	})

	if table == nil {
		return nil, fmt.Errorf("anchor %q: %w", anchorLabel, ErrSectionNotFound)
	}

	return doc.FindNodes(table), nil
}

// ascendChain walks from the label node up through sectionChain and returns
// the enclosing table node, or nil when any link is missing. The label node
// itself may satisfy the first link (a label written directly in a cell).
func ascendChain(n *html.Node) *html.Node {
	cur := n
	for i, link := range sectionChain {
		start := cur
		if i > 0 {
			start = cur.Parent
		}
		cur = firstAncestor(start, link.match)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// firstAncestor climbs from n (inclusive) to the root and returns the first
// node matching the predicate.
func firstAncestor(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// ownText returns the concatenated direct text children of n, trimmed.
// Descendant element text is deliberately excluded so wrapper elements do
// not shadow the actual heading node.
func ownText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// hasNestedTable reports whether the table node contains another table.
func hasNestedTable(table *html.Node) bool {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Table {
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(table)
}

// MapRows pairs a table's header row with its data row into a label to
// value mapping.
//
// The table's first row is the header row; the immediately following row is
// the data row. The two must have the same cell count or an AlignmentError
// is returned and no mapping is produced. A repeated header label keeps the
// later occurrence's value.
func MapRows(table *goquery.Selection) (map[string]string, error) {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, &AlignmentError{}
	}

	headerCells := rows.Eq(0).ChildrenFiltered("th,td")
	headers := make([]string, 0, headerCells.Length())
	headerCells.Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, CellText(c))
	})

	if rows.Length() < 2 {
		return nil, &AlignmentError{HeaderCells: len(headers)}
	}

	dataCells := rows.Eq(1).ChildrenFiltered("th,td")
	if dataCells.Length() != len(headers) {
		return nil, &AlignmentError{
			HeaderCells: len(headers),
			DataCells:   dataCells.Length(),
		}
	}

	m := make(map[string]string, len(headers))
	dataCells.Each(func(i int, c *goquery.Selection) {
		m[headers[i]] = CellText(c)
	})
	return m, nil
}

// Fragments returns the trimmed, non-empty text fragments of a cell in
// document order. Each DOM text node is one fragment; templates that stack
// several lines in a single cell separate them with <br> or nested
// elements, which is exactly the text-node boundary.
func Fragments(cell *goquery.Selection) []string {
	var frags []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				frags = append(frags, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range cell.Nodes {
		walk(n)
	}
	return frags
}

// CellText joins a cell's text fragments with a single space, flattening
// stacked multi-line cells into one scalar value.
func CellText(cell *goquery.Selection) string {
	return strings.Join(Fragments(cell), " ")
}

// CollapseSpace folds any run of whitespace into a single space and trims
// the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
