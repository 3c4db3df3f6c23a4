package store

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// exportSheet describes one workbook sheet: a core relation dumped
// read-only, header row first.
type exportSheet struct {
	name    string
	headers []string
	query   string
}

var exportSheets = []exportSheet{
	{
		name:    "Customers",
		headers: []string{"name", "address", "phone_number", "email_address"},
		query:   `SELECT name, address, phone_number, email_address FROM customers ORDER BY name`,
	},
	{
		name:    "Products",
		headers: []string{"item_code", "description"},
		query:   `SELECT item_code, description FROM products ORDER BY item_code`,
	},
	{
		name: "Orders",
		headers: []string{
			"po_number", "customer_name", "sold_on", "must_ship_by",
			"ship_method", "delivery_type", "payment_method",
		},
		query: `SELECT po_number, customer_name, sold_on, must_ship_by,
			ship_method, delivery_type, payment_method FROM orders ORDER BY po_number`,
	},
	{
		name:    "OrderItems",
		headers: []string{"po_number", "item_code", "quantity", "price"},
		query:   `SELECT po_number, item_code, quantity, price FROM order_items ORDER BY po_number, item_code`,
	},
}

// ExportXLSX dumps the four core relations to an XLSX workbook, one sheet
// per relation.
func (s *Store) ExportXLSX(ctx context.Context, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range exportSheets {
		if i == 0 {
			// Reuse the default sheet for the first relation.
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("export: new sheet %s: %w", sheet.name, err)
			}
		}
		if err := s.writeSheet(ctx, f, sheet); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func (s *Store) writeSheet(ctx context.Context, f *excelize.File, sheet exportSheet) error {
	header := make([]any, len(sheet.headers))
	for i, h := range sheet.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
		return fmt.Errorf("export: header row %s: %w", sheet.name, err)
	}

	rows, err := s.db.QueryContext(ctx, sheet.query)
	if err != nil {
		return fmt.Errorf("export: query %s: %w", sheet.name, err)
	}
	defer rows.Close()

	rowNum := 2
	for rows.Next() {
		values := make([]any, len(sheet.headers))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("export: scan %s: %w", sheet.name, err)
		}

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
			return fmt.Errorf("export: row %d of %s: %w", rowNum, sheet.name, err)
		}
		rowNum++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("export: iterate %s: %w", sheet.name, err)
	}
	return nil
}
