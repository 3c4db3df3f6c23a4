package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.SaveRecord(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "orders.xlsx")
	if err := s.ExportXLSX(ctx, path); err != nil {
		t.Fatalf("ExportXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	wantSheets := []string{"Customers", "Products", "Orders", "OrderItems"}
	got := f.GetSheetList()
	if len(got) != len(wantSheets) {
		t.Fatalf("sheets = %v, want %v", got, wantSheets)
	}
	for i := range wantSheets {
		if got[i] != wantSheets[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], wantSheets[i])
		}
	}

	rows, err := f.GetRows("Orders")
	if err != nil {
		t.Fatalf("read Orders sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Orders sheet has %d rows, want header + 1 data row", len(rows))
	}
	if rows[0][0] != "po_number" {
		t.Errorf("header cell = %q, want po_number", rows[0][0])
	}
	if rows[1][0] != "PO-100" {
		t.Errorf("data cell = %q, want PO-100", rows[1][0])
	}

	items, err := f.GetRows("OrderItems")
	if err != nil {
		t.Fatalf("read OrderItems sheet: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("OrderItems sheet has %d rows, want 2", len(items))
	}
	if items[1][1] != "SKU-1" {
		t.Errorf("item_code cell = %q, want SKU-1", items[1][1])
	}
}
