package product

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Products"

var sheetHeader = []string{"SKU", "Name", "Category", "Retail Price", "Wholesale Price", "Credit Price", "Stock", "Low Stock Threshold"}

// ExportXLSX writes the whole product table as a spreadsheet, prices in
// currency units.
func ExportXLSX(ctx context.Context, svc Service, w io.Writer) error {
	products, err := svc.List(ctx, false)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("product: failed to create sheet: %w", err)
	}

	for col, title := range sheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("product: failed to write header: %w", err)
		}
	}

	for i, p := range products {
		values := []any{
			p.SKU,
			p.Name,
			p.Category,
			centsToUnits(p.RetailCents),
			centsToUnits(p.WholesaleCents),
			centsToUnits(p.CreditCents),
			p.StockQuantity,
			p.LowStockThreshold,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("product: failed to write row %d: %w", i+2, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("product: failed to write spreadsheet: %w", err)
	}
	return nil
}

// ImportXLSX parses an uploaded spreadsheet and reconciles its rows against
// the product table by SKU.
func ImportXLSX(ctx context.Context, svc Service, r io.Reader) (*ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("product: failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("product: spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("product: failed to read spreadsheet rows: %w", err)
	}
	if len(rows) <= 1 {
		return &ImportSummary{}, nil
	}

	products := make([]Product, 0, len(rows)-1)
	var parseErrors []string
	for i, row := range rows[1:] {
		p, err := parseSheetRow(row)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		products = append(products, p)
	}

	summary, err := svc.UpsertBySKU(ctx, products)
	if err != nil {
		return nil, err
	}
	summary.Skipped += len(parseErrors)
	summary.Errors = append(parseErrors, summary.Errors...)
	return summary, nil
}

func parseSheetRow(row []string) (Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	p := Product{
		SKU:      cell(0),
		Name:     cell(1),
		Category: cell(2),
	}

	var err error
	if p.RetailCents, err = unitsToCents(cell(3)); err != nil {
		return Product{}, fmt.Errorf("invalid retail price %q", cell(3))
	}
	if p.WholesaleCents, err = unitsToCents(cell(4)); err != nil {
		return Product{}, fmt.Errorf("invalid wholesale price %q", cell(4))
	}
	if p.CreditCents, err = unitsToCents(cell(5)); err != nil {
		return Product{}, fmt.Errorf("invalid credit price %q", cell(5))
	}
	if p.StockQuantity, err = parseQuantity(cell(6)); err != nil {
		return Product{}, fmt.Errorf("invalid stock %q", cell(6))
	}
	if p.LowStockThreshold, err = parseQuantity(cell(7)); err != nil {
		return Product{}, fmt.Errorf("invalid low stock threshold %q", cell(7))
	}
	return p, nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func unitsToCents(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
