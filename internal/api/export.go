package api

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ecommerce-dashboard/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names of the exported workbook.
const (
	sheetSummary         = "Summary"
	sheetPurchaseRating  = "PurchaseRating"
	sheetPricePurchase   = "PricePurchase"
	sheetSalesByLocation = "SalesByLocation"
)

// writeWorkbook renders a view as an XLSX workbook with one sheet per table.
func writeWorkbook(w io.Writer, view domain.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	summary := [][]any{
		{"metric", "value"},
		{"rows", view.RowCount},
		{"total_products", view.Summary.TotalProducts},
		{"avg_rating", ratingCell(view.Summary.AvgRating)},
		{"total_sellers", view.Summary.TotalSellers},
		{"price_min", view.Filter.PriceMin},
		{"price_max", view.Filter.PriceMax},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	rating := [][]any{{"product_id", "purchase_count", "avg_rating"}}
	for _, r := range view.PurchaseRating {
		rating = append(rating, []any{r.ProductID, r.PurchaseCount, ratingCell(r.AvgRating)})
	}
	price := [][]any{{"product_id", "avg_price", "purchase_count"}}
	for _, p := range view.PricePurchase {
		price = append(price, []any{p.ProductID, p.AvgPrice, p.PurchaseCount})
	}
	sales := [][]any{{"seller_state", "sales_count"}}
	for _, s := range view.SalesByLocation {
		sales = append(sales, []any{s.SellerState, s.SalesCount})
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{sheetPurchaseRating, rating},
		{sheetPricePurchase, price},
		{sheetSalesByLocation, sales},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("export: new sheet %s: %w", sheet.name, err)
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// ratingCell leaves the cell blank when there is no mean.
func ratingCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
