package pipeline

import "ecommerce-dashboard/internal/domain"

// Evaluate runs one dashboard interaction: filter the merged table, then build
// the summary and all three aggregates from the filtered rows.
func Evaluate(merged []domain.MergedRecord, f domain.Filter) domain.View {
	rows := Filter(merged, f)
	return domain.View{
		Filter:          f,
		RowCount:        len(rows),
		Summary:         Summarize(rows),
		PurchaseRating:  ProductPurchaseRating(rows),
		PricePurchase:   ProductPriceVsPurchase(rows),
		SalesByLocation: SalesByLocation(rows),
	}
}
