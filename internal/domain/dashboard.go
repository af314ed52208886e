package domain

// Filter is the set of widget selections applied to the merged table.
// Both price bounds are inclusive. An empty States or Categories selects nothing.
type Filter struct {
	States     []string `json:"states"`
	Categories []string `json:"categories"`
	PriceMin   float64  `json:"price_min"`
	PriceMax   float64  `json:"price_max"`
}

// FilterOptions lists what the dashboard widgets can offer.
// It is computed once over the unfiltered merged table.
type FilterOptions struct {
	States     []string `json:"states"`
	Categories []string `json:"categories"`
	PriceMin   float64  `json:"price_min"`
	PriceMax   float64  `json:"price_max"`
}

// PurchaseRating relates how often a product was bought to its mean rating.
// AvgRating is nil when none of the product's rows carry a review score.
type PurchaseRating struct {
	ProductID     string   `json:"product_id"`
	PurchaseCount int      `json:"purchase_count"`
	AvgRating     *float64 `json:"avg_rating"`
}

// PricePurchase relates a product's mean price to how often it was bought.
type PricePurchase struct {
	ProductID     string  `json:"product_id"`
	AvgPrice      float64 `json:"avg_price"`
	PurchaseCount int     `json:"purchase_count"`
}

// LocationSales is the number of order lines sold from one seller state.
type LocationSales struct {
	SellerState string `json:"seller_state"`
	SalesCount  int    `json:"sales_count"`
}

// Summary holds the headline metrics shown above the charts.
type Summary struct {
	TotalProducts int      `json:"total_products"`
	AvgRating     *float64 `json:"avg_rating"` // nil when no filtered row has a review
	TotalSellers  int      `json:"total_sellers"`
}

// View is everything one dashboard render needs for a given filter.
type View struct {
	Filter          Filter           `json:"filter"`
	RowCount        int              `json:"row_count"`
	Summary         Summary          `json:"summary"`
	PurchaseRating  []PurchaseRating `json:"purchase_rating"`
	PricePurchase   []PricePurchase  `json:"price_purchase"`
	SalesByLocation []LocationSales  `json:"sales_by_location"`
}
