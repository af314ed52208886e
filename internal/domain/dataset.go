package domain

// OrderItem is one order line: a product sold by a seller within an order.
type OrderItem struct {
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	SellerID  string  `json:"seller_id"`
	Price     float64 `json:"price"`
}

// OrderReview holds the rating left for an order.
// ReviewScore is nil when the source row has no score.
type OrderReview struct {
	OrderID     string `json:"order_id"`
	ReviewScore *int   `json:"review_score,omitempty"`
}

// Product maps a product to its category. CategoryName is nil for unlabeled products.
type Product struct {
	ProductID    string  `json:"product_id"`
	CategoryName *string `json:"product_category_name,omitempty"`
}

// Seller maps a seller to the state it ships from.
type Seller struct {
	SellerID string  `json:"seller_id"`
	State    *string `json:"seller_state,omitempty"`
}

// Tables is the raw result of a dataset load, already projected to the columns above.
type Tables struct {
	OrderItems   []OrderItem
	OrderReviews []OrderReview
	Products     []Product
	Sellers      []Seller
}

// MergedRecord is one order line denormalized with its review, category and seller state.
// The pointer fields stay nil when the corresponding left-join found no match.
type MergedRecord struct {
	OrderID      string  `json:"order_id"`
	ProductID    string  `json:"product_id"`
	SellerID     string  `json:"seller_id"`
	Price        float64 `json:"price"`
	ReviewScore  *int    `json:"review_score,omitempty"`
	CategoryName *string `json:"product_category_name,omitempty"`
	SellerState  *string `json:"seller_state,omitempty"`
}
