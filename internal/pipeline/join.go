// Package pipeline turns the four raw dataset tables into the filtered views and
// aggregates rendered by the dashboard. Every function here is pure: inputs are
// never modified and each call allocates its own result.
package pipeline

import "ecommerce-dashboard/internal/domain"

// JoinStats describes how many right-side keys matched more than one row.
// A non-zero count means some order lines were fanned out by the join.
type JoinStats struct {
	DuplicateReviewKeys  int
	DuplicateProductKeys int
	DuplicateSellerKeys  int
}

// FannedOut reports whether any join produced more rows than its left side.
func (s JoinStats) FannedOut() bool {
	return s.DuplicateReviewKeys > 0 || s.DuplicateProductKeys > 0 || s.DuplicateSellerKeys > 0
}

// Join left-joins order items with reviews (order_id), then products (product_id),
// then sellers (seller_id). Keys match on their raw value. Every order item
// survives at least once; a key with several matches yields one row per match,
// in the order those matches appear in the right table.
func Join(t *domain.Tables) []domain.MergedRecord {
	merged, _ := JoinWithStats(t)
	return merged
}

// JoinWithStats is Join plus the duplicate-key counts of each right table.
func JoinWithStats(t *domain.Tables) ([]domain.MergedRecord, JoinStats) {
	var stats JoinStats
	if t == nil {
		return []domain.MergedRecord{}, stats
	}

	reviews := make(map[string][]*int, len(t.OrderReviews))
	for _, r := range t.OrderReviews {
		reviews[r.OrderID] = append(reviews[r.OrderID], r.ReviewScore)
	}
	categories := make(map[string][]*string, len(t.Products))
	for _, p := range t.Products {
		categories[p.ProductID] = append(categories[p.ProductID], p.CategoryName)
	}
	states := make(map[string][]*string, len(t.Sellers))
	for _, s := range t.Sellers {
		states[s.SellerID] = append(states[s.SellerID], s.State)
	}
	stats.DuplicateReviewKeys = countDuplicates(reviews)
	stats.DuplicateProductKeys = countDuplicates(categories)
	stats.DuplicateSellerKeys = countDuplicates(states)

	merged := make([]domain.MergedRecord, 0, len(t.OrderItems))
	for _, item := range t.OrderItems {
		base := domain.MergedRecord{
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Price:     item.Price,
		}
		for _, score := range matchesOrNil(reviews[item.OrderID]) {
			withReview := base
			withReview.ReviewScore = score
			for _, category := range matchesOrNil(categories[item.ProductID]) {
				withProduct := withReview
				withProduct.CategoryName = category
				for _, state := range matchesOrNil(states[item.SellerID]) {
					row := withProduct
					row.SellerState = state
					merged = append(merged, row)
				}
			}
		}
	}
	return merged, stats
}

// matchesOrNil returns the right-side values for a key, or a single nil value
// when the key is unmatched so the left row is still emitted.
func matchesOrNil[T any](matches []*T) []*T {
	if len(matches) == 0 {
		return []*T{nil}
	}
	return matches
}

func countDuplicates[T any](index map[string][]T) int {
	n := 0
	for _, rows := range index {
		if len(rows) > 1 {
			n++
		}
	}
	return n
}
