package pipeline

import (
	"sort"

	"ecommerce-dashboard/internal/domain"
)

type productGroup struct {
	count       int
	priceSum    float64
	ratingSum   float64
	ratingCount int
}

func groupByProduct(rows []domain.MergedRecord) ([]string, map[string]*productGroup) {
	groups := make(map[string]*productGroup)
	keys := make([]string, 0)
	for _, row := range rows {
		g, ok := groups[row.ProductID]
		if !ok {
			g = &productGroup{}
			groups[row.ProductID] = g
			keys = append(keys, row.ProductID)
		}
		g.count++
		g.priceSum += row.Price
		if row.ReviewScore != nil {
			g.ratingSum += float64(*row.ReviewScore)
			g.ratingCount++
		}
	}
	sort.Strings(keys)
	return keys, groups
}

// ProductPurchaseRating counts the order lines of each product and averages
// their review scores. Lines without a score are counted but left out of the mean.
func ProductPurchaseRating(rows []domain.MergedRecord) []domain.PurchaseRating {
	keys, groups := groupByProduct(rows)
	out := make([]domain.PurchaseRating, 0, len(keys))
	for _, id := range keys {
		g := groups[id]
		out = append(out, domain.PurchaseRating{
			ProductID:     id,
			PurchaseCount: g.count,
			AvgRating:     mean(g.ratingSum, g.ratingCount),
		})
	}
	return out
}

// ProductPriceVsPurchase averages the price of each product's order lines and counts them.
func ProductPriceVsPurchase(rows []domain.MergedRecord) []domain.PricePurchase {
	keys, groups := groupByProduct(rows)
	out := make([]domain.PricePurchase, 0, len(keys))
	for _, id := range keys {
		g := groups[id]
		out = append(out, domain.PricePurchase{
			ProductID:     id,
			AvgPrice:      g.priceSum / float64(g.count),
			PurchaseCount: g.count,
		})
	}
	return out
}

// SalesByLocation counts order lines per seller state, largest first.
// States with equal counts keep the order in which they were first seen.
func SalesByLocation(rows []domain.MergedRecord) []domain.LocationSales {
	index := make(map[string]int)
	out := make([]domain.LocationSales, 0)
	for _, row := range rows {
		if row.SellerState == nil {
			continue
		}
		i, ok := index[*row.SellerState]
		if !ok {
			i = len(out)
			index[*row.SellerState] = i
			out = append(out, domain.LocationSales{SellerState: *row.SellerState})
		}
		out[i].SalesCount++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SalesCount > out[j].SalesCount
	})
	return out
}

// Summarize computes the headline metrics: distinct products, mean review score
// and distinct sellers.
func Summarize(rows []domain.MergedRecord) domain.Summary {
	products := make(map[string]struct{})
	sellers := make(map[string]struct{})
	var ratingSum float64
	var ratingCount int
	for _, row := range rows {
		products[row.ProductID] = struct{}{}
		sellers[row.SellerID] = struct{}{}
		if row.ReviewScore != nil {
			ratingSum += float64(*row.ReviewScore)
			ratingCount++
		}
	}
	return domain.Summary{
		TotalProducts: len(products),
		AvgRating:     mean(ratingSum, ratingCount),
		TotalSellers:  len(sellers),
	}
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
