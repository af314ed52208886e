package store

import (
	"context"
	"errors"

	"ecommerce-dashboard/internal/domain"
)

// Predefined errors for dataset loading
var (
	ErrSourceMissing   = errors.New("store: dataset source not found")
	ErrMalformedSource = errors.New("store: dataset source is malformed")
)

// Source reads the four dashboard tables, projected to the columns the pipeline uses.
type Source interface {
	Name() string
	ReadTables(ctx context.Context) (*domain.Tables, error)
}

// TableNames names the four datasets within a source: file names for file
// sources, table names for SQL sources.
type TableNames struct {
	OrderItems   string
	OrderReviews string
	Products     string
	Sellers      string
}

// DefaultFileNames are the file names the datasets are published under.
func DefaultFileNames() TableNames {
	return TableNames{
		OrderItems:   "order_items_dataset.csv",
		OrderReviews: "order_reviews_dataset.csv",
		Products:     "products_dataset.csv",
		Sellers:      "sellers_dataset.csv",
	}
}

// DefaultTableNames are the SQL table names used by database sources.
func DefaultTableNames() TableNames {
	return TableNames{
		OrderItems:   "order_items",
		OrderReviews: "order_reviews",
		Products:     "products",
		Sellers:      "sellers",
	}
}
