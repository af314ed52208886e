package store

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"ecommerce-dashboard/internal/domain"
)

// Projected columns, in the order every source hands them to the decoders below.
var (
	orderItemColumns   = []string{"order_id", "product_id", "seller_id", "price"}
	orderReviewColumns = []string{"order_id", "review_score"}
	productColumns     = []string{"product_id", "product_category_name"}
	sellerColumns      = []string{"seller_id", "seller_state"}
)

// rowReader yields projected rows and io.EOF once exhausted.
type rowReader interface {
	Next() ([]string, error)
}

// readAll drains rows through decode. Any decode failure aborts the whole table.
func readAll[T any](dataset string, rows rowReader, decode func([]string) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for n := 1; ; n++ {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("store: reading %s row %d: %w", dataset, n, err)
		}
		v, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedSource, dataset, n, err)
		}
		out = append(out, v)
	}
}

func decodeOrderItem(row []string) (domain.OrderItem, error) {
	price, err := parsePrice(row[3])
	if err != nil {
		return domain.OrderItem{}, err
	}
	return domain.OrderItem{OrderID: row[0], ProductID: row[1], SellerID: row[2], Price: price}, nil
}

func decodeOrderReview(row []string) (domain.OrderReview, error) {
	score, err := parseScore(row[1])
	if err != nil {
		return domain.OrderReview{}, err
	}
	return domain.OrderReview{OrderID: row[0], ReviewScore: score}, nil
}

func decodeProduct(row []string) (domain.Product, error) {
	return domain.Product{ProductID: row[0], CategoryName: optional(row[1])}, nil
}

func decodeSeller(row []string) (domain.Seller, error) {
	return domain.Seller{SellerID: row[0], State: optional(row[1])}, nil
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price %q out of range", raw)
	}
	return v, nil
}

// parseScore accepts integers and integral floats ("4.0"); empty means no score.
func parseScore(raw string) (*int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid review_score %q", raw)
	}
	n := int(f)
	return &n, nil
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	v := raw
	return &v
}

// columnIndex maps each wanted column to its position in header.
func columnIndex(header, want []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	idx := make([]int, len(want))
	for i, col := range want {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedSource, col)
		}
		idx[i] = p
	}
	return idx, nil
}
