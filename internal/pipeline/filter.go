package pipeline

import (
	"math"
	"sort"

	"ecommerce-dashboard/internal/domain"
)

// Filter returns the rows whose seller state and category are both selected and
// whose price lies within [PriceMin, PriceMax]. Rows with a missing state or
// category never match. An empty selection yields an empty result.
func Filter(merged []domain.MergedRecord, f domain.Filter) []domain.MergedRecord {
	out := make([]domain.MergedRecord, 0)
	if len(f.States) == 0 || len(f.Categories) == 0 || f.PriceMin > f.PriceMax {
		return out
	}
	states := toSet(f.States)
	categories := toSet(f.Categories)

	for _, row := range merged {
		if row.SellerState == nil || row.CategoryName == nil {
			continue
		}
		if _, ok := states[*row.SellerState]; !ok {
			continue
		}
		if _, ok := categories[*row.CategoryName]; !ok {
			continue
		}
		if row.Price < f.PriceMin || row.Price > f.PriceMax {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Options derives the widget choices from the unfiltered merged table: distinct
// non-missing states and categories in first-seen order, and the global price bounds.
func Options(merged []domain.MergedRecord) domain.FilterOptions {
	opts := domain.FilterOptions{
		States:     make([]string, 0),
		Categories: make([]string, 0),
	}
	if len(merged) == 0 {
		return opts
	}

	seenStates := make(map[string]struct{})
	seenCategories := make(map[string]struct{})
	opts.PriceMin = math.Inf(1)
	opts.PriceMax = math.Inf(-1)
	for _, row := range merged {
		if row.SellerState != nil {
			if _, ok := seenStates[*row.SellerState]; !ok {
				seenStates[*row.SellerState] = struct{}{}
				opts.States = append(opts.States, *row.SellerState)
			}
		}
		if row.CategoryName != nil {
			if _, ok := seenCategories[*row.CategoryName]; !ok {
				seenCategories[*row.CategoryName] = struct{}{}
				opts.Categories = append(opts.Categories, *row.CategoryName)
			}
		}
		opts.PriceMin = math.Min(opts.PriceMin, row.Price)
		opts.PriceMax = math.Max(opts.PriceMax, row.Price)
	}
	return opts
}

// DefaultFilter selects every option, which is how the dashboard first opens.
func DefaultFilter(opts domain.FilterOptions) domain.Filter {
	return domain.Filter{
		States:     append([]string(nil), opts.States...),
		Categories: append([]string(nil), opts.Categories...),
		PriceMin:   opts.PriceMin,
		PriceMax:   opts.PriceMax,
	}
}

// SortedOptions returns a copy of opts with states and categories in lexical order.
func SortedOptions(opts domain.FilterOptions) domain.FilterOptions {
	out := opts
	out.States = append([]string(nil), opts.States...)
	out.Categories = append([]string(nil), opts.Categories...)
	sort.Strings(out.States)
	sort.Strings(out.Categories)
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
