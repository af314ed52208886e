package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ecommerce-dashboard/internal/domain"
)

// FilterInput is a dashboard interaction as sent by a client. A nil States or
// Categories means the widget was left at its default (everything selected);
// an empty, non-nil one means nothing is selected. Missing price bounds fall
// back to the global bounds of the dataset.
type FilterInput struct {
	States     []string `json:"states"`
	Categories []string `json:"categories"`
	PriceMin   *float64 `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax   *float64 `json:"price_max" validate:"omitempty,gte=0"`
}

// priceRange is validated after defaults are applied, so both ends are known.
type priceRange struct {
	Min float64 `validate:"gte=0"`
	Max float64 `validate:"gtefield=Min"`
}

var errInvalidFilter = errors.New("invalid filter")

// Resolve applies widget defaults from opts and validates the result.
func (in FilterInput) Resolve(v *validator.Validate, opts domain.FilterOptions) (domain.Filter, error) {
	if err := v.Struct(in); err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %v", errInvalidFilter, err)
	}

	f := domain.Filter{
		States:     in.States,
		Categories: in.Categories,
		PriceMin:   opts.PriceMin,
		PriceMax:   opts.PriceMax,
	}
	if f.States == nil {
		f.States = append([]string{}, opts.States...)
	}
	if f.Categories == nil {
		f.Categories = append([]string{}, opts.Categories...)
	}
	if in.PriceMin != nil {
		f.PriceMin = *in.PriceMin
	}
	if in.PriceMax != nil {
		f.PriceMax = *in.PriceMax
	}

	if err := v.Struct(priceRange{Min: f.PriceMin, Max: f.PriceMax}); err != nil {
		return domain.Filter{}, fmt.Errorf("%w: price_max must be greater than or equal to price_min", errInvalidFilter)
	}
	return f, nil
}

// filterInputFromQuery reads states, categories, price_min and price_max from
// the query string. List parameters may repeat and may hold comma separated
// values; a parameter that is present but blank selects nothing.
func filterInputFromQuery(q url.Values) (FilterInput, error) {
	var in FilterInput
	in.States = listParam(q, "states")
	in.Categories = listParam(q, "categories")

	var err error
	if in.PriceMin, err = floatParam(q, "price_min"); err != nil {
		return FilterInput{}, err
	}
	if in.PriceMax, err = floatParam(q, "price_max"); err != nil {
		return FilterInput{}, err
	}
	return in, nil
}

func listParam(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", errInvalidFilter, key)
	}
	return &v, nil
}
