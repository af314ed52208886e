package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"ecommerce-dashboard/internal/domain"
	"ecommerce-dashboard/internal/pipeline"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{
			"price":  formatPrice,
			"rating": formatRating,
		}).
		ParseFS(templateFS, "templates/dashboard.html"),
)

// pageData feeds the dashboard template. Widget choices are listed in lexical order.
type pageData struct {
	Options            domain.FilterOptions
	View               domain.View
	SelectedStates     map[string]bool
	SelectedCategories map[string]bool
	ExportURL          template.URL
}

func newPageData(opts domain.FilterOptions, view domain.View) pageData {
	q := url.Values{}
	q.Set("states", strings.Join(view.Filter.States, ","))
	q.Set("categories", strings.Join(view.Filter.Categories, ","))
	q.Set("price_min", formatPrice(view.Filter.PriceMin))
	q.Set("price_max", formatPrice(view.Filter.PriceMax))

	return pageData{
		Options:            pipeline.SortedOptions(opts),
		View:               view,
		SelectedStates:     toLookup(view.Filter.States),
		SelectedCategories: toLookup(view.Filter.Categories),
		ExportURL:          template.URL("/api/v1/dashboard/export.xlsx?" + q.Encode()),
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatRating prints the mean with two decimals, or "nan" when undefined.
func formatRating(v *float64) string {
	if v == nil {
		return "nan"
	}
	return fmt.Sprintf("%.2f", *v)
}

func toLookup(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
