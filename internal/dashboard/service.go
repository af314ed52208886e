// Package dashboard owns the merged order table for the life of the process and
// serves filter evaluations over it.
package dashboard

import (
	"context"
	"time"

	"ecommerce-dashboard/internal/domain"
	"ecommerce-dashboard/internal/logger"
	"ecommerce-dashboard/internal/metrics"
	"ecommerce-dashboard/internal/pipeline"
)

// Provider is what the presentation surfaces need from the dashboard core.
type Provider interface {
	Options() domain.FilterOptions
	Evaluate(ctx context.Context, surface string, f domain.Filter) domain.View
}

// Service holds the merged table and the widget options derived from it.
// Both are built once in New and only read afterwards, so a Service is safe
// for concurrent use.
type Service struct {
	merged  []domain.MergedRecord
	options domain.FilterOptions
	logg    *logger.Logger
	metrics *metrics.Recorder
}

// New joins tables and precomputes the filter options over the unfiltered result.
func New(ctx context.Context, tables *domain.Tables, logg *logger.Logger, m *metrics.Recorder) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	merged, stats := pipeline.JoinWithStats(tables)
	if stats.FannedOut() {
		// Duplicate right-side keys repeat order lines; kept on purpose, surfaced for review.
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"duplicate_review_keys":  stats.DuplicateReviewKeys,
			"duplicate_product_keys": stats.DuplicateProductKeys,
			"duplicate_seller_keys":  stats.DuplicateSellerKeys,
		}), "dataset.join.fan_out")
	}

	options := pipeline.Options(merged)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"merged_rows": len(merged),
		"states":      len(options.States),
		"categories":  len(options.Categories),
		"price_min":   options.PriceMin,
		"price_max":   options.PriceMax,
	}), "dataset.join.complete")

	return &Service{merged: merged, options: options, logg: logg, metrics: m}
}

// Options returns the widget choices and global price bounds.
func (s *Service) Options() domain.FilterOptions {
	return s.options
}

// Rows is the size of the merged table.
func (s *Service) Rows() int {
	return len(s.merged)
}

// Evaluate runs the filter and aggregation pipeline for one interaction.
func (s *Service) Evaluate(ctx context.Context, surface string, f domain.Filter) domain.View {
	start := time.Now()
	view := pipeline.Evaluate(s.merged, f)
	s.metrics.ObserveEvaluation(surface, time.Since(start), view.RowCount)
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"surface":  surface,
		"rows":     view.RowCount,
		"products": len(view.PurchaseRating),
	}), "dashboard.evaluate")
	return view
}
