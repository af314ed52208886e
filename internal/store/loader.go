package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecommerce-dashboard/internal/domain"
	"ecommerce-dashboard/internal/logger"
	"ecommerce-dashboard/internal/metrics"
)

// Loader reads the datasets once and hands the same tables to every caller
// for the rest of the process. There is no invalidation: the sources are
// assumed static while the process runs.
type Loader struct {
	source  Source
	logg    *logger.Logger
	metrics *metrics.Recorder

	once   sync.Once
	tables *domain.Tables
	loadID string
	err    error
}

// NewLoader creates a Loader over source. logg and m may be nil.
func NewLoader(source Source, logg *logger.Logger, m *metrics.Recorder) *Loader {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{source: source, logg: logg, metrics: m}
}

// Load returns the dataset tables, reading the source on the first call only.
// A failed first load is remembered and returned on every later call.
func (l *Loader) Load(ctx context.Context) (*domain.Tables, error) {
	l.once.Do(func() {
		start := time.Now()
		ctx := l.logg.WithField(ctx, "source", l.source.Name())
		l.logg.Info(ctx, "dataset.load.start")

		tables, err := l.source.ReadTables(ctx)
		if err != nil {
			l.err = err
			l.logg.Error(ctx, "dataset.load.failed", err)
			return
		}
		l.tables = tables
		l.loadID = uuid.NewString()

		l.metrics.ObserveLoad(l.source.Name(), time.Since(start))
		l.metrics.SetTableRows("order_items", len(tables.OrderItems))
		l.metrics.SetTableRows("order_reviews", len(tables.OrderReviews))
		l.metrics.SetTableRows("products", len(tables.Products))
		l.metrics.SetTableRows("sellers", len(tables.Sellers))

		ctx = l.logg.WithFields(ctx, map[string]any{
			"load_id":       l.loadID,
			"order_items":   len(tables.OrderItems),
			"order_reviews": len(tables.OrderReviews),
			"products":      len(tables.Products),
			"sellers":       len(tables.Sellers),
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		l.logg.Info(ctx, "dataset.load.complete")
	})
	return l.tables, l.err
}

// LoadID identifies the successful load; empty until then.
func (l *Loader) LoadID() string {
	return l.loadID
}
