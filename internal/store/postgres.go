package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ecommerce-dashboard/internal/domain"
)

// Postgres error codes the loader distinguishes.
const (
	pqUndefinedTable  = "42P01"
	pqUndefinedColumn = "42703"
)

// PostgresSource reads the dataset tables from a PostgreSQL schema.
type PostgresSource struct {
	db  *sql.DB
	src sqlSource
}

// NewPostgresSource creates a PostgresSource over db, reading tables from schema
// ("public" when empty).
func NewPostgresSource(db *sql.DB, schema string, tables TableNames) *PostgresSource {
	if schema == "" {
		schema = "public"
	}
	qualify := func(table string) string {
		return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
	}
	return &PostgresSource{
		db: db,
		src: sqlSource{
			db: db,
			tables: TableNames{
				OrderItems:   qualify(tables.OrderItems),
				OrderReviews: qualify(tables.OrderReviews),
				Products:     qualify(tables.Products),
				Sellers:      qualify(tables.Sellers),
			},
			classify: classifyPostgresError,
		},
	}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) ReadTables(ctx context.Context) (*domain.Tables, error) {
	return s.src.readTables(ctx)
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: closing postgres: %w", err)
	}
	return nil
}

func classifyPostgresError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUndefinedTable:
		return fmt.Errorf("%w: %v", ErrSourceMissing, err)
	case pqUndefinedColumn:
		return fmt.Errorf("%w: %v", ErrMalformedSource, err)
	default:
		return err
	}
}
