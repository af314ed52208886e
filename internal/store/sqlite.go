package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"

	"ecommerce-dashboard/internal/domain"
)

// SQLiteSource reads the dataset tables from a SQLite database file.
type SQLiteSource struct {
	path   string
	tables TableNames
}

// NewSQLiteSource creates a SQLiteSource for the database at path.
func NewSQLiteSource(path string, tables TableNames) *SQLiteSource {
	return &SQLiteSource{path: path, tables: tables}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) ReadTables(ctx context.Context) (*domain.Tables, error) {
	// sql.Open would silently create a missing database file.
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, s.path)
		}
		return nil, fmt.Errorf("store: sqlite path %s: %w", s.path, err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", s.path, err)
	}
	defer db.Close()

	src := sqlSource{db: db, tables: quoteAll(s.tables), classify: classifySQLiteError}
	return src.readTables(ctx)
}

func quoteAll(t TableNames) TableNames {
	return TableNames{
		OrderItems:   quoteIdent(t.OrderItems),
		OrderReviews: quoteIdent(t.OrderReviews),
		Products:     quoteIdent(t.Products),
		Sellers:      quoteIdent(t.Sellers),
	}
}

func classifySQLiteError(err error) error {
	return wrapMissing(err, err.Error(), []string{"no such table"}, []string{"no such column"})
}
