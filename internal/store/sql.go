package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"ecommerce-dashboard/internal/domain"
)

// sqlSource reads the projected columns of four tables through database/sql.
// Every column is scanned as text so that all sources share the CSV cell rules.
type sqlSource struct {
	db     *sql.DB
	tables TableNames // already quoted and qualified
	// classify maps driver errors (missing table or column) onto the store sentinels.
	classify func(error) error
}

func (s *sqlSource) readTables(ctx context.Context) (*domain.Tables, error) {
	var (
		t   domain.Tables
		err error
	)
	if t.OrderItems, err = querySQL(ctx, s, s.tables.OrderItems, orderItemColumns, decodeOrderItem); err != nil {
		return nil, err
	}
	if t.OrderReviews, err = querySQL(ctx, s, s.tables.OrderReviews, orderReviewColumns, decodeOrderReview); err != nil {
		return nil, err
	}
	if t.Products, err = querySQL(ctx, s, s.tables.Products, productColumns, decodeProduct); err != nil {
		return nil, err
	}
	if t.Sellers, err = querySQL(ctx, s, s.tables.Sellers, sellerColumns, decodeSeller); err != nil {
		return nil, err
	}
	return &t, nil
}

func selectQuery(table string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
}

func querySQL[T any](ctx context.Context, s *sqlSource, table string, columns []string, decode func([]string) (T, error)) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, selectQuery(table, columns))
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", table, s.classifyErr(err))
	}
	defer rows.Close()

	out, err := readAll(table, newSQLRows(rows, len(columns)), decode)
	if err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %s iteration error: %w", table, err)
	}
	return out, nil
}

func (s *sqlSource) classifyErr(err error) error {
	if s.classify == nil {
		return err
	}
	return s.classify(err)
}

type sqlRows struct {
	rows  *sql.Rows
	cells []sql.NullString
	dest  []any
	out   []string
}

func newSQLRows(rows *sql.Rows, n int) *sqlRows {
	r := &sqlRows{
		rows:  rows,
		cells: make([]sql.NullString, n),
		dest:  make([]any, n),
		out:   make([]string, n),
	}
	for i := range r.cells {
		r.dest[i] = &r.cells[i]
	}
	return r
}

func (r *sqlRows) Next() ([]string, error) {
	if !r.rows.Next() {
		return nil, io.EOF
	}
	if err := r.rows.Scan(r.dest...); err != nil {
		return nil, err
	}
	for i, c := range r.cells {
		// NULL and empty text are both "missing"
		r.out[i] = c.String
	}
	return r.out, nil
}

// wrapMissing reports err as a store sentinel when msg matches one of the
// driver's "missing table" or "missing column" messages.
func wrapMissing(err error, msg string, missingTable, missingColumn []string) error {
	for _, m := range missingTable {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", ErrSourceMissing, err)
		}
	}
	for _, m := range missingColumn {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
	}
	return err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
