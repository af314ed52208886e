package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/filesql"
	"go.uber.org/multierr"

	"ecommerce-dashboard/internal/domain"
)

// FileSQLSource loads the dataset files into an in-memory SQL database and
// reads them back with projection queries. Besides CSV it accepts every format
// filesql understands (TSV, LTSV, XLSX, Parquet and their compressed forms).
type FileSQLSource struct {
	dir   string
	files TableNames
}

// NewFileSQLSource creates a FileSQLSource reading files under dir.
func NewFileSQLSource(dir string, files TableNames) *FileSQLSource {
	return &FileSQLSource{dir: dir, files: files}
}

func (s *FileSQLSource) Name() string { return "filesql" }

func (s *FileSQLSource) ReadTables(ctx context.Context) (_ *domain.Tables, err error) {
	names := []string{s.files.OrderItems, s.files.OrderReviews, s.files.Products, s.files.Sellers}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.dir, name)
		if _, err := os.Stat(paths[i]); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrSourceMissing, paths[i])
			}
			return nil, fmt.Errorf("store: stat %s: %w", paths[i], err)
		}
	}

	db, err := filesql.OpenContext(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("%w: filesql: %v", ErrMalformedSource, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(db))

	src := sqlSource{
		db: db,
		tables: quoteAll(TableNames{
			OrderItems:   tableNameFromFile(s.files.OrderItems),
			OrderReviews: tableNameFromFile(s.files.OrderReviews),
			Products:     tableNameFromFile(s.files.Products),
			Sellers:      tableNameFromFile(s.files.Sellers),
		}),
		classify: classifySQLiteError,
	}
	return src.readTables(ctx)
}

// tableNameFromFile derives the table name filesql registers for a file:
// the base name without compression and format extensions.
func tableNameFromFile(name string) string {
	base := filepath.Base(name)
	for _, ext := range []string{".gz", ".bz2", ".xz", ".zst"} {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
