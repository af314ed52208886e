package store

import (
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"go.uber.org/multierr"

	"ecommerce-dashboard/internal/domain"
)

// CSVSource reads the datasets from comma-separated files in one directory.
// Files ending in .gz, .bz2, .xz or .zst are decompressed on the fly.
type CSVSource struct {
	dir   string
	files TableNames
}

// NewCSVSource creates a CSVSource reading files under dir.
func NewCSVSource(dir string, files TableNames) *CSVSource {
	return &CSVSource{dir: dir, files: files}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) ReadTables(ctx context.Context) (*domain.Tables, error) {
	var (
		t   domain.Tables
		err error
	)
	if t.OrderItems, err = readCSV(ctx, s.path(s.files.OrderItems), orderItemColumns, decodeOrderItem); err != nil {
		return nil, err
	}
	if t.OrderReviews, err = readCSV(ctx, s.path(s.files.OrderReviews), orderReviewColumns, decodeOrderReview); err != nil {
		return nil, err
	}
	if t.Products, err = readCSV(ctx, s.path(s.files.Products), productColumns, decodeProduct); err != nil {
		return nil, err
	}
	if t.Sellers, err = readCSV(ctx, s.path(s.files.Sellers), sellerColumns, decodeSeller); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *CSVSource) path(name string) string {
	return filepath.Join(s.dir, name)
}

func readCSV[T any](ctx context.Context, path string, columns []string, decode func([]string) (T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reader, closer, err := openDecompressed(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	defer closer()

	rows, err := newCSVRows(reader, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readAll(filepath.Base(path), rows, decode)
}

// openDecompressed opens path and wraps it in a decompressor chosen by extension.
func openDecompressed(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("%w: gzip: %v", ErrMalformedSource, err)
		}
		return gz, func() error {
			return multierr.Append(gz.Close(), f.Close())
		}, nil
	case ".bz2":
		return bzip2.NewReader(f), f.Close, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("%w: xz: %v", ErrMalformedSource, err)
		}
		return xr, f.Close, nil
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("%w: zstd: %v", ErrMalformedSource, err)
		}
		return dec, func() error {
			dec.Close()
			return f.Close()
		}, nil
	default:
		return f, f.Close, nil
	}
}

// csvRows projects each CSV record onto the wanted columns.
type csvRows struct {
	r   *csv.Reader
	idx []int
	out []string
}

func newCSVRows(r io.Reader, columns []string) (*csvRows, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedSource)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedSource, err)
	}
	idx, err := columnIndex(header, columns)
	if err != nil {
		return nil, err
	}
	return &csvRows{r: cr, idx: idx, out: make([]string, len(idx))}, nil
}

func (c *csvRows) Next() ([]string, error) {
	rec, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	for i, p := range c.idx {
		c.out[i] = rec[p]
	}
	return c.out, nil
}
