package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"ecommerce-dashboard/internal/domain"
)

const (
	orderItemsCSV = `order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value
o1,1,p1,s1,2017-09-19 09:45:35,58.90,13.29
o2,1,p2,s2,2017-05-03 11:05:13,239.90,19.93
o3,1,p1,s1,2018-01-18 14:48:30,199.00,17.87
`
	orderReviewsCSV = `review_id,order_id,review_score,review_comment_title
r1,o1,4,
r2,o2,5.0,great
r3,o9,,
`
	productsCSV = `product_id,product_category_name,product_weight_g
p1,cool_stuff,650
p2,,30000
`
	sellersCSV = `seller_id,seller_zip_code_prefix,seller_city,seller_state
s1,27277,volta redonda,SP
s2,3471,sao paulo,
`
)

// writeDataset writes the four fixtures into dir, compressing each with compress
// when given, and returns the file names used.
func writeDataset(t *testing.T, dir, ext string, compress func([]byte) []byte) TableNames {
	t.Helper()
	names := DefaultFileNames()
	names.OrderItems += ext
	names.OrderReviews += ext
	names.Products += ext
	names.Sellers += ext

	for name, content := range map[string]string{
		names.OrderItems:   orderItemsCSV,
		names.OrderReviews: orderReviewsCSV,
		names.Products:     productsCSV,
		names.Sellers:      sellersCSV,
	} {
		data := []byte(content)
		if compress != nil {
			data = compress(data)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return names
}

func gzipBytes(t *testing.T) func([]byte) []byte {
	return func(b []byte) []byte {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, err := w.Write(b)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
}

func zstdBytes(t *testing.T) func([]byte) []byte {
	return func(b []byte) []byte {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()
		return enc.EncodeAll(b, nil)
	}
}

func xzBytes(t *testing.T) func([]byte) []byte {
	return func(b []byte) []byte {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(b)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
}

func assertFixtureTables(t *testing.T, tables *domain.Tables) {
	t.Helper()
	require.NotNil(t, tables)

	require.Len(t, tables.OrderItems, 3)
	assert.Equal(t, domain.OrderItem{OrderID: "o1", ProductID: "p1", SellerID: "s1", Price: 58.90}, tables.OrderItems[0])
	assert.InDelta(t, 239.90, tables.OrderItems[1].Price, 1e-9)

	require.Len(t, tables.OrderReviews, 3)
	require.NotNil(t, tables.OrderReviews[0].ReviewScore)
	assert.Equal(t, 4, *tables.OrderReviews[0].ReviewScore)
	require.NotNil(t, tables.OrderReviews[1].ReviewScore)
	assert.Equal(t, 5, *tables.OrderReviews[1].ReviewScore)
	assert.Nil(t, tables.OrderReviews[2].ReviewScore)

	require.Len(t, tables.Products, 2)
	require.NotNil(t, tables.Products[0].CategoryName)
	assert.Equal(t, "cool_stuff", *tables.Products[0].CategoryName)
	assert.Nil(t, tables.Products[1].CategoryName)

	require.Len(t, tables.Sellers, 2)
	require.NotNil(t, tables.Sellers[0].State)
	assert.Equal(t, "SP", *tables.Sellers[0].State)
	assert.Nil(t, tables.Sellers[1].State)
}

func TestCSVSource_ReadTables(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		compress func(*testing.T) func([]byte) []byte
	}{
		{name: "plain"},
		{name: "gzip", ext: ".gz", compress: gzipBytes},
		{name: "zstd", ext: ".zst", compress: zstdBytes},
		{name: "xz", ext: ".xz", compress: xzBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var compress func([]byte) []byte
			if tt.compress != nil {
				compress = tt.compress(t)
			}
			names := writeDataset(t, dir, tt.ext, compress)

			tables, err := NewCSVSource(dir, names).ReadTables(context.Background())

			require.NoError(t, err)
			assertFixtureTables(t, tables)
		})
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	dir := t.TempDir()
	names := writeDataset(t, dir, "", nil)
	require.NoError(t, os.Remove(filepath.Join(dir, names.Sellers)))

	tables, err := NewCSVSource(dir, names).ReadTables(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceMissing), "got %v", err)
	assert.Nil(t, tables)
}

func TestCSVSource_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		file    func(TableNames) string
		content string
	}{
		{
			name:    "missing column",
			file:    func(n TableNames) string { return n.OrderItems },
			content: "order_id,product_id,price\no1,p1,10\n",
		},
		{
			name:    "bad price",
			file:    func(n TableNames) string { return n.OrderItems },
			content: "order_id,product_id,seller_id,price\no1,p1,s1,ten\n",
		},
		{
			name:    "negative price",
			file:    func(n TableNames) string { return n.OrderItems },
			content: "order_id,product_id,seller_id,price\no1,p1,s1,-1\n",
		},
		{
			name:    "fractional score",
			file:    func(n TableNames) string { return n.OrderReviews },
			content: "order_id,review_score\no1,4.5\n",
		},
		{
			name:    "ragged row",
			file:    func(n TableNames) string { return n.Products },
			content: "product_id,product_category_name\np1\n",
		},
		{
			name:    "empty file",
			file:    func(n TableNames) string { return n.Sellers },
			content: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			names := writeDataset(t, dir, "", nil)
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file(names)), []byte(tt.content), 0o600))

			_, err := NewCSVSource(dir, names).ReadTables(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSource), "got %v", err)
		})
	}
}

func TestCSVSource_KeysKeptVerbatim(t *testing.T) {
	dir := t.TempDir()
	names := writeDataset(t, dir, "", nil)
	content := "order_id,product_id,seller_id,price\n O1 ,P1,s1,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, names.OrderItems), []byte(content), 0o600))

	tables, err := NewCSVSource(dir, names).ReadTables(context.Background())

	require.NoError(t, err)
	assert.Equal(t, " O1 ", tables.OrderItems[0].OrderID)
	assert.Equal(t, "P1", tables.OrderItems[0].ProductID)
}

func TestCSVSource_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	names := writeDataset(t, dir, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVSource(dir, names).ReadTables(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
