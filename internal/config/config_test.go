package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, 15*time.Second, cfg.HttpServer.TimeoutRead)
	assert.True(t, cfg.GrpcServer.Enabled)
	assert.Equal(t, "csv", cfg.Dataset.Source)
	assert.Equal(t, "order_items_dataset.csv", cfg.Dataset.OrderItems)
	assert.Equal(t, "public", cfg.Postgres.Schema)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "sqlite")
	t.Setenv("SQLITE_PATH", "/data/olist.db")
	t.Setenv("HTTP_SERVER_PORT", "9000")
	t.Setenv("GRPC_SERVER_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dataset.Source)
	assert.Equal(t, "/data/olist.db", cfg.SQLite.Path)
	assert.Equal(t, "9000", cfg.HttpServer.Port)
	assert.False(t, cfg.GrpcServer.Enabled)
}

func TestLoad_UnknownSource(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "parquet")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_PostgresRequiresConnection(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "postgres")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "olist")
	t.Setenv("POSTGRES_DBNAME", "olist")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=olist password= dbname=olist sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("HTTP_SERVER_TIMEOUT_READ", "soon")

	_, err := Load()

	assert.Error(t, err)
}
