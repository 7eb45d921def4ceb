package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "quote")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DBNAME", "catalog")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.HttpServer.Port)
	assert.Equal(t, 15*time.Second, c.HttpServer.TimeoutRead)
	assert.Equal(t, "9090", c.GrpcServer.Port)
	assert.Equal(t, 4096, c.Catalog.ResolveCacheSize)
	assert.Equal(t, "NZD", c.Quote.Currency)
	assert.Equal(t, "host=localhost port=5432 user=quote password=secret dbname=catalog sslmode=disable", c.Postgres.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_SUPPLIERS", "ITM,Bunnings")
	t.Setenv("CATALOG_RESOLVE_CACHE_SIZE", "0")
	t.Setenv("QUOTE_CURRENCY", " aud ")
	t.Setenv("THRESHOLDS_FILE", "/etc/quote/thresholds.yaml")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ITM", "Bunnings"}, c.Catalog.Suppliers)
	assert.Equal(t, 0, c.Catalog.ResolveCacheSize)
	assert.Equal(t, "AUD", c.Quote.Currency)
	assert.Equal(t, "/etc/quote/thresholds.yaml", c.Quote.ThresholdsFile)
}

func TestLoad_Invalid(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_RESOLVE_CACHE_SIZE", "-1")

	_, err := Load()
	assert.Error(t, err)
}
