package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.ResultsPerPage)
	assert.Equal(t, 300, cfg.Search.MaxNumResults)
	assert.Equal(t, 4, cfg.Indexer.Workers)
	assert.Equal(t, "post-index", cfg.Kafka.Topics.PostIndex)
	assert.Equal(t, 60*time.Second, cfg.Redis.CacheTTL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9999
search:
  resultsPerPage: 25
  queryTimeout: 3s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Search.ResultsPerPage)
	assert.Equal(t, 3*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FS_SERVER_PORT", "7070")
	t.Setenv("FS_POSTGRES_HOST", "db.internal")
	t.Setenv("FS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FS_SEARCH_RESULTS_PER_PAGE", "50")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50, cfg.Search.ResultsPerPage)
}

func TestEnvOverrideIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("FS_SERVER_PORT", "not-a-port")
	t.Setenv("FS_SEARCH_RESULTS_PER_PAGE", "-1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.ResultsPerPage)
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "localhost", Port: 5432, Database: "forumsearch",
		User: "app", Password: "secret", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=forumsearch sslmode=disable",
		cfg.DSN())
}
