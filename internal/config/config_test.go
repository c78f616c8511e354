package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditlens/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.StoreDriverPostgres, cfg.Store.Driver)
	assert.False(t, cfg.S3.Enabled)
	assert.Equal(t, int64(10), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Auth.Enabled())
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:5173")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CREDITLENS_STORE_DRIVER", "MEMORY")
	t.Setenv("CREDITLENS_S3_ENABLED", "true")
	t.Setenv("CREDITLENS_S3_BUCKET", "archive")
	t.Setenv("CREDITLENS_UPLOAD_MAX_FILE_SIZE_MB", "2")
	t.Setenv("CREDITLENS_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CREDITLENS_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("CREDITLENS_DB_PORT", "6543")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.S3.Enabled)
	assert.Equal(t, "archive", cfg.S3.Bucket)
	assert.Equal(t, int64(2), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CREDITLENS_SERVER_PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CREDITLENS_STORE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveUploadLimit(t *testing.T) {
	t.Setenv("CREDITLENS_UPLOAD_MAX_FILE_SIZE_MB", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
