package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MAX_PAGE_SIZE", "0")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BLOB_BACKEND", "S3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "s3", cfg.BlobBackend)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxUploadBytes)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("UPLOAD_RATE_PER_DAY", "lots")
	assert.Equal(t, 50, getEnvInt("UPLOAD_RATE_PER_DAY", 50))
}
