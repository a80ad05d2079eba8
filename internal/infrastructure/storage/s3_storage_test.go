package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "logos",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zap.NewNop()), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "logos", s.Bucket())
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	t.Run("defaults to endpoint and bucket", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/logos/logos/t1/a.png", s.PublicURL("logos/t1/a.png"))
	})

	t.Run("uses the configured public base", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PublicBaseURL = "https://cdn.example.com/"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/logos/t1/a.png", s.PublicURL("/logos/t1/a.png"))
	})

	t.Run("adds a scheme to a bare endpoint", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Endpoint = "s3.example.com"
		cfg.UseSSL = true
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(s.PublicURL("k"), "https://s3.example.com/"))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.GenerateDownloadURL(context.Background(), "", time.Minute)
		assert.ErrorIs(t, err, errEmptyKey)
	})

	t.Run("presigns locally", func(t *testing.T) {
		u, expiresAt, err := s.GenerateDownloadURL(context.Background(), "logos/t1/a.png", 0)
		require.NoError(t, err)
		assert.Contains(t, u, "localhost:9000")
		assert.Contains(t, u, "X-Amz-Signature")
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_RejectsEmptyKeys(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "", "image/png", []byte("x"))
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), errEmptyKey)
	_, err = s.Exists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}
