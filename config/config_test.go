package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-that-is-32-bytes-long!"
	refreshSecret = "refresh-secret-that-is-32-bytes-long"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", accessSecret)
	t.Setenv("JWT_REFRESH_SECRET", refreshSecret)
	t.Setenv("DATABASE_DRIVER", "memory")
}

func TestParseDefaults(t *testing.T) {
	setBase(t)

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 20, cfg.DefaultReadQueryLimit)
	assert.Equal(t, 100, cfg.ReadQueryMaxLimit)
	assert.Equal(t, StorageNone, cfg.Storage())
	assert.Contains(t, cfg.AllowedFileExtensions, ".pdf")
	assert.True(t, cfg.CookieSecure)
}

func TestParseCustomValues(t *testing.T) {
	setBase(t)
	t.Setenv("PORT", "3000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test,https://b.test")
	t.Setenv("STORAGE_PROVIDER", "R2")
	t.Setenv("R2_BUCKET", "kb")
	t.Setenv("R2_ACCESS_KEY_ID", "id")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_ENDPOINT", "https://acct.r2.cloudflarestorage.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, StorageR2, cfg.Storage())
	assert.Equal(t, "kb", cfg.R2.Bucket)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET must be at least"},
		{"same secrets", map[string]string{"JWT_REFRESH_SECRET": accessSecret}, "must differ"},
		{"mongo without uri", map[string]string{"DATABASE_DRIVER": "mongodb"}, "MONGODB_URI"},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "sqlite"}, "DATABASE_DRIVER"},
		{"low bcrypt cost", map[string]string{"BCRYPT_COST": "4"}, "BCRYPT_COST"},
		{"half admin", map[string]string{"ADMIN_EMAIL": "a@x.com"}, "ADMIN_EMAIL and ADMIN_PASSWORD"},
		{"gcs without bucket", map[string]string{"STORAGE_PROVIDER": "gcs"}, "GCS_BUCKET"},
		{"bad limits", map[string]string{"DEFAULT_READ_QUERY_LIMIT": "200"}, "READ_QUERY_MAX_LIMIT"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBase(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	_, err := Parse()
	assert.Error(t, err)
}
