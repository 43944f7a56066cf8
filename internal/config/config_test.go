package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "HOST", "STORE_DRIVER", "MONGODB_URI", "MONGO_URI", "MONGODB_DATABASE",
		"REDIS_URI", "IMAGE_CACHE_TTL", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH",
		"ALLOWED_ORIGINS", "FRONTEND_URL", "FRONTEND_URL_2", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "emotional-diary", cfg.MongoDatabase)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.ImageCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.AllowedHost)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProductionHostAndOrigins(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.diary.example.com:443/v1")
	t.Setenv("ALLOWED_ORIGINS", "https://diary.example.com, https://www.diary.example.com ,")
	t.Setenv("IMAGE_CACHE_TTL", "15m")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.diary.example.com", cfg.AllowedHost)
	assert.Equal(t, []string{"https://diary.example.com", "https://www.diary.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.ImageCacheTTL)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("IMAGE_CACHE_TTL", "soon")
	assert.Equal(t, time.Hour, Load().ImageCacheTTL)
}

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/diary", "diary"},
		{"mongodb://localhost:27017/diary?authSource=admin", "diary"},
		{"mongodb+srv://u:p@cluster0.example.net/?retryWrites=true", "fallback"},
		{"mongodb://localhost:27017", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseFromURI(tt.uri, "fallback"))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"unknown driver", Config{StoreDriver: "sqlite", ImageCacheTTL: time.Minute}, true},
		{"production without secret", Config{StoreDriver: StoreMongo, Environment: "production", ImageCacheTTL: time.Minute}, true},
		{"production with hash", Config{StoreDriver: StorePostgres, Environment: "production", AdminPasswordHash: "$2a$10$x", ImageCacheTTL: time.Minute}, false},
		{"development without secret", Config{StoreDriver: StoreMemory, Environment: "development", ImageCacheTTL: time.Minute}, false},
		{"zero ttl", Config{StoreDriver: StoreMongo, ImageCacheTTL: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageAPIKeyReadsLiveEnvironment(t *testing.T) {
	t.Setenv(ImageAPIKeyEnv, "")
	assert.Empty(t, ImageAPIKey())

	t.Setenv(ImageAPIKeyEnv, " abc123 ")
	assert.Equal(t, "abc123", ImageAPIKey())
}
