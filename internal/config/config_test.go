package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "MONGO_URI", "MONGO_DB", "USER_BACKEND", "REDIS_ADDR", "MINIO_ENDPOINT",
		"MINIO_BUCKET", "CORS_ORIGINS", "MAX_PAGE_SIZE", "RATE_LIMIT", "RATE_WINDOW",
		"LOG_LEVEL", "LOG_FORMAT", "MINIO_USE_SSL", "REDIS_DB", "SESSION_TTL",
	} {
		t.Setenv(k, "")
	}

	c := Load()

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "blog_app", c.MongoDB)
	assert.Equal(t, UserBackendMongo, c.UserBackend)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Empty(t, c.MinioEndpoint)
	assert.Equal(t, "blog-avatars", c.MinioBucket)
	assert.False(t, c.MinioUseSSL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, c.CORSOrigins)
	assert.Equal(t, 50, c.MaxPageSize)
	assert.Equal(t, 30, c.RateLimit)
	assert.Equal(t, time.Minute, c.RateWindow)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USER_BACKEND", "Postgres")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CORS_ORIGINS", " https://blog.example.com , ,https://admin.example.com")
	t.Setenv("MAX_PAGE_SIZE", "20")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "2h")

	c := Load()

	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, UserBackendPostgres, c.UserBackend)
	assert.True(t, c.MinioUseSSL)
	assert.Equal(t, []string{"https://blog.example.com", "https://admin.example.com"}, c.CORSOrigins)
	assert.Equal(t, 20, c.MaxPageSize)
	assert.Equal(t, 30*time.Second, c.RateWindow)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_PAGE_SIZE", "lots")
	t.Setenv("RATE_LIMIT", "-4")
	t.Setenv("RATE_WINDOW", "soon")

	c := Load()

	assert.Equal(t, 50, c.MaxPageSize)
	assert.Equal(t, 30, c.RateLimit)
	assert.Equal(t, time.Minute, c.RateWindow)
}
