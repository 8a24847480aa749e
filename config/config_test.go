package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.False(t, cfg.Debug)
	assert.Equal(t, "/api/v1/authq", cfg.APIPrefix)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 60*24*7, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "6379", cfg.RedisPort)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("API_PREFIX", "/api/v2/test")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("BACKEND_CORS_ORIGINS", "http://localhost:8080, https://example.com")
	t.Setenv("MYSQL_USERNAME", "svc")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_DATABASE", "users")

	cfg := Load()

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/api/v2/test", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, []string{"http://localhost:8080", "https://example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "svc:pw@tcp(db.internal:3306)/users?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestReload_OverridesLoadedEnv(t *testing.T) {
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	t.Cleanup(func() {
		os.Unsetenv("API_PREFIX")
		os.Unsetenv("DEBUG")
	})

	require.NoError(t, os.WriteFile(".env", []byte("API_PREFIX=/old\nDEBUG=false\n"), 0644))
	cfg := Load()
	require.Equal(t, "/old", cfg.APIPrefix)

	// Load 已把 .env 的键写进了进程环境，普通 Load 拿不到新值
	require.NoError(t, os.WriteFile(".env", []byte("API_PREFIX=/new\nDEBUG=true\n"), 0644))
	stale := Load()
	assert.Equal(t, "/old", stale.APIPrefix)

	fresh := Reload()
	assert.Equal(t, "/new", fresh.APIPrefix)
	assert.True(t, fresh.Debug)
}

func TestAllowOrigin(t *testing.T) {
	cfg := &Config{CORSOrigins: []string{"http://a.com", "http://b.com"}}
	assert.True(t, cfg.AllowOrigin("http://a.com"))
	assert.False(t, cfg.AllowOrigin("http://c.com"))

	wildcard := &Config{CORSOrigins: []string{"*"}}
	assert.True(t, wildcard.AllowOrigin("http://anything.com"))
}
