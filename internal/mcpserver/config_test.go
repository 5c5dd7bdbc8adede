package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearMCPEnv clears all REFPARSER_MCP_* env vars to isolate tests from the ambient environment.
func clearMCPEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REFPARSER_MCP_CACHE_ENABLED", "REFPARSER_MCP_CACHE_MAX_SIZE",
		"REFPARSER_MCP_CACHE_FILE_TTL", "REFPARSER_MCP_CACHE_URL_TTL",
		"REFPARSER_MCP_CACHE_CONTENT_TTL", "REFPARSER_MCP_CACHE_SWEEP_INTERVAL",
		"REFPARSER_MCP_MAX_INLINE_SIZE", "REFPARSER_MCP_MAX_DOCUMENTS",
		"REFPARSER_MCP_ALLOW_PRIVATE_IPS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearMCPEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 5*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 500, c.MaxDocuments)
	assert.False(t, c.AllowPrivateIPs)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("REFPARSER_MCP_CACHE_ENABLED", "false")
	t.Setenv("REFPARSER_MCP_CACHE_MAX_SIZE", "50")
	t.Setenv("REFPARSER_MCP_CACHE_FILE_TTL", "30m")
	t.Setenv("REFPARSER_MCP_CACHE_URL_TTL", "2m")
	t.Setenv("REFPARSER_MCP_CACHE_CONTENT_TTL", "10m")
	t.Setenv("REFPARSER_MCP_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("REFPARSER_MCP_MAX_INLINE_SIZE", "5242880")
	t.Setenv("REFPARSER_MCP_MAX_DOCUMENTS", "20")
	t.Setenv("REFPARSER_MCP_ALLOW_PRIVATE_IPS", "true")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 30*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 2*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.Equal(t, 20, c.MaxDocuments)
	assert.True(t, c.AllowPrivateIPs)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("REFPARSER_MCP_CACHE_MAX_SIZE", "banana")
	t.Setenv("REFPARSER_MCP_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("REFPARSER_MCP_CACHE_ENABLED", "maybe")
	t.Setenv("REFPARSER_MCP_MAX_INLINE_SIZE", "abc")
	t.Setenv("REFPARSER_MCP_MAX_DOCUMENTS", "-1")
	t.Setenv("REFPARSER_MCP_CACHE_SWEEP_INTERVAL", "0s")

	c := loadConfig()

	// Invalid values should fall back to defaults.
	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 500, c.MaxDocuments)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("REFPARSER_MCP_MAX_DOCUMENTS", "42")
	t.Setenv("REFPARSER_MCP_CACHE_URL_TTL", "10m")

	c := loadConfig()

	assert.Equal(t, 42, c.MaxDocuments)
	assert.Equal(t, 10*time.Minute, c.CacheURLTTL)
	// Unchanged defaults:
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.True(t, c.CacheEnabled)
}
