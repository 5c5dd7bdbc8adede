package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/refparser/parser"
)

// specInput represents the three ways a document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"     jsonschema:"Path to a JSON or YAML document on disk"`
	URL     string `json:"url,omitempty"      jsonschema:"URL to fetch the document from"`
	Content string `json:"content,omitempty"  jsonschema:"Inline document content (JSON or YAML)"`
	BaseURL string `json:"base_url,omitempty" jsonschema:"Location used to resolve relative references of inline content"`
}

// operation names one of the parser entry points.
type operation string

const (
	opParse       operation = "parse"
	opResolve     operation = "resolve"
	opDereference operation = "dereference"
	opBundle      operation = "bundle"
)

// run calls the parser entry point for op.
func (op operation) run(ctx context.Context, opts ...parser.Option) (*parser.Result, error) {
	switch op {
	case opParse:
		return parser.Parse(ctx, opts...)
	case opResolve:
		return parser.Resolve(ctx, opts...)
	case opDereference:
		return parser.Dereference(ctx, opts...)
	case opBundle:
		return parser.Bundle(ctx, opts...)
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

// cacheEntry holds a cached result with LRU ordering and TTL expiry.
type cacheEntry struct {
	result    *parser.Result
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache of operation results.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string. Every key also
// carries the operation and its settings.
// Entries have per-type TTLs and a background sweeper removes expired entries.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *parser.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.result
	}
	return nil
}

// putWithTTL stores a result with a specific TTL, evicting the oldest entry if at capacity.
func (c *specCacheStore) putWithTTL(key string, result *parser.Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(ttl)}

	// If already cached, just update.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	// Evict oldest if at capacity.
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	var sweeping atomic.Bool
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sweeping.CompareAndSwap(false, true) {
					continue
				}
				c.sweep()
				sweeping.Store(false)
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for running op with settings on the given
// input. Returns empty string when the input cannot be keyed.
func makeCacheKey(s specInput, op operation, settings string) string {
	var source string
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		source = fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.BaseURL + "\x00" + s.Content))
		source = fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		source = fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
	return fmt.Sprintf("%s|%s|%s", op, settings, source)
}

// validate checks that exactly one input is set and inline content is within
// the size limit.
func (s specInput) validate() error {
	count := 0
	if s.File != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	if s.Content != "" {
		count++
	}
	if count != 1 {
		return fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	// Enforce inline content size limit.
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set REFPARSER_MCP_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}
	return nil
}

// resolve runs op on whichever input was provided, using the cache for file,
// URL, and content inputs. settings identifies extraOpts in cache keys.
func (s specInput) resolve(ctx context.Context, op operation, settings string, extraOpts ...parser.Option) (*parser.Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	// Determine cache key and TTL (skip when caching is disabled).
	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s, op, settings)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	opts := append([]parser.Option(nil), extraOpts...)
	switch {
	case s.File != "":
		opts = append(opts, parser.WithFilePath(s.File))
	case s.URL != "":
		opts = append(opts, parser.WithFilePath(s.URL))
	case s.Content != "":
		opts = append(opts, parser.WithReader(strings.NewReader(s.Content)))
		if s.BaseURL != "" {
			opts = append(opts, parser.WithBaseURL(s.BaseURL))
		}
	}
	// The server's limits win over the caller's options. Documents referenced
	// by any input may be remote, so the SSRF-safe resolver applies unless
	// private IPs are allowed.
	opts = append(opts, parser.WithMaxDocuments(cfg.MaxDocuments))
	if !cfg.AllowPrivateIPs {
		opts = append(opts, parser.WithResolver(safeHTTPResolver()))
	}

	result, err := op.run(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// Cache the result for future calls (key is empty when caching is disabled).
	if key != "" {
		specCache.putWithTTL(key, result, ttl)
	}

	return result, nil
}
