package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/refparser/plugin"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
)

// memoryStore serves JSON documents keyed by Locator and counts reads.
type memoryStore struct {
	mu    sync.Mutex
	docs  map[string]string
	reads map[string]int

	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
}

func newMemoryStore(docs map[string]string) *memoryStore {
	return &memoryStore{docs: docs, reads: make(map[string]int)}
}

func (m *memoryStore) read(_ context.Context, file *plugin.FileInfo) ([]byte, error) {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[file.URL]++
	doc, ok := m.docs[file.URL]
	if !ok {
		return nil, fmt.Errorf("no document %s", file.URL)
	}
	return []byte(doc), nil
}

func (m *memoryStore) count(loc string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[loc]
}

func (m *memoryStore) registry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.AddResolver(plugin.Resolver{
		Name:    "memory",
		CanRead: plugin.Always(),
		Read:    m.read,
	}))
	require.NoError(t, reg.AddParser(plugin.NewJSONParser()))
	return reg
}

// resolveRoot parses the store's copy of loc as the root and resolves it.
func resolveRoot(t *testing.T, store *memoryStore, loc string, opts Options) (*refs.Refs, error) {
	t.Helper()
	ctx := context.Background()
	reg := store.registry(t)
	opts.Registry = reg

	graph := refs.New()
	root := graph.Add(loc)
	file, err := ReadFile(ctx, reg, loc).Await(ctx)
	require.NoError(t, err)
	root.Value, err = ParseFile(ctx, reg, file)
	require.NoError(t, err)
	root.PathType = file.Resolver
	root.Resolved = true

	return graph, ResolveExternal(ctx, graph, opts)
}

func TestReadAndParseFile(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(map[string]string{"/docs/a.json": `{"a": 1}`})
	reg := store.registry(t)

	file, err := ReadFile(ctx, reg, "/docs/a.json#/a").Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/docs/a.json", file.URL)
	assert.Equal(t, ".json", file.Extension)
	assert.Equal(t, "memory", file.Resolver)
	assert.JSONEq(t, `{"a": 1}`, string(file.Data))

	v, err := ParseFile(ctx, reg, file)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	_, err = ReadFile(ctx, reg, "/docs/missing.json").Await(ctx)
	assert.ErrorIs(t, err, referrors.ErrResolver)
}

func TestResolveExternalFetchesOnce(t *testing.T) {
	store := newMemoryStore(map[string]string{
		"/docs/root.json": `{
			"b": {"$ref": "b.json"},
			"a": {"$ref": "a.json#/definitions/x"},
			"list": [{"$ref": "a.json"}, {"$ref": "sub/c.json#/c"}],
			"local": {"$ref": "#/a"}
		}`,
		"/docs/a.json":     `{"definitions": {"x": {"type": "string"}}}`,
		"/docs/b.json":     `{"inner": {"$ref": "./a.json#/definitions"}, "c": {"$ref": "sub/c.json"}}`,
		"/docs/sub/c.json": `{"c": {"$ref": "../a.json"}}`,
	})

	graph, err := resolveRoot(t, store, "/docs/root.json", DefaultOptions())
	require.NoError(t, err)

	// sorted keys: "a", "b", "list", "local"
	assert.Equal(t,
		[]string{"/docs/root.json", "/docs/a.json", "/docs/b.json", "/docs/sub/c.json"},
		graph.Paths())
	for _, loc := range graph.Paths() {
		assert.Equal(t, 1, store.count(loc), loc)
		rec, ok := graph.Record(loc)
		require.True(t, ok)
		assert.True(t, rec.Resolved)
		assert.Equal(t, "memory", rec.PathType)
	}
	assert.False(t, graph.Circular)

	v, err := graph.Get("#/a/type")
	require.NoError(t, err)
	assert.Equal(t, "string", v)
}

func TestResolveExternalCircular(t *testing.T) {
	store := newMemoryStore(map[string]string{
		"/docs/root.json": `{"a": {"$ref": "a.json"}}`,
		"/docs/a.json":    `{"next": {"$ref": "b.json#/x"}}`,
		"/docs/b.json":    `{"x": {"back": {"$ref": "a.json"}, "root": {"$ref": "root.json#/a"}}}`,
	})

	graph, err := resolveRoot(t, store, "/docs/root.json", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, graph.Circular)
	assert.Equal(t, []refs.CircularRef{
		{Path: "/docs/b.json#/x/back", Target: "/docs/a.json"},
		{Path: "/docs/b.json#/x/root", Target: "/docs/root.json#/a"},
	}, graph.CircularRefs())
	assert.Equal(t, 1, store.count("/docs/a.json"))
}

func TestResolveExternalDisabled(t *testing.T) {
	store := newMemoryStore(map[string]string{
		"/docs/root.json": `{"a": {"$ref": "a.json"}, "b": {"$ref": "#/a"}}`,
	})
	opts := DefaultOptions()
	opts.External = false

	graph, err := resolveRoot(t, store, "/docs/root.json", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/root.json"}, graph.Paths())
	assert.Equal(t, 0, store.count("/docs/a.json"))
}

func TestResolveExternalNoBase(t *testing.T) {
	newGraph := func() *refs.Refs {
		graph := refs.New()
		root := graph.Add("")
		root.Value = map[string]any{
			"local": map[string]any{"$ref": "#/x"},
			"ext":   map[string]any{"$ref": "other.json"},
			"x":     1,
		}
		root.Resolved = true
		return graph
	}
	ctx := context.Background()
	reg := newMemoryStore(nil).registry(t)

	opts := DefaultOptions()
	opts.Registry = reg
	err := ResolveExternal(ctx, newGraph(), opts)
	var re *referrors.ResolverError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "no base URL", re.Message)
	assert.Equal(t, "other.json", re.URL)

	opts.External = false
	assert.NoError(t, ResolveExternal(ctx, newGraph(), opts))
}

func TestResolveExternalAbsoluteFromMemoryRoot(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(map[string]string{"/docs/a.json": `{"x": 1}`})
	opts := DefaultOptions()
	opts.Registry = store.registry(t)

	graph := refs.New()
	root := graph.Add("")
	root.Value = map[string]any{"a": map[string]any{"$ref": "/docs/a.json#/x"}}
	root.Resolved = true

	require.NoError(t, ResolveExternal(ctx, graph, opts))
	v, err := graph.Get("#/a")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}

func TestResolveExternalFailures(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		store := newMemoryStore(map[string]string{
			"/docs/root.json": `{"a": {"$ref": "missing.json"}}`,
		})
		_, err := resolveRoot(t, store, "/docs/root.json", DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrResolver)
	})

	t.Run("unparsable document", func(t *testing.T) {
		store := newMemoryStore(map[string]string{
			"/docs/root.json": `{"a": {"$ref": "bad.json"}}`,
			"/docs/bad.json":  `{"a": `,
		})
		_, err := resolveRoot(t, store, "/docs/root.json", DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrParser)
	})

	t.Run("document limit", func(t *testing.T) {
		store := newMemoryStore(map[string]string{
			"/docs/root.json": `{"a": {"$ref": "a.json"}, "b": {"$ref": "b.json"}}`,
			"/docs/a.json":    `{}`,
			"/docs/b.json":    `{}`,
		})
		opts := DefaultOptions()
		opts.MaxDocuments = 2
		_, err := resolveRoot(t, store, "/docs/root.json", opts)
		var le *referrors.ResourceLimitError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "documents", le.ResourceType)
	})

	t.Run("unresolved root", func(t *testing.T) {
		graph := refs.New()
		graph.Add("/docs/root.json")
		err := ResolveExternal(context.Background(), graph, DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrConfig)
	})

	t.Run("canceled", func(t *testing.T) {
		store := newMemoryStore(map[string]string{
			"/docs/root.json": `{"a": {"$ref": "a.json"}}`,
			"/docs/a.json":    `{}`,
		})
		opts := DefaultOptions()
		opts.Registry = store.registry(t)
		graph := refs.New()
		root := graph.Add("/docs/root.json")
		root.Value = map[string]any{"a": map[string]any{"$ref": "a.json"}}
		root.Resolved = true

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := ResolveExternal(ctx, graph, opts)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestResolveExternalConcurrency(t *testing.T) {
	docs := map[string]string{}
	root := `{`
	for i := range 6 {
		loc := fmt.Sprintf("/docs/%d.json", i)
		docs[loc] = `{"n": 1}`
		if i > 0 {
			root += ","
		}
		root += fmt.Sprintf(`"k%d": {"$ref": "%d.json"}`, i, i)
	}
	docs["/docs/root.json"] = root + `}`

	store := newMemoryStore(docs)
	store.delay = 20 * time.Millisecond
	opts := DefaultOptions()
	opts.Concurrency = 2

	graph, err := resolveRoot(t, store, "/docs/root.json", opts)
	require.NoError(t, err)
	assert.Equal(t, 7, graph.Len())
	assert.LessOrEqual(t, store.peak.Load(), int32(2))
	assert.Equal(t, []string{
		"/docs/root.json",
		"/docs/0.json", "/docs/1.json", "/docs/2.json",
		"/docs/3.json", "/docs/4.json", "/docs/5.json",
	}, graph.Paths())
}
