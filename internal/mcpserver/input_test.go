package mcpserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/refparser/internal/testutil"
)

func TestSpecInput_ResolveFile(t *testing.T) {
	specCache.reset()
	dir := testutil.WriteFiles(t, testutil.PetStore())
	input := specInput{File: filepath.Join(dir, "api.yaml")}

	result, err := input.resolve(t.Context(), opResolve, "")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Refs.Len())
}

func TestSpecInput_ResolveContent(t *testing.T) {
	specCache.reset()
	content := `type: object
properties:
  name:
    $ref: "#/definitions/name"
definitions:
  name:
    type: string
`
	input := specInput{Content: content}
	result, err := input.resolve(t.Context(), opDereference, "")
	require.NoError(t, err)

	name, err := result.Refs.Get("#/properties/name/type")
	require.NoError(t, err)
	assert.Equal(t, "string", name)
}

func TestSpecInput_ResolveContentWithBaseURL(t *testing.T) {
	specCache.reset()
	dir := testutil.WriteFiles(t, map[string]string{
		"defs.yaml": "id:\n  type: integer\n",
	})
	input := specInput{
		Content: `{"properties": {"id": {"$ref": "defs.yaml#/id"}}}`,
		BaseURL: filepath.Join(dir, "root.json"),
	}
	result, err := input.resolve(t.Context(), opDereference, "")
	require.NoError(t, err)

	got, err := result.Refs.Get("#/properties/id/type")
	require.NoError(t, err)
	assert.Equal(t, "integer", got)
}

func TestSpecInput_ResolveNoneProvided(t *testing.T) {
	input := specInput{}
	_, err := input.resolve(t.Context(), opParse, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_ResolveMultipleProvided(t *testing.T) {
	input := specInput{File: "foo.yaml", Content: "bar"}
	_, err := input.resolve(t.Context(), opParse, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_ResolveFileNotFound(t *testing.T) {
	specCache.reset()
	input := specInput{File: "/nonexistent/path.yaml"}
	_, err := input.resolve(t.Context(), opParse, "")
	assert.Error(t, err)
	assert.Equal(t, 0, specCache.size())
}

func TestSpecInput_InlineSizeLimit(t *testing.T) {
	saved := cfg.MaxInlineSize
	cfg.MaxInlineSize = 8
	t.Cleanup(func() { cfg.MaxInlineSize = saved })

	err := specInput{Content: `{"type": "string"}`}.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum 8 bytes")
}

func TestSpecCache_HitOnSameFile(t *testing.T) {
	specCache.reset()
	dir := testutil.WriteFiles(t, testutil.PetStore())
	input := specInput{File: filepath.Join(dir, "api.yaml")}

	// First call populates cache.
	result1, err := input.resolve(t.Context(), opResolve, "")
	require.NoError(t, err)
	assert.Equal(t, 1, specCache.size())

	// Second call should return the same pointer (cache hit).
	result2, err := input.resolve(t.Context(), opResolve, "")
	require.NoError(t, err)
	assert.Same(t, result1, result2, "expected same pointer from cache hit")
}

func TestSpecCache_KeyedByOperationAndSettings(t *testing.T) {
	specCache.reset()
	dir := testutil.WriteFiles(t, testutil.PetStore())
	input := specInput{File: filepath.Join(dir, "api.yaml")}

	resolved, err := input.resolve(t.Context(), opResolve, "")
	require.NoError(t, err)
	bundled, err := input.resolve(t.Context(), opBundle, "")
	require.NoError(t, err)
	assert.NotSame(t, resolved, bundled)

	other, err := input.resolve(t.Context(), opBundle, "defs=definitions")
	require.NoError(t, err)
	assert.NotSame(t, bundled, other)
	assert.Equal(t, 3, specCache.size())
}

func TestSpecCache_MissOnModifiedFile(t *testing.T) {
	specCache.reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: V1\n"), 0o600))

	input := specInput{File: path}
	result1, err := input.resolve(t.Context(), opParse, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "V1"}, result1.Schema)

	require.NoError(t, os.WriteFile(path, []byte("title: V2\n"), 0o600))

	// Ensure mtime differs from the first write on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	result2, err := input.resolve(t.Context(), opParse, "")
	require.NoError(t, err)
	assert.NotSame(t, result1, result2)
	assert.Equal(t, map[string]any{"title": "V2"}, result2.Schema)
}

func TestSpecCache_ContentHash(t *testing.T) {
	specCache.reset()
	input := specInput{Content: `{"title": "Hash Test"}`}

	result1, err := input.resolve(t.Context(), opParse, "")
	require.NoError(t, err)

	// Same content should hit cache.
	result2, err := input.resolve(t.Context(), opParse, "")
	require.NoError(t, err)
	assert.Same(t, result1, result2)

	// A different base location is a different document set.
	withBase := specInput{Content: input.Content, BaseURL: "/tmp/other.json"}
	assert.NotEqual(t, makeCacheKey(input, opParse, ""), makeCacheKey(withBase, opParse, ""))
}

func TestSpecCache_LRUEviction(t *testing.T) {
	specCache.reset()

	// Insert 11 documents into a cache of size 10.
	// Track the first content's cache key to verify it is evicted.
	var firstKey string
	for i := range 11 {
		content := `title: "Doc ` + string(rune('A'+i)) + `"` + "\n"
		if i == 0 {
			firstKey = makeCacheKey(specInput{Content: content}, opParse, "")
		}
		input := specInput{Content: content}
		_, err := input.resolve(t.Context(), opParse, "")
		require.NoError(t, err)
	}

	// Cache should not exceed max size.
	assert.Equal(t, 10, specCache.size())

	// The first entry (oldest) should have been evicted.
	assert.Nil(t, specCache.get(firstKey), "expected oldest entry to be evicted")
}

func TestSpecCache_Sweep(t *testing.T) {
	specCache.reset()
	specCache.putWithTTL("expired", nil, -time.Second)
	specCache.putWithTTL("live", nil, time.Hour)

	specCache.sweep()
	assert.Equal(t, 1, specCache.size())
}
