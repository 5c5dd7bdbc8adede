package dereferencer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
)

// recordingLogger keeps warning messages.
type recordingLogger struct {
	logging.NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) With(_ ...any) logging.Logger { return l }

// graphOf builds a resolved graph; the first document is the root.
func graphOf(docs ...any) *refs.Refs {
	g := refs.New()
	for i := 0; i < len(docs); i += 2 {
		rec := g.Add(docs[i].(string))
		rec.Value = docs[i+1]
		rec.PathType = "file"
		rec.Resolved = true
	}
	return g
}

func obj(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func ref(target string) map[string]any {
	return map[string]any{"$ref": target}
}

func rootValue(t *testing.T, g *refs.Refs) map[string]any {
	t.Helper()
	m, ok := g.Root().Value.(map[string]any)
	require.True(t, ok, "root is %T", g.Root().Value)
	return m
}

func dig(t *testing.T, v any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := v.(map[string]any)
		require.True(t, ok, "at %q: %T", k, v)
		v = m[k]
	}
	return v
}

// cyclicSchema has #/definitions/a and #/definitions/b pointing at each other.
func cyclicSchema() *refs.Refs {
	return graphOf("/s/root.json", obj(
		"definitions", obj(
			"a", obj("properties", obj("b", ref("#/definitions/b"))),
			"b", obj("properties", obj("a", ref("#/definitions/a"))),
		),
	))
}

func TestDereferenceAliases(t *testing.T) {
	g := graphOf("/s/root.json", obj(
		"x", ref("#/definitions/pet"),
		"y", ref("#/definitions/pet"),
		"list", []any{ref("#/definitions/pet"), "plain"},
		"definitions", obj("pet", obj("type", "object")),
	))

	require.NoError(t, Dereference(context.Background(), g, DefaultOptions()))
	root := rootValue(t, g)

	pet := dig(t, root, "definitions", "pet")
	assert.Equal(t, map[string]any{"type": "object"}, root["x"])
	assert.Equal(t, identity(pet), identity(root["x"]))
	assert.Equal(t, identity(pet), identity(root["y"]))
	list := root["list"].([]any)
	assert.Equal(t, identity(pet), identity(list[0]))
	assert.Equal(t, "plain", list[1])
	assert.False(t, g.Circular)
}

func TestDereferenceExtended(t *testing.T) {
	g := graphOf("/s/root.json", obj(
		"name", obj(
			"$ref", "#/definitions/name",
			"description", "overridden",
			"nested", ref("#/definitions/tag"),
		),
		"definitions", obj(
			"name", obj("type", "string", "description", "original", "tag", ref("#/definitions/tag")),
			"tag", obj("const", "t"),
		),
	))

	require.NoError(t, Dereference(context.Background(), g, DefaultOptions()))
	root := rootValue(t, g)

	name := root["name"].(map[string]any)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "overridden", name["description"], "reference fields win")
	assert.NotContains(t, name, "$ref")
	assert.Equal(t, map[string]any{"const": "t"}, name["nested"])
	assert.Equal(t, map[string]any{"const": "t"}, name["tag"], "target refs are dereferenced first")

	original := dig(t, root, "definitions", "name").(map[string]any)
	assert.Equal(t, "original", original["description"])
	assert.NotEqual(t, identity(original), identity(name), "extended refs get a new map")
}

func TestDereferenceCircularAllow(t *testing.T) {
	g := cyclicSchema()
	log := &recordingLogger{}
	opts := DefaultOptions()
	opts.Logger = log

	require.NoError(t, Dereference(context.Background(), g, opts))
	assert.True(t, g.Circular)
	assert.NotEmpty(t, log.warns)

	root := rootValue(t, g)
	a := dig(t, root, "definitions", "a")
	b := dig(t, root, "definitions", "b")
	assert.Equal(t, identity(b), identity(dig(t, a, "properties", "b")))
	assert.Equal(t, identity(a), identity(dig(t, b, "properties", "a")))
	assert.Equal(t, identity(a), identity(dig(t, a, "properties", "b", "properties", "a")))

	require.Len(t, g.CircularRefs(), 1)
	assert.Equal(t, "/s/root.json#/definitions/a", g.CircularRefs()[0].Target)
}

func TestDereferenceCircularIgnore(t *testing.T) {
	g := cyclicSchema()
	log := &recordingLogger{}
	opts := DefaultOptions()
	opts.Circular = CircularIgnore
	opts.Logger = log

	require.NoError(t, Dereference(context.Background(), g, opts))
	assert.True(t, g.Circular)
	assert.Empty(t, log.warns)

	root := rootValue(t, g)
	a := dig(t, root, "definitions", "a")
	assert.Equal(t, identity(a), identity(dig(t, a, "properties", "b", "properties", "a")))
}

func TestDereferenceCircularError(t *testing.T) {
	g := cyclicSchema()
	opts := DefaultOptions()
	opts.Circular = CircularError

	err := Dereference(context.Background(), g, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, referrors.ErrCircularReference)
	assert.True(t, g.Circular)

	var ce *referrors.CircularReferenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{
		"/s/root.json#/definitions/a",
		"/s/root.json#/definitions/a/properties/b",
		"/s/root.json#/definitions/b/properties/a",
		"/s/root.json#/definitions/a",
	}, ce.Cycle)
	assert.Equal(t, []string{"/s/root.json"}, ce.Locators)
	assert.Contains(t, err.Error(), "/definitions/a")
	assert.Contains(t, err.Error(), "/definitions/b")
}

func TestDereferenceReferenceOnlyCycle(t *testing.T) {
	newGraph := func() *refs.Refs {
		return graphOf("/s/root.json", obj("a", ref("#/b"), "b", ref("#/a")))
	}

	// A cycle of bare references has no value to inline, so the reference
	// that closes it is kept and both slots share it.
	for _, mode := range []CircularMode{CircularAllow, CircularIgnore} {
		t.Run(mode.String(), func(t *testing.T) {
			g := newGraph()
			opts := DefaultOptions()
			opts.Circular = mode
			require.NoError(t, Dereference(context.Background(), g, opts))
			assert.True(t, g.Circular)

			root := rootValue(t, g)
			assert.Equal(t, ref("#/b"), root["a"])
			assert.Equal(t, ref("#/b"), root["b"])
			assert.Equal(t, identity(root["a"]), identity(root["b"]))
		})
	}

	t.Run("error", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Circular = CircularError
		err := Dereference(context.Background(), newGraph(), opts)

		var ce *referrors.CircularReferenceError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"/s/root.json#/a", "/s/root.json#/b", "/s/root.json#/a"}, ce.Cycle)
	})
}

func TestDereferenceExternal(t *testing.T) {
	newGraph := func() *refs.Refs {
		return graphOf(
			"/s/root.json", obj(
				"pet", ref("pet.json#/definitions/pet"),
				"deep", ref("#/pet/properties/tag"),
			),
			"/s/pet.json", obj("definitions", obj(
				"pet", obj("properties", obj("tag", ref("#/definitions/tag"))),
				"tag", obj("type", "string"),
			)),
		)
	}

	t.Run("followed", func(t *testing.T) {
		g := newGraph()
		require.NoError(t, Dereference(context.Background(), g, DefaultOptions()))
		root := rootValue(t, g)
		assert.Equal(t, map[string]any{"type": "string"}, dig(t, root, "pet", "properties", "tag"))
		assert.Equal(t, map[string]any{"type": "string"}, root["deep"])
		assert.Equal(t, identity(root["deep"]), identity(dig(t, root, "pet", "properties", "tag")))
	})

	t.Run("disabled", func(t *testing.T) {
		g := newGraph()
		opts := DefaultOptions()
		opts.External = false
		require.NoError(t, Dereference(context.Background(), g, opts))
		root := rootValue(t, g)
		assert.Equal(t, ref("pet.json#/definitions/pet"), root["pet"])
	})

	t.Run("cycle across documents", func(t *testing.T) {
		g := graphOf(
			"/s/root.json", obj("a", ref("a.json")),
			"/s/a.json", obj("next", ref("b.json")),
			"/s/b.json", obj("back", ref("a.json")),
		)
		opts := DefaultOptions()
		opts.Circular = CircularError
		err := Dereference(context.Background(), g, opts)

		var ce *referrors.CircularReferenceError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"/s/a.json", "/s/b.json"}, ce.Locators)
	})
}

func TestDereferenceRootReference(t *testing.T) {
	g := graphOf(
		"/s/root.json", ref("other.json"),
		"/s/other.json", obj("type", "object"),
	)
	require.NoError(t, Dereference(context.Background(), g, DefaultOptions()))
	assert.Equal(t, map[string]any{"type": "object"}, g.Root().Value)
}

func TestDereferenceErrors(t *testing.T) {
	t.Run("missing pointer", func(t *testing.T) {
		g := graphOf("/s/root.json", obj("a", ref("#/missing")))
		err := Dereference(context.Background(), g, DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrInvalidPointer)
	})

	t.Run("unresolved document", func(t *testing.T) {
		g := graphOf("/s/root.json", obj("a", ref("other.json")))
		err := Dereference(context.Background(), g, DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrResolver)
	})

	t.Run("no base", func(t *testing.T) {
		g := graphOf("", obj("a", ref("other.json")))
		err := Dereference(context.Background(), g, DefaultOptions())
		var re *referrors.ResolverError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "no base URL", re.Message)
	})

	t.Run("unresolved root", func(t *testing.T) {
		err := Dereference(context.Background(), refs.New(), DefaultOptions())
		assert.ErrorIs(t, err, referrors.ErrConfig)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g := graphOf("/s/root.json", obj("a", ref("#/b"), "b", 1))
		assert.ErrorIs(t, Dereference(ctx, g, DefaultOptions()), context.Canceled)
	})
}

func TestDereferenceInMemoryRoot(t *testing.T) {
	g := graphOf("", obj("a", ref("#/b"), "b", obj("c", 1)))
	require.NoError(t, Dereference(context.Background(), g, DefaultOptions()))
	assert.Equal(t, map[string]any{"c": 1}, rootValue(t, g)["a"])
}

func TestParseCircularMode(t *testing.T) {
	tests := []struct {
		in   string
		want CircularMode
	}{
		{"", CircularAllow},
		{"allow", CircularAllow},
		{"true", CircularAllow},
		{"false", CircularError},
		{"Error", CircularError},
		{"ignore", CircularIgnore},
	}
	for _, tt := range tests {
		got, err := ParseCircularMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCircularMode("sometimes")
	assert.Error(t, err)

	var m CircularMode
	require.NoError(t, m.UnmarshalText([]byte("ignore")))
	assert.Equal(t, CircularIgnore, m)
	text, err := CircularError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(text))
	assert.Equal(t, "CircularMode(9)", CircularMode(9).String())
}
