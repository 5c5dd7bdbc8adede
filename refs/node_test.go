package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefString(t *testing.T) {
	ref, ok := RefString(map[string]any{"$ref": "#/a"})
	assert.True(t, ok)
	assert.Equal(t, "#/a", ref)

	_, ok = RefString(map[string]any{"$ref": 1})
	assert.False(t, ok, "non-string $ref is plain data")

	_, ok = RefString("#/a")
	assert.False(t, ok)

	assert.True(t, IsRef(map[string]any{"$ref": ""}))
	assert.False(t, IsRef(nil))
}

func TestIsExtended(t *testing.T) {
	assert.False(t, IsExtended(map[string]any{"$ref": "#/a"}))
	assert.True(t, IsExtended(map[string]any{"$ref": "#/a", "title": "x"}))
	assert.False(t, IsExtended(map[string]any{"title": "x", "type": "y"}))
	assert.False(t, IsExtended([]any{"$ref"}))
}

func TestMerge(t *testing.T) {
	t.Run("node fields win", func(t *testing.T) {
		node := map[string]any{"$ref": "#/a", "description": "mine", "extra": true}
		target := map[string]any{"type": "string", "description": "theirs"}

		got := Merge(node, target)
		assert.Equal(t, map[string]any{"type": "string", "description": "mine", "extra": true}, got)
		assert.Equal(t, "theirs", target["description"], "target is not modified")
	})

	t.Run("scalar target without extras", func(t *testing.T) {
		assert.Equal(t, "text", Merge(map[string]any{"$ref": "#/a"}, "text"))
	})

	t.Run("scalar target with extras", func(t *testing.T) {
		got := Merge(map[string]any{"$ref": "#/a", "title": "t"}, 5)
		assert.Equal(t, map[string]any{"title": "t"}, got)
	})
}
