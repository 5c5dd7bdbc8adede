package cliutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	doc := map[string]any{"a": []any{1, "<b>"}}

	data, err := Encode(doc, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    \"<b>\"\n  ]\n}\n", string(data))

	data, err = Encode(doc, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a:\n")
	assert.Contains(t, string(data), "- <b>\n")

	_, err = Encode(doc, "xml")
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("json"))
	assert.NoError(t, ValidateFormat("yaml"))
	assert.ErrorContains(t, ValidateFormat("text"), "Valid formats: json, yaml")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("out.json", FormatYAML))
	assert.Equal(t, FormatYAML, FormatFor("out.yml", FormatJSON))
	assert.Equal(t, FormatJSON, FormatFor("out.txt", FormatJSON))
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	path, err := WriteOutput(&buf, "-", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "x", buf.String())

	dir := t.TempDir()
	target := filepath.Join(dir, "out.json")
	path, err = WriteOutput(&buf, target, []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, target, path)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	link := filepath.Join(dir, "link.json")
	require.NoError(t, os.Symlink(target, link))
	_, err = WriteOutput(&buf, link, []byte("{}"))
	assert.ErrorContains(t, err, "symlink")

	_, err = WriteOutput(&buf, target, []byte("{}"), target)
	assert.ErrorContains(t, err, "would overwrite input file")
}
