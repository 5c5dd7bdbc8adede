// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"
)

// WriteFiles writes each name/content pair under a fresh temporary directory
// and returns the directory. Names may contain subdirectories.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// WriteTempYAML marshals doc to YAML in a temporary file and returns its path.
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}

	return tmpFile
}

// WriteTempJSON marshals doc to indented JSON in a temporary file and returns
// its path.
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}

	return tmpFile
}

// PetStore returns a small multi-document schema set: a YAML root that refers
// to a JSON definitions file twice, which in turn refers back to the root and
// to a nested YAML file. Pass it to WriteFiles.
func PetStore() map[string]string {
	return map[string]string{
		"api.yaml": `title: Pet Store
properties:
  pet:
    $ref: defs/pet.json#/definitions/Pet
  pets:
    type: array
    items:
      $ref: ./defs/pet.json#/definitions/Pet
  owner:
    $ref: defs/pet.json#/definitions/Owner
    description: the pet's owner
`,
		"defs/pet.json": `{
  "definitions": {
    "Pet": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "tag": {"$ref": "tags/tag.yaml"}
      }
    },
    "Owner": {
      "type": "object",
      "description": "an owner",
      "properties": {
        "pets": {"$ref": "../api.yaml#/properties/pets"}
      }
    }
  }
}`,
		"defs/tags/tag.yaml": `type: string
enum: [cat, dog]
`,
	}
}
