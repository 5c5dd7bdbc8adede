// Package refparser parses JSON and YAML documents that use JSON Reference
// ($ref) pointers and resolves, dereferences or bundles those pointers across
// files and URLs.
//
// A $ref is an object of the form {"$ref": "other.yaml#/definitions/Pet"}: a
// location, optionally followed by a JSON Pointer fragment. refparser follows
// these pointers through any number of documents, detects circular chains,
// and can either replace every reference with its target or gather every
// external document into a single self-contained one.
//
// # Overview
//
// The module consists of these packages:
//
//   - parser: the entry points Parse, Resolve, Dereference and Bundle
//   - refs: the set of documents read for one operation, with JSON Pointer
//     lookups across them
//   - resolver: concurrent discovery and reading of referenced documents
//   - dereferencer: in-place replacement of references, with circular modes
//   - bundler: rewriting external references into one document
//   - plugin: the registry of resolvers (file, http) and parsers (json, yaml,
//     toml, xml, text, binary) that read and decode documents
//   - config: layered configuration from files and REFPARSER_* variables
//   - referrors: typed errors with sentinels for errors.Is
//   - logging: the Logger interface and slog/zerolog adapters
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/erraggy/refparser
//
// # Quick Start
//
// Dereference a document:
//
//	import "github.com/erraggy/refparser/parser"
//
//	result, err := parser.Dereference(ctx, parser.WithFilePath("schema.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Circular() {
//		log.Println("document contains circular references")
//	}
//	fmt.Println(result.Schema)
//
// Bundle a multi-file document under components/schemas:
//
//	result, err := parser.Bundle(ctx,
//		parser.WithFilePath("api.yaml"),
//		parser.WithDefinitionsKey("components/schemas"),
//	)
//
// Look up a value anywhere in the resolved document set:
//
//	result, err := parser.Resolve(ctx, parser.WithFilePath("api.yaml"))
//	pet, err := result.Refs.Get("defs/pet.json#/definitions/Pet")
//
// # Plugins
//
// Documents are read by resolvers and decoded by parsers, both tried in
// ascending Order among those whose matcher accepts the file. Custom plugins
// are added with parser.WithResolver and parser.WithParser; built-ins are
// replaced by registering a plugin with the same name, or removed with
// parser.WithoutResolver and parser.WithoutParser.
//
// # Security Considerations
//
//   - Path traversal protection: parser.WithFileRoot confines the file
//     resolver to a directory tree
//   - Resource limits: parser.WithMaxDocuments and parser.WithMaxFileSize cap
//     the documents read and their size
//   - File permissions: CLI output files are created with 0600 permissions
//     and symlinks are refused
//   - The MCP server fetches URLs through a client that refuses private and
//     loopback addresses
//
// # Error Handling
//
// Every failure is one of the types in referrors and matches a sentinel with
// errors.Is, for example referrors.ErrResolver for an unreadable document or
// referrors.ErrCircularReference when circular references are an error.
//
// # Command-Line Interface
//
// The refparser command exposes the four operations:
//
//	# List every document a schema references
//	refparser resolve api.yaml
//
//	# Produce a single-file schema
//	refparser bundle -o bundled.yaml api.yaml
//
//	# Serve the operations to MCP clients
//	refparser mcp
//
// Install the CLI:
//
//	go install github.com/erraggy/refparser/cmd/refparser@latest
package refparser
