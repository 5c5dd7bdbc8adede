// Package parser is the entry point of refparser: it reads a root document,
// resolves the documents it references through "$ref" pointers, and returns
// the document parsed, resolved, dereferenced or bundled.
//
// # Quick Start
//
// Dereference a file using functional options:
//
//	result, err := parser.Dereference(ctx,
//		parser.WithFilePath("schema.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Schema)
//
// Bundle a document fetched over HTTP into one self-contained document:
//
//	result, err := parser.Bundle(ctx,
//		parser.WithFilePath("https://example.com/schemas/api.json"),
//		parser.WithHTTPTimeout(10*time.Second),
//	)
//
// Resolve an in-memory document, using a base URL for its relative references:
//
//	result, err := parser.Resolve(ctx,
//		parser.WithDocument(schema),
//		parser.WithBaseURL("https://example.com/schemas/"),
//	)
//	for _, loc := range result.Refs.Paths() {
//		fmt.Println(loc)
//	}
//
// Or create a reusable Parser instance:
//
//	p := parser.New()
//	p.Circular = dereferencer.CircularError
//	r1, _ := p.Dereference(ctx, parser.Source{Path: "a.yaml"})
//	r2, _ := p.Dereference(ctx, parser.Source{Path: "b.yaml"})
//
// # Operations
//
//   - Parse reads and decodes the root document only.
//   - Resolve also reads every document reachable through external
//     references and records them in Result.Refs.
//   - Dereference replaces every reference with its target. Pure references
//     to the same target share one value.
//   - Bundle moves external documents under the root's definitions section
//     ("$defs" by default) so that only internal references remain.
//
// Every operation either succeeds completely or returns one error from
// package referrors. Result.Refs.Circular reports circular references
// independently of errors.
//
// # Plugins
//
// Documents are read by resolver plugins and decoded by parser plugins (see
// package plugin). The defaults read local files and http(s) URLs and decode
// JSON, YAML, TOML, XML, text and, as a last resort, raw bytes. Use
// WithResolver and WithParser to add or replace plugins, and WithoutResolver
// or WithoutParser to disable one:
//
//	result, err := parser.Dereference(ctx,
//		parser.WithFilePath("schema.json"),
//		parser.WithoutResolver(plugin.NameHTTP),
//	)
//
// # Logging
//
// Use WithLogger to receive plugin fallbacks, fetched documents and circular
// reference warnings through a logging.Logger.
package parser
