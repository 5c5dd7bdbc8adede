// Package refs implements the reference graph built while resolving a
// document: one record per document Locator, plus JSON Pointer lookups that
// follow "$ref" nodes across documents.
//
// A Locator is the normalized path or URL of a whole document, without a
// fragment; an in-memory root with no base has the Locator "". A reference
// path is a Locator followed by a JSON Pointer fragment, for example
// "/schemas/pet.json#/definitions/Pet".
//
// # Queries
//
// Paths given to Exists, Get, Set and Lookup resolve against the root
// document, so "#/definitions/Pet" addresses the root and "pet.json#/Pet" a
// sibling file:
//
//	result, _ := parser.Resolve(ctx, parser.WithFilePath("api.yaml"))
//	if result.Refs.Exists("common.yaml#/definitions/Error") {
//		v, _ := result.Refs.Get("common.yaml#/definitions/Error")
//		fmt.Println(v)
//	}
//	for _, loc := range result.Refs.Paths("http") {
//		fmt.Println("fetched", loc)
//	}
//
// Pointers that cross a reference node mid-path continue in the node's
// target: if "#/a" is {"$ref": "other.json#/x"}, then "#/a/b" resolves to
// "other.json#/x/b".
//
// # Reference Nodes
//
// A reference node is a map with a string "$ref" field. A pure reference
// holds nothing else; an extended reference has sibling fields and stands for
// the target merged with those fields (see Merge).
package refs
