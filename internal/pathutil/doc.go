// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil provides JSON Pointer utilities for document traversal.
//
// The primary type is [PathBuilder], which uses push/pop semantics to build
// pointer fragments incrementally without allocating intermediate strings.
// This is particularly useful in recursive traversal where paths are built on
// each recursive call but only used when a reference is found.
//
// # PathBuilder Usage
//
// Use [Get] to obtain a pooled PathBuilder, and [Put] to return it:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("definitions")
//	path.Push("a/b")  // escaped to "a~1b"
//	path.PushIndex(0)
//	// ... recurse ...
//	path.Pop()
//
//	ref := path.String() // "#/definitions/a~1b/0"
//
// # Pointer Helpers
//
// [ParsePointer] and [FormatPointer] convert between fragments and unescaped
// tokens per RFC 6901:
//
//	tokens, _ := pathutil.ParsePointer("#/paths/~1pets/get") // ["paths", "/pets", "get"]
//	frag := pathutil.FormatPointer("$defs", "pet.json")      // "#/$defs/pet.json"
//
// # Output Path Sanitization
//
// [SanitizeOutputPath] validates and cleans output file paths. It resolves
// ".." components and rejects symlinks, directories and the input files of
// the command:
//
//	safe, err := pathutil.SanitizeOutputPath(outputPath, inputPath)
//	if err != nil {
//	    return err
//	}
package pathutil
