// Package referrors provides structured error types for refparser.
//
// Import path: github.com/erraggy/refparser/referrors
//
// Every top-level operation (parse, resolve, dereference, bundle) either
// succeeds or fails with exactly one of these errors, possibly wrapped with
// context. Callers distinguish the categories with [errors.Is] and extract
// details with [errors.As].
//
// # Error Types
//
//   - [ResolverError]: no resolver could read a URL, or all matching resolvers failed
//   - [ParserError]: no parser could decode a file, all parsers failed, or empty content was rejected
//   - [CircularReferenceError]: a cycle was found while circular references are disallowed
//   - [InvalidPointerError]: a JSON Pointer fragment does not exist in its target
//   - [ResourceLimitError]: a file or document-count limit was exceeded
//   - [ConfigError]: invalid options or input
//
// # Sentinel Errors
//
//   - [ErrResolver]: Matches any [ResolverError]
//   - [ErrParser]: Matches any [ParserError]
//   - [ErrCircularReference]: Matches any [CircularReferenceError]
//   - [ErrInvalidPointer]: Matches any [InvalidPointerError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//   - [ErrNoMatchingPlugin]: wrapped as the Cause of a resolver or parser
//     error when no plugin accepted the file
//   - [ErrPathTraversal]: wrapped as the Cause of a resolver error when the
//     file resolver refused a path outside its root
//
// # Usage Examples
//
//	schema, err := parser.Dereference(ctx, parser.WithFilePath("schema.json"),
//	    parser.WithCircular(parser.CircularError))
//	if errors.Is(err, referrors.ErrCircularReference) {
//	    var circ *referrors.CircularReferenceError
//	    errors.As(err, &circ)
//	    fmt.Println(strings.Join(circ.Cycle, " -> "))
//	}
//
// Resolver and parser errors keep the last plugin failure as their Cause:
//
//	var resErr *referrors.ResolverError
//	if errors.As(err, &resErr) && errors.Is(resErr, os.ErrNotExist) {
//	    // The referenced file doesn't exist
//	}
package referrors
