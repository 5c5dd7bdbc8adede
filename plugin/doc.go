// Package plugin provides the resolver and parser plugin chain used to turn a
// document locator into raw bytes and raw bytes into a document value.
//
// A Registry holds two ordered lists: resolvers, which read bytes for a
// locator (local files, HTTP), and parsers, which decode those bytes (JSON,
// YAML, TOML, XML, text, binary). Every plugin carries a Matcher deciding
// which files it handles and an Order deciding who runs first.
//
// # Quick Start
//
// Start from the built-in plugins and add your own:
//
//	reg, err := plugin.NewDefaultRegistry(plugin.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = reg.AddResolver(plugin.Resolver{
//		Name:    "mirror",
//		Order:   50,
//		CanRead: plugin.MustPattern(`^https://schemas\.example\.com/`),
//		Read: func(ctx context.Context, file *plugin.FileInfo) ([]byte, error) {
//			return os.ReadFile(filepath.Join("mirror", path.Base(file.URL)))
//		},
//	})
//
// # Matching and Ordering
//
// For each file the registry keeps the plugins whose Matcher accepts it and
// runs them in ascending Order. Order 0 means "unset" and places a plugin
// after every explicitly ordered one; plugins with equal Order run in
// registration order. The first plugin to succeed wins and failures of earlier
// candidates are discarded. When every candidate fails, the last failure is
// returned wrapped in a *referrors.ResolverError or *referrors.ParserError
// listing the plugins that were tried. When nothing matches, the error wraps
// referrors.ErrNoMatchingPlugin.
//
// Matchers are a tagged union:
//   - Always / Never
//   - Pattern / Regexp: a regular expression over the file URL
//   - Extensions: a set of lowercase extensions such as ".yaml"
//   - Func: any Go predicate
//   - Expr: an expr-lang expression over url, extension and size, for
//     matchers written in configuration files
//
// # Synchronous and Asynchronous Plugins
//
// A plugin supplies either Read/Parse (synchronous) or ReadAsync/ParseAsync
// (returning a *Future). The registry normalizes both into a Future so that
// callers never branch on calling convention.
//
// # Empty Files
//
// A parser with AllowEmpty=false rejects whitespace-only content with
// ErrEmptyFile before it runs. With AllowEmpty=true the built-in parsers
// return Undefined for JSON, YAML, TOML and XML, "" for text and []byte{} for
// binary content.
//
// # Built-in Plugins
//
//	Resolvers: file (100), http (200)
//	Parsers:   json (100), yaml (200), toml (250), xml (275), text (300), binary (400)
//
// The binary parser is a Fallback: it runs only for files no other parser
// matches, so content in an unrecognized format becomes an opaque []byte
// instead of failing resolution, while a malformed .json or .yaml still fails
// with a *referrors.ParserError.
package plugin
