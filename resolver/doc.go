// Package resolver reads documents through the plugin registry and walks a
// document tree to pull every externally referenced document into a
// reference graph.
//
// ReadFile and ParseFile run one document through the resolver and parser
// plugin chains. ResolveExternal starts from the root record of a
// refs.Refs, follows each "$ref" to another document, and records the
// fetched documents in the graph:
//
//	graph := refs.New()
//	root := graph.Add("/specs/api.yaml")
//	// ... read and parse the root, then:
//	root.Value, root.Resolved = value, true
//
//	opts := resolver.DefaultOptions()
//	opts.Registry = registry
//	if err := resolver.ResolveExternal(ctx, graph, opts); err != nil {
//		return err
//	}
//
// Documents discovered at the same level are fetched concurrently, bounded by
// Options.Concurrency, and then walked in discovery order, so the graph and the
// circular references it records are the same on every run. Each Locator is
// fetched at most once per graph.
package resolver
