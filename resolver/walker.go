package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/internal/maputil"
	"github.com/erraggy/refparser/internal/pathutil"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/plugin"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
)

// DefaultConcurrency is the default number of documents fetched at once.
const DefaultConcurrency = 8

// Options configures ResolveExternal.
type Options struct {
	// Registry supplies the resolver and parser plugins (required)
	Registry *plugin.Registry
	// External enables following references to other documents. When false,
	// those references are left untouched.
	External bool
	// Concurrency bounds concurrent fetches; values below 1 use
	// DefaultConcurrency
	Concurrency int
	// MaxDocuments limits the number of documents in the graph; 0 means no limit
	MaxDocuments int
	// Logger receives fetch and cycle events; nil disables logging
	Logger logging.Logger
}

// DefaultOptions returns Options with external resolution enabled.
func DefaultOptions() Options {
	return Options{
		External:    true,
		Concurrency: DefaultConcurrency,
	}
}

// ResolveExternal walks the root document of graph and every document it
// reaches, fetching each referenced Locator once and recording it in graph.
// The root record must already be resolved.
//
// A reference back into a document that is still being walked marks the
// graph circular and is not followed again. The first fetch or parse failure
// aborts the walk.
func ResolveExternal(ctx context.Context, graph *refs.Refs, opts Options) error {
	root := graph.Root()
	if root == nil || !root.Resolved {
		return &referrors.ConfigError{Option: "root", Message: "root document has not been resolved"}
	}
	if opts.Registry == nil && opts.External {
		return &referrors.ConfigError{Option: "Registry", Message: "a plugin registry is required"}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	w := &walker{
		graph: graph,
		opts:  opts,
		log:   logging.OrNop(opts.Logger),
	}
	return w.walk(ctx, root, []string{root.Locator})
}

type walker struct {
	graph *refs.Refs
	opts  Options
	log   logging.Logger
}

// fetched is the outcome of one concurrent fetch.
type fetched struct {
	file     *plugin.FileInfo
	value    any
	duration time.Duration
}

// walk discovers the external Locators referenced from doc, fetches the new
// ones concurrently, and then walks each of them in discovery order. stack
// holds the Locators of the documents currently being walked.
func (w *walker) walk(ctx context.Context, doc *refs.Ref, stack []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var discovered []*refs.Ref
	pb := pathutil.Get()
	defer pathutil.Put(pb)

	err := collectRefs(doc.Value, pb, func(path, ref string) error {
		target, err := locator.Resolve(doc.Locator, ref)
		if err != nil {
			if errors.Is(err, locator.ErrNoBase) {
				if !w.opts.External {
					return nil
				}
				return &referrors.ResolverError{URL: ref, Message: "no base URL", Cause: err}
			}
			return &referrors.ResolverError{URL: ref, Message: "invalid reference", Cause: err}
		}
		targetLoc := locator.StripHash(target)
		if targetLoc == doc.Locator || !w.opts.External {
			return nil
		}
		if slices.Contains(stack, targetLoc) {
			source := doc.Locator + path
			w.graph.AddCircular(source, target)
			w.log.Debug("circular external reference", "ref", source, "target", target)
			return nil
		}
		if _, ok := w.graph.Record(targetLoc); ok {
			return nil
		}
		if w.opts.MaxDocuments > 0 && w.graph.Len() >= w.opts.MaxDocuments {
			return &referrors.ResourceLimitError{
				ResourceType: "documents",
				Limit:        int64(w.opts.MaxDocuments),
				Message:      fmt.Sprintf("cannot add %s", targetLoc),
			}
		}
		discovered = append(discovered, w.graph.Add(targetLoc))
		return nil
	})
	if err != nil {
		return err
	}
	if len(discovered) == 0 {
		return nil
	}

	if err := w.fetchAll(ctx, discovered); err != nil {
		return err
	}
	for _, rec := range discovered {
		if err := w.walk(ctx, rec, append(stack[:len(stack):len(stack)], rec.Locator)); err != nil {
			return err
		}
	}
	return nil
}

// fetchAll reads and parses records concurrently. The graph is only updated
// here, after every fetch has finished.
func (w *walker) fetchAll(ctx context.Context, records []*refs.Ref) error {
	results := make([]fetched, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for i, rec := range records {
		g.Go(func() error {
			start := time.Now()
			file, err := ReadFile(gctx, w.opts.Registry, rec.Locator).Await(gctx)
			if err != nil {
				return err
			}
			value, err := ParseFile(gctx, w.opts.Registry, file)
			if err != nil {
				return err
			}
			results[i] = fetched{file: file, value: value, duration: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, rec := range records {
		res := results[i]
		rec.Value = res.value
		rec.PathType = res.file.Resolver
		rec.Resolved = true
		w.log.Debug("resolved document",
			"url", rec.Locator,
			"resolver", res.file.Resolver,
			"bytes", len(res.file.Data),
			"duration", res.duration)
	}
	return nil
}

// collectRefs calls visit for every reference node under v in pre-order:
// object keys in sorted order, then sequence items by index. Fields next to
// "$ref" in an extended reference are walked too.
func collectRefs(v any, pb *pathutil.PathBuilder, visit func(path, ref string) error) error {
	switch node := v.(type) {
	case map[string]any:
		if ref, ok := refs.RefString(node); ok {
			if err := visit(pb.String(), ref); err != nil {
				return err
			}
		}
		for _, k := range maputil.SortedKeys(node) {
			pb.Push(k)
			err := collectRefs(node[k], pb, visit)
			pb.Pop()
			if err != nil {
				return err
			}
		}
	case []any:
		for i, item := range node {
			pb.PushIndex(i)
			err := collectRefs(item, pb, visit)
			pb.Pop()
			if err != nil {
				return err
			}
		}
	}
	return nil
}
