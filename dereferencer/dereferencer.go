// Package dereferencer replaces every "$ref" node of a resolved document with
// the value it points to.
//
// Dereference works in place on the root record of a resolved refs.Refs.
// References to the same target end up sharing one value: after
// dereferencing, two pure references to "#/definitions/Pet" hold the same
// map. An extended reference (a "$ref" with sibling fields) becomes a new map
// holding the target's fields overlaid with its own.
//
// A reference whose target encloses it is circular. How it is handled depends
// on Options.Circular; the graph's Circular flag is set in every mode. In the
// default mode the result contains cycles, so it must not be serialized
// without cycle detection.
package dereferencer

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strconv"

	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/internal/maputil"
	"github.com/erraggy/refparser/internal/pathutil"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
)

// Options configures Dereference.
type Options struct {
	// Circular selects the circular reference policy
	Circular CircularMode
	// External enables replacing references to other documents. When false
	// they are left as-is.
	External bool
	// Logger receives circular reference warnings; nil disables logging
	Logger logging.Logger
}

// DefaultOptions returns Options allowing circular references and
// dereferencing external documents.
func DefaultOptions() Options {
	return Options{Circular: CircularAllow, External: true}
}

// Dereference replaces the reference nodes reachable from the root document of
// graph with their targets. The root record's Value is updated, which matters
// when the root itself is a reference.
func Dereference(ctx context.Context, graph *refs.Refs, opts Options) error {
	root := graph.Root()
	if root == nil || !root.Resolved {
		return &referrors.ConfigError{Option: "root", Message: "root document has not been resolved"}
	}
	d := &dereferencer{
		graph: graph,
		opts:  opts,
		log:   logging.OrNop(opts.Logger),
		memo:  make(map[string]any),
		seen:  make(map[uintptr]bool),
	}
	value, err := d.crawl(ctx, root.Value, key(root.Locator))
	if err != nil {
		return err
	}
	root.Value = value
	d.log.Debug("dereferenced document",
		"url", root.Locator,
		"refs", d.count,
		"circular", graph.Circular)
	return nil
}

// frame is one value on the current crawl path: a container being walked or
// a reference being replaced.
type frame struct {
	path  string
	id    uintptr
	value any
	ref   bool
}

type dereferencer struct {
	graph *refs.Refs
	opts  Options
	log   logging.Logger

	// memo maps target paths to their dereferenced values
	memo map[string]any
	// seen holds the containers already walked
	seen  map[uintptr]bool
	stack []frame
	count int
}

// crawl dereferences v in place and returns its replacement. path is the
// reference path of v.
func (d *dereferencer) crawl(ctx context.Context, v any, path string) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		if refs.IsRef(node) {
			return d.derefNode(ctx, node, path)
		}
		id := identity(node)
		if d.seen[id] {
			return node, nil
		}
		d.seen[id] = true
		d.push(frame{path: path, id: id, value: node})
		defer d.pop()
		for _, k := range maputil.SortedKeys(node) {
			child, err := d.crawl(ctx, node[k], join(path, k))
			if err != nil {
				return nil, err
			}
			node[k] = child
		}
		return node, nil
	case []any:
		id := identity(node)
		if id != 0 {
			if d.seen[id] {
				return node, nil
			}
			d.seen[id] = true
		}
		d.push(frame{path: path, id: id, value: node})
		defer d.pop()
		for i, item := range node {
			child, err := d.crawl(ctx, item, join(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			node[i] = child
		}
		return node, nil
	default:
		return v, nil
	}
}

// derefNode returns the value that replaces the reference node at path.
func (d *dereferencer) derefNode(ctx context.Context, node map[string]any, path string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref, _ := refs.RefString(node)
	doc := locator.StripHash(path)
	target, err := locator.Resolve(doc, ref)
	if err != nil {
		if errors.Is(err, locator.ErrNoBase) {
			return nil, &referrors.ResolverError{URL: ref, Message: "no base URL", Cause: err}
		}
		return nil, &referrors.ResolverError{URL: ref, Message: "invalid reference", Cause: err}
	}
	external := locator.StripHash(target) != doc

	// sibling fields are dereferenced relative to the node itself
	extended := refs.IsExtended(node)
	if extended {
		for _, k := range maputil.SortedKeys(node) {
			if k == refs.Key {
				continue
			}
			child, err := d.crawl(ctx, node[k], join(path, k))
			if err != nil {
				return nil, err
			}
			node[k] = child
		}
	}
	if external && !d.opts.External {
		return node, nil
	}

	d.push(frame{path: path, id: identity(node), value: node, ref: true})
	defer d.pop()

	value, err := d.target(ctx, key(target), target, path)
	if err != nil {
		return nil, err
	}
	d.count++
	if extended {
		return refs.Merge(node, value), nil
	}
	return value, nil
}

// target returns the dereferenced value at target, the reference path that
// the node at source points to.
func (d *dereferencer) target(ctx context.Context, tkey, target, source string) (any, error) {
	if v, ok := d.memo[tkey]; ok {
		return v, nil
	}
	if i := d.onStack(tkey, 0); i >= 0 {
		return d.circular(i, source, target)
	}
	res, err := d.graph.Lookup(target)
	if err != nil {
		return nil, err
	}
	rkey := key(res.Path)
	if v, ok := d.memo[rkey]; ok {
		d.memo[tkey] = v
		return v, nil
	}
	if i := d.onStack(rkey, identity(res.Value)); i >= 0 {
		return d.circular(i, source, target)
	}
	value, err := d.crawl(ctx, res.Value, rkey)
	if err != nil {
		return nil, err
	}
	d.memo[tkey] = value
	d.memo[rkey] = value
	return value, nil
}

// circular handles a reference from source back into the value of frame i.
func (d *dereferencer) circular(i int, source, target string) (any, error) {
	d.graph.AddCircular(source, target)
	switch d.opts.Circular {
	case CircularError:
		return nil, d.cycleError(i, source)
	case CircularIgnore:
		d.log.Debug("circular reference", "ref", source, "target", target)
	default:
		d.log.Warn("circular reference", "ref", source, "target", target)
	}
	return d.stack[i].value, nil
}

// cycleError describes the cycle from frame i to the reference at source,
// which is the last frame.
func (d *dereferencer) cycleError(i int, source string) error {
	start := d.stack[i].path
	cycle := []string{start}
	for _, f := range d.stack[i+1:] {
		if f.ref {
			cycle = append(cycle, f.path)
		}
	}
	cycle = append(cycle, start)

	var locators []string
	for _, p := range cycle {
		loc := locator.StripHash(p)
		if !slices.Contains(locators, loc) {
			locators = append(locators, loc)
		}
	}
	return &referrors.CircularReferenceError{Ref: source, Cycle: cycle, Locators: locators}
}

// onStack returns the index of the outermost frame with path p or, when id is
// non-zero, the same container; -1 if there is none.
func (d *dereferencer) onStack(p string, id uintptr) int {
	for i, f := range d.stack {
		if f.path == p || (id != 0 && f.id == id) {
			return i
		}
	}
	return -1
}

func (d *dereferencer) push(f frame) { d.stack = append(d.stack, f) }
func (d *dereferencer) pop()        { d.stack = d.stack[:len(d.stack)-1] }

// identity returns the address shared by every copy of a map or non-empty
// slice, or 0 for other values.
func identity(v any) uintptr {
	switch c := v.(type) {
	case map[string]any:
		return reflect.ValueOf(c).Pointer()
	case []any:
		if len(c) == 0 {
			return 0
		}
		return reflect.ValueOf(c).Pointer()
	}
	return 0
}

// key canonicalizes a reference path so that "a.json" and "a.json#" compare
// equal.
func key(p string) string {
	return locator.StripHash(p) + pathutil.JoinPointer(locator.Hash(p))
}

func join(p, token string) string {
	return locator.StripHash(p) + pathutil.JoinPointer(locator.Hash(p), token)
}
