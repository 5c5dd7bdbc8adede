// Package bundler combines a resolved document and every document it
// references into a single document that holds only internal references.
//
// Each external document is placed once under the definitions section of the
// root ("$defs" by default) and every reference to it, from the root or from
// another external document, is rewritten to point there:
//
//	root.json:   {"pet": {"$ref": "pet.json#/definitions/Pet"}}
//	pet.json:    {"definitions": {"Pet": {"type": "object"}}}
//
// bundles to
//
//	{
//	  "pet": {"$ref": "#/$defs/pet/definitions/Pet"},
//	  "$defs": {"pet": {"definitions": {"Pet": {"type": "object"}}}}
//	}
//
// References are kept, not replaced, so the bundle stays as compact as the
// input and never contains cycles.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/internal/maputil"
	"github.com/erraggy/refparser/internal/pathutil"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
)

// DefaultDefinitionsKey is the root field that receives external documents.
const DefaultDefinitionsKey = "$defs"

// Options configures Bundle.
type Options struct {
	// DefinitionsKey is the path, relative to the root, of the object that
	// receives external documents. Nested paths use "/" separators, as in
	// "components/schemas". Empty means DefaultDefinitionsKey.
	DefinitionsKey string
	// Logger receives one debug event per mounted document; nil disables logging
	Logger logging.Logger
}

// DefaultOptions returns Options using DefaultDefinitionsKey.
func DefaultOptions() Options {
	return Options{DefinitionsKey: DefaultDefinitionsKey}
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Bundle rewrites the root document of graph so that it no longer references
// other documents. Documents that were never resolved, for example because
// external resolution was disabled, are left referenced as they are.
//
// Bundling mutates the documents held by graph.
func Bundle(ctx context.Context, graph *refs.Refs, opts Options) error {
	root := graph.Root()
	if root == nil || !root.Resolved {
		return &referrors.ConfigError{Option: "root", Message: "root document has not been resolved"}
	}
	defsKey := strings.Trim(opts.DefinitionsKey, "/")
	if defsKey == "" {
		defsKey = DefaultDefinitionsKey
	}

	b := &bundler{
		graph:   graph,
		root:    root,
		defsKey: strings.Split(defsKey, "/"),
		mounts:  make(map[string]string),
		log:     logging.OrNop(opts.Logger),
	}
	b.reserveExistingNames()

	b.queue = append(b.queue, root)
	for i := 0; i < len(b.queue); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := b.queue[i]
		pb := pathutil.Get()
		err := b.rewrite(doc.Locator, doc.Value, pb)
		pathutil.Put(pb)
		if err != nil {
			return err
		}
	}
	return b.placeMounts()
}

type bundler struct {
	graph   *refs.Refs
	root    *refs.Ref
	defsKey []string
	log     logging.Logger

	// mounts maps external Locators to their name under the definitions section
	mounts map[string]string
	// queue holds the documents to rewrite: the root, then each mount in order
	queue []*refs.Ref
	names map[string]bool
}

// reserveExistingNames records the keys already present under the
// definitions section so that mounts never overwrite them. A malformed
// section is reported by placeMounts, and only when something is mounted.
func (b *bundler) reserveExistingNames() {
	b.names = make(map[string]bool)
	defs, err := b.definitions(false)
	if err != nil {
		return
	}
	for k := range defs {
		b.names[k] = true
	}
}

// rewrite turns every reference under v, which belongs to the document at
// loc, into an internal reference. pb tracks the position of v for messages.
func (b *bundler) rewrite(loc string, v any, pb *pathutil.PathBuilder) error {
	switch node := v.(type) {
	case map[string]any:
		if ref, ok := refs.RefString(node); ok {
			rewritten, err := b.rewriteRef(loc, ref)
			if err != nil {
				return fmt.Errorf("bundler: %s%s: %w", loc, pb.String(), err)
			}
			node[refs.Key] = rewritten
		}
		for _, k := range maputil.SortedKeys(node) {
			pb.Push(k)
			err := b.rewrite(loc, node[k], pb)
			pb.Pop()
			if err != nil {
				return err
			}
		}
	case []any:
		for i, item := range node {
			pb.PushIndex(i)
			err := b.rewrite(loc, item, pb)
			pb.Pop()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// rewriteRef returns the internal form of ref, found in the document at loc.
func (b *bundler) rewriteRef(loc, ref string) (string, error) {
	target, err := locator.Resolve(loc, ref)
	if err != nil {
		if errors.Is(err, locator.ErrNoBase) {
			return "", &referrors.ResolverError{URL: ref, Message: "no base URL", Cause: err}
		}
		return "", &referrors.ResolverError{URL: ref, Message: "invalid reference", Cause: err}
	}
	targetLoc, frag := locator.StripHash(target), locator.Hash(target)
	if targetLoc == b.root.Locator {
		return frag, nil
	}

	name, ok := b.mounts[targetLoc]
	if !ok {
		rec, found := b.graph.Record(targetLoc)
		if !found || !rec.Resolved {
			b.log.Debug("left unresolved reference", "ref", ref, "url", loc)
			return ref, nil
		}
		name = b.mountName(targetLoc)
		b.mounts[targetLoc] = name
		b.queue = append(b.queue, rec)
		b.log.Debug("mounted document", "url", targetLoc, "name", name)
	}
	mount := append(append([]string(nil), b.defsKey...), name)
	return pathutil.JoinPointer(pathutil.FormatPointer(mount...), tokensOf(frag)...), nil
}

// mountName derives a unique definitions key from the last path segment of loc.
func (b *bundler) mountName(loc string) string {
	base := locator.BaseName(loc)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "document"
	}
	name := base
	for n := 2; b.names[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	b.names[name] = true
	return name
}

// placeMounts stores every mounted document under the definitions section.
func (b *bundler) placeMounts() error {
	if len(b.mounts) == 0 {
		return nil
	}
	defs, err := b.definitions(true)
	if err != nil {
		return err
	}
	for _, rec := range b.queue[1:] {
		defs[b.mounts[rec.Locator]] = rec.Value
	}
	return nil
}

// definitions returns the definitions object of the root, creating it when
// create is set.
func (b *bundler) definitions(create bool) (map[string]any, error) {
	cur, ok := b.root.Value.(map[string]any)
	if !ok {
		if !create {
			return nil, nil
		}
		return nil, &referrors.ConfigError{
			Option:  "root",
			Message: fmt.Sprintf("cannot bundle external references into a %T root", b.root.Value),
		}
	}
	for i, tok := range b.defsKey {
		next, exists := cur[tok]
		if !exists || next == nil {
			if !create {
				return nil, nil
			}
			next = map[string]any{}
			cur[tok] = next
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, &referrors.ConfigError{
				Option:  "DefinitionsKey",
				Value:   strings.Join(b.defsKey[:i+1], "/"),
				Message: fmt.Sprintf("definitions section is a %T, not an object", next),
			}
		}
		cur = m
	}
	return cur, nil
}

func tokensOf(frag string) []string {
	tokens, err := pathutil.ParsePointer(frag)
	if err != nil {
		return []string{strings.TrimPrefix(frag, "#")}
	}
	return tokens
}
