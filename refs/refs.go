package refs

import (
	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/referrors"
)

// maxIndirections bounds how many references a single lookup follows.
const maxIndirections = 256

// Ref is the record of one document in the reference graph.
type Ref struct {
	// Locator identifies the document; "" for an in-memory root without a base
	Locator string
	// Value is the parsed document
	Value any
	// Refs is the graph owning this record
	Refs *Refs
	// PathType names the resolver that read the document ("file", "http" or
	// a custom resolver); "" for an in-memory root
	PathType string
	// Resolved is set once the document has been read and parsed
	Resolved bool
}

// CircularRef is a reference node found to close a cycle.
type CircularRef struct {
	// Path is the reference path of the reference node
	Path string
	// Target is the reference path the node points to
	Target string
}

// Refs is the reference graph: every document reached while resolving, keyed
// by Locator. The first document added is the root.
//
// A Refs is not safe for concurrent mutation.
type Refs struct {
	// Circular reports whether any circular reference was found. During
	// resolution it is set for any reference back into a document that is
	// already being walked, so a cross-document back-reference such as
	// root.json -> other.json#/o -> root.json#/defs/s sets it even when the
	// pointers never form a cycle. Dereferencing with CircularError fails
	// only on real cycles.
	Circular bool

	circular []CircularRef
	root     *Ref
	refs     map[string]*Ref
	order    []string
}

// New returns an empty reference graph.
func New() *Refs {
	return &Refs{refs: make(map[string]*Ref)}
}

// Add returns the record for the document at loc, creating a pending one if
// none exists. The fragment of loc is ignored.
func (r *Refs) Add(loc string) *Ref {
	loc = locator.Normalize(locator.StripHash(loc))
	if ref, ok := r.refs[loc]; ok {
		return ref
	}
	ref := &Ref{Locator: loc, Refs: r}
	r.refs[loc] = ref
	r.order = append(r.order, loc)
	if r.root == nil {
		r.root = ref
	}
	return ref
}

// Record returns the record for the document at loc.
func (r *Refs) Record(loc string) (*Ref, bool) {
	ref, ok := r.refs[locator.Normalize(locator.StripHash(loc))]
	return ref, ok
}

// Root returns the root document's record, or nil for an empty graph.
func (r *Refs) Root() *Ref {
	return r.root
}

// RootLocator returns the root document's Locator.
func (r *Refs) RootLocator() string {
	if r.root == nil {
		return ""
	}
	return r.root.Locator
}

// Len returns the number of documents in the graph.
func (r *Refs) Len() int {
	return len(r.order)
}

// AddCircular records a circular reference and sets Circular.
func (r *Refs) AddCircular(path, target string) {
	r.Circular = true
	for _, c := range r.circular {
		if c.Path == path && c.Target == target {
			return
		}
	}
	r.circular = append(r.circular, CircularRef{Path: path, Target: target})
}

// CircularRefs returns the circular references found so far, in discovery
// order.
func (r *Refs) CircularRefs() []CircularRef {
	return append([]CircularRef(nil), r.circular...)
}

// Paths returns the Locators of every document, in discovery order. When
// types are given only documents with one of those path types are returned.
func (r *Refs) Paths(types ...string) []string {
	var out []string
	for _, loc := range r.order {
		if matchesType(r.refs[loc], types) {
			out = append(out, loc)
		}
	}
	return out
}

// Values returns a map of Locator to document value, filtered like Paths.
func (r *Refs) Values(types ...string) map[string]any {
	out := make(map[string]any)
	for _, loc := range r.order {
		if ref := r.refs[loc]; matchesType(ref, types) {
			out[loc] = ref.Value
		}
	}
	return out
}

func matchesType(ref *Ref, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if ref.PathType == t {
			return true
		}
	}
	return false
}

// absolute resolves path against the root Locator.
func (r *Refs) absolute(path string) string {
	if path == "" {
		return r.RootLocator()
	}
	abs, err := locator.Resolve(r.RootLocator(), path)
	if err != nil {
		return locator.Normalize(path)
	}
	return abs
}

// Exists reports whether path resolves to a value. Relative paths resolve
// against the root document.
func (r *Refs) Exists(path string) bool {
	_, err := r.Get(path)
	return err == nil
}

// Get returns the value at path. References met along the way, including a
// reference at path itself, are followed; an extended reference at path
// yields its merged value. Relative paths resolve against the root document.
func (r *Refs) Get(path string) (any, error) {
	res, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	value, current := res.Value, res.Path
	seen := map[string]bool{current: true}
	for {
		target, ok := RefString(value)
		if !ok {
			return value, nil
		}
		next, err := locator.Resolve(locator.StripHash(current), target)
		if err != nil {
			return nil, noBaseError(target, err)
		}
		if seen[next] {
			// a chain of references with no value at its end
			return value, nil
		}
		seen[next] = true
		nres, err := r.lookup(next, 0)
		if err != nil {
			return nil, err
		}
		if IsExtended(value) {
			return Merge(value.(map[string]any), nres.Value), nil
		}
		value, current = nres.Value, nres.Path
	}
}

// Set assigns value at path, creating intermediate objects as needed. A
// fragment-less path replaces the whole document. References met along the
// way are followed, so the assignment lands in the document they point to.
func (r *Refs) Set(path string, value any) error {
	return r.set(r.absolute(path), value, 0)
}

func noBaseError(ref string, err error) error {
	return &referrors.ResolverError{URL: ref, Message: "no base URL", Cause: err}
}

func notResolvedError(loc string) error {
	return &referrors.ResolverError{URL: loc, Message: "document has not been resolved"}
}
