package refs

import (
	"fmt"
	"strconv"

	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/internal/pathutil"
	"github.com/erraggy/refparser/referrors"
)

// Resolution is the node found by following a reference path.
type Resolution struct {
	// Ref is the record of the document holding Value
	Ref *Ref
	// Path is the reference path of Value. It differs from the requested path
	// when a reference was followed mid-path.
	Path string
	// Value is the node itself; a reference node at the end is not followed
	Value any
}

// Lookup returns the node at path. References met before the last token are
// followed into their targets; the node at the end is returned as-is, even
// when it is itself a reference. Relative paths resolve against the root.
func (r *Refs) Lookup(path string) (*Resolution, error) {
	return r.lookup(r.absolute(path), 0)
}

func (r *Refs) lookup(path string, depth int) (*Resolution, error) {
	if depth > maxIndirections {
		return nil, &referrors.InvalidPointerError{Pointer: path, Message: "too many indirections"}
	}
	loc := locator.StripHash(path)
	rec, ok := r.refs[loc]
	if !ok || !rec.Resolved {
		return nil, notResolvedError(loc)
	}
	tokens, err := pathutil.ParsePointer(locator.Hash(path))
	if err != nil {
		return nil, &referrors.InvalidPointerError{Pointer: path, Message: err.Error()}
	}

	cur := rec.Value
	for i, tok := range tokens {
		if target, isRef := RefString(cur); isRef {
			next, err := continuePath(loc, target, tokens[i:])
			if err != nil {
				return nil, err
			}
			if next == path {
				return nil, &referrors.InvalidPointerError{Pointer: path, Token: tok, Message: "reference points to itself"}
			}
			return r.lookup(next, depth+1)
		}
		cur, err = step(cur, tok)
		if err != nil {
			return nil, &referrors.InvalidPointerError{Pointer: path, Token: tok, Message: err.Error()}
		}
	}
	return &Resolution{Ref: rec, Path: path, Value: cur}, nil
}

// continuePath returns the reference path reached by resolving ref from the
// document at loc and then walking the remaining tokens.
func continuePath(loc, ref string, rest []string) (string, error) {
	target, err := locator.Resolve(loc, ref)
	if err != nil {
		return "", noBaseError(ref, err)
	}
	return locator.StripHash(target) + pathutil.JoinPointer(locator.Hash(target), rest...), nil
}

// step moves one token into a container.
func step(cur any, tok string) (any, error) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[tok]
		if !ok {
			return nil, fmt.Errorf("missing key")
		}
		return v, nil
	case []any:
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid array index")
		}
		if idx >= len(c) {
			return nil, fmt.Errorf("array index %d out of bounds (length %d)", idx, len(c))
		}
		return c[idx], nil
	default:
		return nil, fmt.Errorf("cannot traverse into %T", cur)
	}
}

func (r *Refs) set(path string, value any, depth int) error {
	if depth > maxIndirections {
		return &referrors.InvalidPointerError{Pointer: path, Message: "too many indirections"}
	}
	loc := locator.StripHash(path)
	rec, ok := r.refs[loc]
	if !ok {
		return notResolvedError(loc)
	}
	tokens, err := pathutil.ParsePointer(locator.Hash(path))
	if err != nil {
		return &referrors.InvalidPointerError{Pointer: path, Message: err.Error()}
	}
	if len(tokens) == 0 {
		rec.Value = value
		rec.Resolved = true
		return nil
	}
	updated, err := r.setIn(loc, path, rec.Value, tokens, value, depth)
	if err != nil {
		return err
	}
	rec.Value = updated
	return nil
}

// setIn assigns value at tokens below cur and returns cur, which is replaced
// when it was nil or a sequence that grew.
func (r *Refs) setIn(loc, path string, cur any, tokens []string, value any, depth int) (any, error) {
	if target, isRef := RefString(cur); isRef {
		next, err := continuePath(loc, target, tokens)
		if err != nil {
			return nil, err
		}
		return cur, r.set(next, value, depth+1)
	}

	tok, last := tokens[0], len(tokens) == 1
	if cur == nil {
		cur = map[string]any{}
	}
	switch c := cur.(type) {
	case map[string]any:
		if last {
			c[tok] = value
			return c, nil
		}
		child, err := r.setIn(loc, path, c[tok], tokens[1:], value, depth)
		if err != nil {
			return nil, err
		}
		c[tok] = child
		return c, nil
	case []any:
		idx := len(c)
		if tok != "-" {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n > len(c) {
				return nil, &referrors.InvalidPointerError{Pointer: path, Token: tok, Message: "invalid array index"}
			}
			idx = n
		}
		if idx == len(c) {
			c = append(c, nil)
		}
		if last {
			c[idx] = value
			return c, nil
		}
		child, err := r.setIn(loc, path, c[idx], tokens[1:], value, depth)
		if err != nil {
			return nil, err
		}
		c[idx] = child
		return c, nil
	default:
		return nil, &referrors.InvalidPointerError{Pointer: path, Token: tok, Message: fmt.Sprintf("cannot set a value inside %T", cur)}
	}
}
