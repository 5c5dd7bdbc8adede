package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder builds JSON Pointer fragments incrementally.
// Uses push/pop semantics to avoid allocations during traversal.
// The full string is only materialized when String() is called.
type PathBuilder struct {
	segments []string
	length   int // Pre-calculated length for String() allocation
}

// Push adds an unescaped reference token to the path.
func (p *PathBuilder) Push(token string) {
	seg := EscapeToken(token)
	p.segments = append(p.segments, seg)
	p.length += 1 + len(seg) // "/" separator
}

// PushIndex adds a sequence index token: "/0", "/1", etc.
func (p *PathBuilder) PushIndex(i int) {
	seg := strconv.Itoa(i)
	p.segments = append(p.segments, seg)
	p.length += 1 + len(seg)
}

// Pop removes the last token.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	last := p.segments[len(p.segments)-1]
	p.segments = p.segments[:len(p.segments)-1]
	p.length -= 1 + len(last)
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
	p.length = 0
}

// Len returns the number of tokens.
func (p *PathBuilder) Len() int {
	return len(p.segments)
}

// String materializes the fragment, including the leading "#".
// An empty builder yields "#".
func (p *PathBuilder) String() string {
	var b strings.Builder
	b.Grow(p.length + 1)
	b.WriteByte('#')
	for _, seg := range p.segments {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	return b.String()
}
