package plugin

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// MatcherKind identifies the variant held by a Matcher.
type MatcherKind int

const (
	// KindNever matches nothing. It is the zero value.
	KindNever MatcherKind = iota
	// KindAlways matches every file.
	KindAlways
	// KindRegexp matches when a regular expression matches the file URL.
	KindRegexp
	// KindExtensions matches when the file extension is in a set.
	KindExtensions
	// KindFunc matches when a Go predicate returns true.
	KindFunc
	// KindExpr matches when an expr-lang expression evaluates to true.
	KindExpr
)

// String returns the name of the matcher kind.
func (k MatcherKind) String() string {
	switch k {
	case KindNever:
		return "never"
	case KindAlways:
		return "always"
	case KindRegexp:
		return "regexp"
	case KindExtensions:
		return "extensions"
	case KindFunc:
		return "func"
	case KindExpr:
		return "expr"
	default:
		return fmt.Sprintf("MatcherKind(%d)", int(k))
	}
}

// Matcher decides whether a plugin handles a file. The zero Matcher matches
// nothing.
type Matcher struct {
	kind    MatcherKind
	re      *regexp.Regexp
	exts    map[string]struct{}
	fn      func(*FileInfo) bool
	program *vm.Program
	source  string
}

// Always returns a Matcher that accepts every file.
func Always() Matcher { return Matcher{kind: KindAlways} }

// Never returns a Matcher that accepts no file.
func Never() Matcher { return Matcher{kind: KindNever} }

// Bool returns Always when b is true and Never otherwise.
func Bool(b bool) Matcher {
	if b {
		return Always()
	}
	return Never()
}

// Regexp returns a Matcher that accepts files whose URL matches re.
func Regexp(re *regexp.Regexp) Matcher {
	if re == nil {
		return Never()
	}
	return Matcher{kind: KindRegexp, re: re, source: re.String()}
}

// Pattern compiles pattern and returns a Regexp matcher.
func Pattern(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matcher{}, fmt.Errorf("plugin: invalid pattern %q: %w", pattern, err)
	}
	return Regexp(re), nil
}

// MustPattern is like Pattern but panics on an invalid pattern.
func MustPattern(pattern string) Matcher {
	m, err := Pattern(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Extensions returns a Matcher that accepts files with one of the given
// extensions. Extensions are compared case-insensitively and a missing
// leading dot is added.
func Extensions(exts ...string) Matcher {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return Matcher{kind: KindExtensions, exts: set}
}

// Func returns a Matcher backed by fn.
func Func(fn func(*FileInfo) bool) Matcher {
	if fn == nil {
		return Never()
	}
	return Matcher{kind: KindFunc, fn: fn}
}

// Expr compiles an expr-lang expression into a Matcher. The expression sees
// three variables and must evaluate to a bool:
//
//	url        string  the file URL without fragment
//	extension  string  the lowercase extension, e.g. ".yaml"
//	size       int     the content length (0 while resolvers run)
//
// For example:
//
//	extension in [".yaml", ".yml"] || url startsWith "https://schemas.example.com/"
func Expr(source string) (Matcher, error) {
	if strings.TrimSpace(source) == "" {
		return Matcher{}, fmt.Errorf("plugin: expression must not be empty")
	}
	program, err := expr.Compile(source,
		expr.Env(exprEnv(nil)),
		expr.AsBool(),
	)
	if err != nil {
		return Matcher{}, fmt.Errorf("plugin: invalid matcher expression %q: %w", source, err)
	}
	return Matcher{kind: KindExpr, program: program, source: source}, nil
}

// MustExpr is like Expr but panics on an invalid expression.
func MustExpr(source string) Matcher {
	m, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return m
}

func exprEnv(file *FileInfo) map[string]any {
	if file == nil {
		return map[string]any{"url": "", "extension": "", "size": 0}
	}
	return map[string]any{
		"url":       file.URL,
		"extension": file.Extension,
		"size":      len(file.Data),
	}
}

// Kind returns the variant held by m.
func (m Matcher) Kind() MatcherKind { return m.kind }

// Match reports whether m accepts file. A nil file never matches. Expression
// errors count as no match.
func (m Matcher) Match(file *FileInfo) bool {
	if file == nil {
		return false
	}
	switch m.kind {
	case KindAlways:
		return true
	case KindRegexp:
		return m.re.MatchString(file.URL)
	case KindExtensions:
		_, ok := m.exts[strings.ToLower(file.Extension)]
		return ok
	case KindFunc:
		return m.fn(file)
	case KindExpr:
		out, err := expr.Run(m.program, exprEnv(file))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	default:
		return false
	}
}

// String describes m for logs and error messages.
func (m Matcher) String() string {
	switch m.kind {
	case KindRegexp, KindExpr:
		return m.kind.String() + "(" + m.source + ")"
	case KindExtensions:
		exts := make([]string, 0, len(m.exts))
		for ext := range m.exts {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		return "extensions(" + strings.Join(exts, ", ") + ")"
	default:
		return m.kind.String()
	}
}
