// Package locator normalizes and resolves document locators: filesystem
// paths and URLs that identify whole documents, optionally followed by a
// JSON Pointer fragment.
package locator

import (
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoBase is returned when a relative reference has nothing to resolve against.
var ErrNoBase = errors.New("relative reference without a base URL")

// schemePattern matches "scheme:" prefixes of two or more characters, so
// Windows drive letters ("C:\") are not mistaken for URL schemes.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]+:`)

// IsHTTP reports whether u is an http or https URL.
func IsHTTP(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsFileURL reports whether u uses the file scheme.
func IsFileURL(u string) bool {
	return strings.HasPrefix(strings.ToLower(u), "file:")
}

// HasScheme reports whether u carries a URL scheme.
func HasScheme(u string) bool {
	return schemePattern.MatchString(u)
}

// IsFileSystemPath reports whether u names a local file: either a plain path
// or a file:// URL.
func IsFileSystemPath(u string) bool {
	return !HasScheme(u) || IsFileURL(u)
}

// StripHash removes the fragment from u.
func StripHash(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}

// Hash returns the fragment of u including the leading '#', or "#" when u
// has none.
func Hash(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[i:]
	}
	return "#"
}

// StripQuery removes the query string and fragment from u.
func StripQuery(u string) string {
	u = StripHash(u)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// Extension returns the lowercase file extension of u including the dot,
// ignoring any query string or fragment.
func Extension(u string) string {
	p := StripQuery(u)
	if HasScheme(p) && !IsFileURL(p) {
		if parsed, err := url.Parse(p); err == nil {
			p = parsed.Path
		}
	}
	return strings.ToLower(path.Ext(filepath.ToSlash(p)))
}

// ToFilePath converts a file:// URL to a local path. Plain paths are returned
// as-is.
func ToFilePath(u string) string {
	u = StripHash(u)
	if !IsFileURL(u) {
		return u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return strings.TrimPrefix(u, "file://")
	}
	p := parsed.Path
	if parsed.Host != "" && parsed.Host != "localhost" {
		p = "//" + parsed.Host + p
	}
	// "/C:/dir" on Windows
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// Normalize canonicalizes a document locator. Fragments are preserved;
// filesystem paths are cleaned and URLs are re-serialized.
func Normalize(u string) string {
	doc, frag := StripHash(u), ""
	if i := strings.IndexByte(u, '#'); i >= 0 {
		frag = u[i:]
	}
	switch {
	case doc == "":
	case HasScheme(doc):
		if parsed, err := url.Parse(doc); err == nil {
			if parsed.Path != "" {
				parsed.Path = path.Clean(parsed.Path)
			}
			doc = parsed.String()
		}
	default:
		doc = filepath.Clean(doc)
	}
	if frag == "#" {
		frag = ""
	}
	return doc + frag
}

// Resolve resolves ref against base the way a browser resolves a link:
// fragments attach to base's document, absolute references stand alone, and
// relative paths resolve against base's directory. The result is normalized.
//
// ErrNoBase is returned when ref is a relative path and base is empty.
func Resolve(base, ref string) (string, error) {
	switch {
	case ref == "":
		return Normalize(base), nil
	case strings.HasPrefix(ref, "#"):
		return Normalize(StripHash(base) + ref), nil
	case HasScheme(ref):
		return Normalize(ref), nil
	}

	refDoc := StripHash(ref)
	frag := ""
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		frag = ref[i:]
	}

	baseDoc := StripHash(base)
	if HasScheme(baseDoc) {
		b, err := url.Parse(baseDoc)
		if err != nil {
			return "", err
		}
		r, err := url.Parse(filepath.ToSlash(refDoc))
		if err != nil {
			return "", err
		}
		return Normalize(b.ResolveReference(r).String() + frag), nil
	}

	if filepath.IsAbs(refDoc) || strings.HasPrefix(refDoc, "/") {
		return Normalize(refDoc + frag), nil
	}
	if baseDoc == "" {
		return "", ErrNoBase
	}
	return Normalize(filepath.Join(filepath.Dir(baseDoc), refDoc) + frag), nil
}

// Relative returns the shortest reference that resolves to target from base:
// a bare fragment when both share a document, otherwise target unchanged.
func Relative(base, target string) string {
	if StripHash(base) == StripHash(target) {
		return Hash(target)
	}
	return target
}

// BaseName returns the last path segment of a locator without query or
// fragment, falling back to the host name for URLs that end in "/".
func BaseName(u string) string {
	p := StripQuery(u)
	host := ""
	if HasScheme(p) && !IsFileURL(p) {
		if parsed, err := url.Parse(p); err == nil {
			host, p = parsed.Hostname(), parsed.Path
		}
	} else {
		p = ToFilePath(p)
	}
	p = strings.TrimRight(filepath.ToSlash(p), "/")
	if p == "" {
		return host
	}
	return path.Base(p)
}
