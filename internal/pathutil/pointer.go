// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// EscapeToken escapes a reference token per RFC 6901.
func EscapeToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return tokenEscaper.Replace(token)
}

// UnescapeToken reverses EscapeToken.
func UnescapeToken(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return tokenUnescaper.Replace(token)
}

// ParsePointer splits a fragment such as "#/definitions/a~1b/0" into its
// unescaped tokens. The leading "#" is optional and percent-encoding is
// decoded. "", "#" and "#/" address the whole document and yield no tokens.
func ParsePointer(fragment string) ([]string, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" || fragment == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, fmt.Errorf("pathutil: pointer %q must start with \"/\"", fragment)
	}
	parts := strings.Split(fragment[1:], "/")
	tokens := make([]string, len(parts))
	for i, part := range parts {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			decoded = part
		}
		tokens[i] = UnescapeToken(decoded)
	}
	return tokens, nil
}

// FormatPointer joins unescaped tokens into a fragment with a leading "#".
func FormatPointer(tokens ...string) string {
	if len(tokens) == 0 {
		return "#"
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, tok := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(tok))
	}
	return b.String()
}

// JoinPointer appends unescaped tokens to an existing fragment.
func JoinPointer(fragment string, tokens ...string) string {
	fragment = strings.TrimSuffix(fragment, "/")
	if fragment == "" {
		fragment = "#"
	}
	if len(tokens) == 0 {
		return fragment
	}
	return fragment + FormatPointer(tokens...)[1:]
}
