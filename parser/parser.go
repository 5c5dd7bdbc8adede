package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/erraggy/refparser/bundler"
	"github.com/erraggy/refparser/dereferencer"
	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/plugin"
	"github.com/erraggy/refparser/referrors"
	"github.com/erraggy/refparser/refs"
	"github.com/erraggy/refparser/resolver"
)

// Defaults shared by New and the functional options.
const (
	DefaultDefinitionsKey = bundler.DefaultDefinitionsKey
	DefaultConcurrency    = resolver.DefaultConcurrency
)

// Parser holds the settings shared by every operation. The zero value is not
// usable; create one with New.
type Parser struct {
	// External enables reading documents referenced from other documents.
	// Default: true
	External bool
	// Circular is the circular reference policy of Dereference.
	// Default: dereferencer.CircularAllow
	Circular dereferencer.CircularMode
	// DefinitionsKey is where Bundle places external documents.
	// Default: "$defs"
	DefinitionsKey string
	// Concurrency bounds the number of documents read at once.
	// Default: 8
	Concurrency int
	// MaxDocuments limits how many documents one operation may read.
	// 0 means no limit.
	MaxDocuments int
	// Registry supplies the resolver and parser plugins
	Registry *plugin.Registry
	// Logger is the structured logger for debug output
	// If nil, logging is disabled (default)
	Logger logging.Logger
}

// New creates a Parser with the default settings and the built-in plugins.
func New() *Parser {
	// the default options only fail for an unknown text encoding
	reg, _ := plugin.NewDefaultRegistry(plugin.DefaultOptions())
	return &Parser{
		External:       true,
		Circular:       dereferencer.CircularAllow,
		DefinitionsKey: DefaultDefinitionsKey,
		Concurrency:    DefaultConcurrency,
		Registry:       reg,
	}
}

// log returns the configured logger, or a no-op logger if none is set.
func (p *Parser) log() logging.Logger {
	return logging.OrNop(p.Logger)
}

// Source is the root document of an operation. Exactly one of Path,
// Document, Data or Reader is used, in that order of precedence.
type Source struct {
	// Path is a file path or URL
	Path string
	// Document is an already decoded document
	Document any
	// Data is encoded document content
	Data []byte
	// Reader supplies encoded document content
	Reader io.Reader
	// BaseURL is the Locator of an in-memory document, used to resolve its
	// relative references. Ignored when Path is set.
	BaseURL string
}

// Result is the outcome of an operation.
type Result struct {
	// Schema is the root document: parsed, resolved, dereferenced or bundled
	// depending on the operation
	Schema any
	// Refs is the reference graph of every document read
	Refs *refs.Refs
	// SourcePath is the Locator of the root document ("" when in-memory
	// without a base URL)
	SourcePath string
	// LoadTime is the time spent reading and decoding the root document
	LoadTime time.Duration
}

// Circular reports whether a circular reference was found.
func (r *Result) Circular() bool {
	return r.Refs != nil && r.Refs.Circular
}

// Parse reads and decodes the root document without following references.
func (p *Parser) Parse(ctx context.Context, src Source) (*Result, error) {
	return p.load(ctx, src)
}

// Resolve reads the root document and every document it references.
func (p *Parser) Resolve(ctx context.Context, src Source) (*Result, error) {
	res, err := p.load(ctx, src)
	if err != nil {
		return nil, err
	}
	err = resolver.ResolveExternal(ctx, res.Refs, resolver.Options{
		Registry:     p.Registry,
		External:     p.External,
		Concurrency:  p.Concurrency,
		MaxDocuments: p.MaxDocuments,
		Logger:       p.Logger,
	})
	if err != nil {
		return nil, err
	}
	p.log().Debug("resolved references",
		"url", res.SourcePath,
		"documents", res.Refs.Len(),
		"circular", res.Refs.Circular)
	return res, nil
}

// Dereference resolves the root document and replaces every reference with
// its target.
func (p *Parser) Dereference(ctx context.Context, src Source) (*Result, error) {
	res, err := p.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	err = dereferencer.Dereference(ctx, res.Refs, dereferencer.Options{
		Circular: p.Circular,
		External: p.External,
		Logger:   p.Logger,
	})
	if err != nil {
		return nil, err
	}
	res.Schema = res.Refs.Root().Value
	return res, nil
}

// Bundle resolves the root document and rewrites it so that it only holds
// internal references.
func (p *Parser) Bundle(ctx context.Context, src Source) (*Result, error) {
	res, err := p.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	err = bundler.Bundle(ctx, res.Refs, bundler.Options{
		DefinitionsKey: p.DefinitionsKey,
		Logger:         p.Logger,
	})
	if err != nil {
		return nil, err
	}
	res.Schema = res.Refs.Root().Value
	return res, nil
}

// load reads and decodes the root document into a new graph.
func (p *Parser) load(ctx context.Context, src Source) (*Result, error) {
	if p.Registry == nil {
		return nil, &referrors.ConfigError{Option: "Registry", Message: "a plugin registry is required"}
	}
	start := time.Now()
	graph := refs.New()

	var (
		root *refs.Ref
		size int
		err  error
	)
	switch {
	case src.Path != "":
		loc, lerr := absoluteLocator(src.Path)
		if lerr != nil {
			return nil, lerr
		}
		root = graph.Add(loc)
		file, rerr := resolver.ReadFile(ctx, p.Registry, loc).Await(ctx)
		if rerr != nil {
			return nil, rerr
		}
		size = len(file.Data)
		root.PathType = file.Resolver
		root.Value, err = resolver.ParseFile(ctx, p.Registry, file)
	case src.Document != nil:
		root, err = p.addBase(graph, src.BaseURL)
		if err == nil {
			root.Value = src.Document
		}
	case src.Data != nil || src.Reader != nil:
		data := src.Data
		if data == nil {
			if data, err = io.ReadAll(src.Reader); err != nil {
				return nil, fmt.Errorf("parser: failed to read data: %w", err)
			}
		}
		root, err = p.addBase(graph, src.BaseURL)
		if err == nil {
			size = len(data)
			file := &plugin.FileInfo{URL: root.Locator, Extension: detectExtension(root.Locator, data), Data: data}
			root.Value, err = resolver.ParseFile(ctx, p.Registry, file)
		}
	default:
		return nil, &referrors.ConfigError{Option: "input", Message: "no input source"}
	}
	if err != nil {
		return nil, err
	}
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	root.Resolved = true

	res := &Result{
		Schema:     root.Value,
		Refs:       graph,
		SourcePath: root.Locator,
		LoadTime:   time.Since(start),
	}
	p.log().Debug("parsed root document",
		"url", res.SourcePath,
		"bytes", size,
		"duration", res.LoadTime)
	return res, nil
}

// addBase adds the root record of an in-memory document.
func (p *Parser) addBase(graph *refs.Refs, baseURL string) (*refs.Ref, error) {
	if baseURL == "" {
		return graph.Add(""), nil
	}
	loc, err := absoluteLocator(baseURL)
	if err != nil {
		return nil, err
	}
	return graph.Add(loc), nil
}

// checkRoot rejects root documents that cannot hold references.
func checkRoot(root *refs.Ref) error {
	switch root.Value.(type) {
	case map[string]any, []any:
		return nil
	}
	msg := fmt.Sprintf("root document is a %T, not an object or array", root.Value)
	if plugin.IsUndefined(root.Value) {
		msg = "root document is empty"
	}
	return &referrors.ParserError{URL: root.Locator, Message: msg}
}

// absoluteLocator turns a path or URL into a document Locator: URLs are
// normalized and plain paths made absolute.
func absoluteLocator(s string) (string, error) {
	if locator.HasScheme(s) {
		return locator.Normalize(locator.StripHash(s)), nil
	}
	abs, err := filepath.Abs(locator.StripHash(s))
	if err != nil {
		return "", &referrors.ConfigError{Option: "path", Value: s, Cause: err}
	}
	return locator.Normalize(abs), nil
}

// detectExtension returns the extension used to pick a parser for in-memory
// content: the base URL's extension, or ".json" or ".yaml" by content.
func detectExtension(loc string, data []byte) string {
	if ext := locator.Extension(loc); ext != "" {
		return ext
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return ".json"
	}
	return ".yaml"
}
