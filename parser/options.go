package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erraggy/refparser"
	"github.com/erraggy/refparser/dereferencer"
	"github.com/erraggy/refparser/internal/options"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/plugin"
)

// Option is a function that configures an operation
type Option func(*config) error

// config holds configuration for an operation
type config struct {
	// Input source (exactly one must be set)
	filePath *string
	document any
	bytes    []byte
	reader   io.Reader
	baseURL  string

	external       bool
	circular       dereferencer.CircularMode
	definitionsKey string
	concurrency    int
	maxDocuments   int
	logger         logging.Logger

	// Plugin configuration
	registry     *plugin.Registry
	plugins      plugin.Options
	resolvers    []plugin.Resolver
	parsers      []plugin.Parser
	noResolvers  []string
	noParsers    []string
	maxFileSize  int64
	maxFileSet   bool
	textEncoding string
}

// Parse reads and decodes the root document using functional options.
//
// Example:
//
//	result, err := parser.Parse(ctx, parser.WithFilePath("schema.yaml"))
func Parse(ctx context.Context, opts ...Option) (*Result, error) {
	return run(ctx, opts, (*Parser).Parse)
}

// Resolve reads the root document and every document it references using
// functional options.
func Resolve(ctx context.Context, opts ...Option) (*Result, error) {
	return run(ctx, opts, (*Parser).Resolve)
}

// Dereference replaces every reference of the root document with its target
// using functional options.
//
// Example:
//
//	result, err := parser.Dereference(ctx,
//	    parser.WithFilePath("schema.yaml"),
//	    parser.WithCircular(dereferencer.CircularError),
//	)
func Dereference(ctx context.Context, opts ...Option) (*Result, error) {
	return run(ctx, opts, (*Parser).Dereference)
}

// Bundle combines the root document and every document it references into
// one document using functional options.
func Bundle(ctx context.Context, opts ...Option) (*Result, error) {
	return run(ctx, opts, (*Parser).Bundle)
}

func run(ctx context.Context, opts []Option, op func(*Parser, context.Context, Source) (*Result, error)) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}
	p, err := cfg.newParser()
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}
	return op(p, ctx, cfg.source())
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		external:       true,
		circular:       dereferencer.CircularAllow,
		definitionsKey: DefaultDefinitionsKey,
		concurrency:    DefaultConcurrency,
		plugins:        plugin.DefaultOptions(),
		textEncoding:   plugin.DefaultTextEncoding,
	}
	cfg.plugins.HTTP.UserAgent = refparser.UserAgent()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// Validate exactly one input source is specified
	if err := options.ValidateSingleInputSource(
		"parser: must specify an input source (use WithFilePath, WithDocument, WithBytes, or WithReader)",
		"parser: must specify exactly one input source",
		cfg.filePath != nil, cfg.document != nil, cfg.bytes != nil, cfg.reader != nil,
	); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newParser builds the Parser described by cfg.
func (cfg *config) newParser() (*Parser, error) {
	reg := cfg.registry
	if reg == nil {
		popts := cfg.plugins
		popts.TextEncoding = cfg.textEncoding
		if cfg.maxFileSet {
			popts.File.MaxFileSize = cfg.maxFileSize
			popts.HTTP.MaxFileSize = cfg.maxFileSize
		}
		var err error
		if reg, err = plugin.NewDefaultRegistry(popts); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.noResolvers {
		reg.RemoveResolver(name)
	}
	for _, name := range cfg.noParsers {
		reg.RemoveParser(name)
	}
	for _, r := range cfg.resolvers {
		if err := reg.AddResolver(r); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.parsers {
		if err := reg.AddParser(p); err != nil {
			return nil, err
		}
	}
	if cfg.logger != nil {
		reg.SetLogger(cfg.logger)
	}

	return &Parser{
		External:       cfg.external,
		Circular:       cfg.circular,
		DefinitionsKey: cfg.definitionsKey,
		Concurrency:    cfg.concurrency,
		MaxDocuments:   cfg.maxDocuments,
		Registry:       reg,
		Logger:         cfg.logger,
	}, nil
}

func (cfg *config) source() Source {
	src := Source{Document: cfg.document, Data: cfg.bytes, Reader: cfg.reader, BaseURL: cfg.baseURL}
	if cfg.filePath != nil {
		src.Path = *cfg.filePath
	}
	return src
}

// WithFilePath specifies a file path or URL as the input source
func WithFilePath(path string) Option {
	return func(cfg *config) error {
		if path == "" {
			return fmt.Errorf("parser: file path cannot be empty")
		}
		cfg.filePath = &path
		return nil
	}
}

// WithDocument specifies an already decoded document as the input source.
// The document is modified in place by Dereference and Bundle.
func WithDocument(doc any) Option {
	return func(cfg *config) error {
		if doc == nil {
			return fmt.Errorf("parser: document cannot be nil")
		}
		cfg.document = doc
		return nil
	}
}

// WithBytes specifies encoded document content as the input source
func WithBytes(data []byte) Option {
	return func(cfg *config) error {
		if data == nil {
			return fmt.Errorf("parser: bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("parser: reader cannot be nil")
		}
		cfg.reader = r
		return nil
	}
}

// WithBaseURL sets the Locator used to resolve the relative references of an
// in-memory document (WithDocument, WithBytes or WithReader).
func WithBaseURL(url string) Option {
	return func(cfg *config) error {
		cfg.baseURL = url
		return nil
	}
}

// WithExternal enables or disables reading referenced documents
// Default: true
func WithExternal(enabled bool) Option {
	return func(cfg *config) error {
		cfg.external = enabled
		return nil
	}
}

// WithCircular sets the circular reference policy of Dereference
// Default: dereferencer.CircularAllow
func WithCircular(mode dereferencer.CircularMode) Option {
	return func(cfg *config) error {
		cfg.circular = mode
		return nil
	}
}

// WithDefinitionsKey sets where Bundle places external documents, for
// example "components/schemas"
// Default: "$defs"
func WithDefinitionsKey(key string) Option {
	return func(cfg *config) error {
		if key == "" {
			return fmt.Errorf("parser: definitions key cannot be empty")
		}
		cfg.definitionsKey = key
		return nil
	}
}

// WithConcurrency bounds the number of documents read at once
// Default: 8
func WithConcurrency(n int) Option {
	return func(cfg *config) error {
		if err := options.NonNegative("concurrency", n); err != nil {
			return err
		}
		cfg.concurrency = n
		return nil
	}
}

// WithMaxDocuments limits how many documents one operation may read.
// 0 means no limit.
func WithMaxDocuments(n int) Option {
	return func(cfg *config) error {
		if err := options.NonNegative("max documents", n); err != nil {
			return err
		}
		cfg.maxDocuments = n
		return nil
	}
}

// WithMaxFileSize limits the size of each document read by the built-in
// resolvers. 0 uses the default (10MB).
func WithMaxFileSize(size int64) Option {
	return func(cfg *config) error {
		if err := options.NonNegative("max file size", size); err != nil {
			return err
		}
		cfg.maxFileSize = size
		cfg.maxFileSet = true
		return nil
	}
}

// WithFileRoot restricts the built-in file resolver to files inside dir
func WithFileRoot(dir string) Option {
	return func(cfg *config) error {
		cfg.plugins.File.Root = dir
		return nil
	}
}

// WithHTTPTimeout bounds each HTTP request, including redirects
// Default: 5s
func WithHTTPTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if err := options.NonNegative("http timeout", d); err != nil {
			return err
		}
		cfg.plugins.HTTP.Timeout = d
		return nil
	}
}

// WithHTTPRedirects sets the maximum number of redirects followed
// Default: 5
func WithHTTPRedirects(n int) Option {
	return func(cfg *config) error {
		if err := options.NonNegative("http redirects", n); err != nil {
			return err
		}
		cfg.plugins.HTTP.Redirects = n
		return nil
	}
}

// WithHTTPHeaders adds headers to every HTTP request
func WithHTTPHeaders(headers map[string]string) Option {
	return func(cfg *config) error {
		if cfg.plugins.HTTP.Headers == nil {
			cfg.plugins.HTTP.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.plugins.HTTP.Headers[k] = v
		}
		return nil
	}
}

// WithHTTPCredentials keeps cookies across HTTP requests and redirects
func WithHTTPCredentials(enabled bool) Option {
	return func(cfg *config) error {
		cfg.plugins.HTTP.WithCredentials = enabled
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for the built-in HTTP resolver.
// Timeout, redirect and credential options are then the client's concern.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		cfg.plugins.HTTP.Client = client
		return nil
	}
}

// WithUserAgent sets the User-Agent of HTTP requests
// Default: "refparser/<version>"
func WithUserAgent(ua string) Option {
	return func(cfg *config) error {
		cfg.plugins.HTTP.UserAgent = ua
		return nil
	}
}

// WithTextEncoding sets the character encoding of text documents
// Default: "utf-8"
func WithTextEncoding(encoding string) Option {
	return func(cfg *config) error {
		cfg.textEncoding = encoding
		return nil
	}
}

// WithRegistry uses a copy of reg instead of the built-in plugins. Plugin
// settings such as WithHTTPTimeout are ignored; WithResolver, WithParser,
// WithoutResolver and WithoutParser still apply to the copy.
func WithRegistry(reg *plugin.Registry) Option {
	return func(cfg *config) error {
		if reg == nil {
			return fmt.Errorf("parser: registry cannot be nil")
		}
		cfg.registry = reg.Clone()
		return nil
	}
}

// WithResolver adds a resolver plugin, replacing any resolver of the same name
func WithResolver(r plugin.Resolver) Option {
	return func(cfg *config) error {
		cfg.resolvers = append(cfg.resolvers, r)
		return nil
	}
}

// WithParser adds a parser plugin, replacing any parser of the same name
func WithParser(p plugin.Parser) Option {
	return func(cfg *config) error {
		cfg.parsers = append(cfg.parsers, p)
		return nil
	}
}

// WithoutResolver disables the resolver plugin called name
func WithoutResolver(name string) Option {
	return func(cfg *config) error {
		cfg.noResolvers = append(cfg.noResolvers, name)
		return nil
	}
}

// WithoutParser disables the parser plugin called name
func WithoutParser(name string) Option {
	return func(cfg *config) error {
		cfg.noParsers = append(cfg.noParsers, name)
		return nil
	}
}

// WithLogger sets the structured logger used by every stage
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l
		return nil
	}
}
