package plugin

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/referrors"
)

// Registry holds the resolver and parser plugins for one or more operations.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers []Resolver
	parsers   []Parser
	logger    logging.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{logger: logging.NopLogger{}}
}

// SetLogger sets the logger used to report plugin attempts and fallbacks.
func (r *Registry) SetLogger(l logging.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logging.OrNop(l)
}

func (r *Registry) log() logging.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// AddResolver registers res. A resolver with the same name is replaced in
// place and keeps its registration position.
func (r *Registry) AddResolver(res Resolver) error {
	if err := res.validate(); err != nil {
		return &referrors.ConfigError{Option: "resolver", Value: res.Name, Cause: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.resolvers {
		if r.resolvers[i].Name == res.Name {
			r.resolvers[i] = res
			return nil
		}
	}
	r.resolvers = append(r.resolvers, res)
	return nil
}

// AddParser registers p. A parser with the same name is replaced in place
// and keeps its registration position.
func (r *Registry) AddParser(p Parser) error {
	if err := p.validate(); err != nil {
		return &referrors.ConfigError{Option: "parser", Value: p.Name, Cause: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.parsers {
		if r.parsers[i].Name == p.Name {
			r.parsers[i] = p
			return nil
		}
	}
	r.parsers = append(r.parsers, p)
	return nil
}

// RemoveResolver unregisters the named resolver and reports whether it existed.
func (r *Registry) RemoveResolver(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.resolvers {
		if r.resolvers[i].Name == name {
			r.resolvers = append(r.resolvers[:i], r.resolvers[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveParser unregisters the named parser and reports whether it existed.
func (r *Registry) RemoveParser(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.parsers {
		if r.parsers[i].Name == name {
			r.parsers = append(r.parsers[:i], r.parsers[i+1:]...)
			return true
		}
	}
	return false
}

// Resolver returns the named resolver.
func (r *Registry) Resolver(name string) (Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.resolvers {
		if res.Name == name {
			return res, true
		}
	}
	return Resolver{}, false
}

// Parser returns the named parser.
func (r *Registry) Parser(name string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.Name == name {
			return p, true
		}
	}
	return Parser{}, false
}

// Resolvers returns the registered resolvers in execution order.
func (r *Registry) Resolvers() []Resolver {
	r.mu.RLock()
	out := append([]Resolver(nil), r.resolvers...)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveOrder(out[i].Order) < effectiveOrder(out[j].Order)
	})
	return out
}

// Parsers returns the registered parsers in execution order.
func (r *Registry) Parsers() []Parser {
	r.mu.RLock()
	out := append([]Parser(nil), r.parsers...)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveOrder(out[i].Order) < effectiveOrder(out[j].Order)
	})
	return out
}

// Clone returns an independent copy of r. Plugins are copied by value.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{
		resolvers: append([]Resolver(nil), r.resolvers...),
		parsers:   append([]Parser(nil), r.parsers...),
		logger:    r.logger,
	}
}

// candidate is one matching plugin ready to run.
type candidate[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// runCandidates tries each candidate in turn and returns the first success.
// On failure it returns the names attempted and the last error.
func runCandidates[T any](ctx context.Context, logger logging.Logger, kind, url string, cands []candidate[T]) (T, []string, error) {
	var (
		zero      T
		attempted []string
		lastErr   error
	)
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return zero, attempted, err
		}
		attempted = append(attempted, c.name)
		v, err := c.run(ctx)
		if err == nil {
			if len(attempted) > 1 {
				logger.Debug("plugin fallback succeeded", "kind", kind, "plugin", c.name, "url", url)
			}
			return v, attempted, nil
		}
		logger.Debug("plugin failed", "kind", kind, "plugin", c.name, "url", url, "error", err)
		lastErr = err
	}
	return zero, attempted, lastErr
}

// Read returns a Future for the content of file.URL, read by the first
// matching resolver to succeed, and records that resolver in file.Resolver.
// Failures are *referrors.ResolverError.
func (r *Registry) Read(ctx context.Context, file *FileInfo) *Future[[]byte] {
	logger := r.log()
	var cands []candidate[[]byte]
	for _, res := range r.Resolvers() {
		if !res.CanRead.Match(file) {
			continue
		}
		res := res
		cands = append(cands, candidate[[]byte]{
			name: res.Name,
			run:  func(ctx context.Context) ([]byte, error) { return res.read(ctx, file) },
		})
	}
	if len(cands) == 0 {
		return Rejected[[]byte](&referrors.ResolverError{URL: file.URL, Cause: referrors.ErrNoMatchingPlugin})
	}
	return Go(ctx, func(ctx context.Context) ([]byte, error) {
		data, attempted, err := runCandidates(ctx, logger, "resolver", file.URL, cands)
		if err != nil {
			return nil, resolverError(file.URL, attempted, err)
		}
		file.Resolver = attempted[len(attempted)-1]
		return data, nil
	})
}

// Parse decodes file.Data with the first matching parser to succeed.
// Fallback parsers are tried only when no regular parser matches, so a file
// its own format's parsers reject is never accepted as something else.
// Failures are *referrors.ParserError.
func (r *Registry) Parse(ctx context.Context, file *FileInfo) (any, error) {
	logger := r.log()
	empty := len(bytes.TrimSpace(file.Data)) == 0
	var matched, fallbacks []Parser
	for _, p := range r.Parsers() {
		if !p.CanParse.Match(file) {
			continue
		}
		if p.Fallback {
			fallbacks = append(fallbacks, p)
		} else {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		if len(fallbacks) > 0 {
			logger.Debug("no parser matched, using fallback", "url", file.URL, "parser", fallbacks[0].Name)
		}
		matched = fallbacks
	}
	var cands []candidate[any]
	for _, p := range matched {
		p := p
		cands = append(cands, candidate[any]{
			name: p.Name,
			run: func(ctx context.Context) (any, error) {
				if empty && !p.AllowEmpty {
					return nil, ErrEmptyFile
				}
				return p.parse(ctx, file)
			},
		})
	}
	if len(cands) == 0 {
		return nil, &referrors.ParserError{URL: file.URL, Cause: referrors.ErrNoMatchingPlugin}
	}
	v, attempted, err := runCandidates(ctx, logger, "parser", file.URL, cands)
	if err != nil {
		return nil, parserError(file.URL, attempted, err)
	}
	return v, nil
}

func resolverError(url string, attempted []string, err error) error {
	if len(attempted) == 0 {
		return err
	}
	re := &referrors.ResolverError{URL: url, Plugins: attempted, Cause: err}
	if len(attempted) > 1 {
		re.Message = "all resolvers failed"
	}
	return re
}

func parserError(url string, attempted []string, err error) error {
	if len(attempted) == 0 {
		return err
	}
	if len(attempted) == 1 {
		// A parser may report its own line information.
		var pe *referrors.ParserError
		if errors.As(err, &pe) {
			out := *pe
			if out.URL == "" {
				out.URL = url
			}
			out.Plugins = attempted
			return &out
		}
		return &referrors.ParserError{URL: url, Plugins: attempted, Cause: err}
	}
	return &referrors.ParserError{URL: url, Plugins: attempted, Message: "all parsers failed", Cause: err}
}
