package plugin

import (
	"context"
	"errors"
	"math"
)

// Resolver reads the raw bytes of a document. Exactly one of Read and
// ReadAsync must be set.
type Resolver struct {
	// Name identifies the resolver in logs, errors and registry lookups
	Name string
	// Order sets the position among matching resolvers; lower runs first and
	// 0 means after every ordered resolver
	Order int
	// CanRead selects the files this resolver handles
	CanRead Matcher
	// Read returns the content of file.URL
	Read func(ctx context.Context, file *FileInfo) ([]byte, error)
	// ReadAsync starts reading file.URL and returns a Future for the content
	ReadAsync func(ctx context.Context, file *FileInfo) *Future[[]byte]
}

// Parser decodes raw bytes into a document value. Exactly one of Parse and
// ParseAsync must be set.
type Parser struct {
	// Name identifies the parser in logs, errors and registry lookups
	Name string
	// Order sets the position among matching parsers; lower runs first and
	// 0 means after every ordered parser
	Order int
	// CanParse selects the files this parser handles
	CanParse Matcher
	// AllowEmpty lets the parser see whitespace-only content; otherwise such
	// content fails this parser with ErrEmptyFile
	AllowEmpty bool
	// Fallback makes the parser a candidate only for files that no regular
	// parser matches
	Fallback bool
	// Parse decodes file.Data
	Parse func(ctx context.Context, file *FileInfo) (any, error)
	// ParseAsync starts decoding file.Data and returns a Future for the value
	ParseAsync func(ctx context.Context, file *FileInfo) *Future[any]
}

var (
	errMissingName = errors.New("plugin name is required")
	errMissingFunc = errors.New("exactly one of the sync and async functions must be set")
)

func (r *Resolver) validate() error {
	if r.Name == "" {
		return errMissingName
	}
	if (r.Read == nil) == (r.ReadAsync == nil) {
		return errMissingFunc
	}
	return nil
}

func (p *Parser) validate() error {
	if p.Name == "" {
		return errMissingName
	}
	if (p.Parse == nil) == (p.ParseAsync == nil) {
		return errMissingFunc
	}
	return nil
}

// read invokes the resolver under either calling convention.
func (r *Resolver) read(ctx context.Context, file *FileInfo) ([]byte, error) {
	if r.ReadAsync != nil {
		f, err := call(ctx, func(ctx context.Context) (*Future[[]byte], error) {
			return r.ReadAsync(ctx, file), nil
		})
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, errors.New("ReadAsync returned a nil future")
		}
		return f.Await(ctx)
	}
	return call(ctx, func(ctx context.Context) ([]byte, error) {
		return r.Read(ctx, file)
	})
}

// parse invokes the parser under either calling convention.
func (p *Parser) parse(ctx context.Context, file *FileInfo) (any, error) {
	if p.ParseAsync != nil {
		f, err := call(ctx, func(ctx context.Context) (*Future[any], error) {
			return p.ParseAsync(ctx, file), nil
		})
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, errors.New("ParseAsync returned a nil future")
		}
		return f.Await(ctx)
	}
	return call(ctx, func(ctx context.Context) (any, error) {
		return p.Parse(ctx, file)
	})
}

// effectiveOrder maps the unset order 0 after every explicit order.
func effectiveOrder(order int) int {
	if order == 0 {
		return math.MaxInt
	}
	return order
}
