package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/erraggy/refparser"
	"github.com/erraggy/refparser/internal/httputil"
	"github.com/erraggy/refparser/internal/locator"
)

// Defaults for the built-in HTTP resolver.
const (
	DefaultHTTPTimeout   = 5 * time.Second
	DefaultHTTPRedirects = 5
)

// HTTPOptions configures the built-in HTTP resolver.
type HTTPOptions struct {
	// Timeout bounds each request including redirects; 0 disables the timeout
	Timeout time.Duration
	// Redirects is the maximum number of redirects to follow; 0 disables
	// following and a 3xx response fails the read
	Redirects int
	// Headers are added to every request
	Headers map[string]string
	// WithCredentials keeps cookies across requests and redirects
	WithCredentials bool
	// UserAgent overrides the User-Agent header (default refparser.UserAgent())
	UserAgent string
	// Client replaces the HTTP client. Timeout, Redirects and WithCredentials
	// are then the client's concern.
	Client *http.Client
	// MaxFileSize limits the response size; 0 uses DefaultMaxFileSize and a
	// negative value disables the limit
	MaxFileSize int64
}

// DefaultHTTPOptions returns the HTTP resolver defaults.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:   DefaultHTTPTimeout,
		Redirects: DefaultHTTPRedirects,
	}
}

// NewHTTPClient builds the client used by the HTTP resolver for opts.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	if opts.Client != nil {
		return opts.Client
	}
	client := &http.Client{Timeout: opts.Timeout}
	redirects := opts.Redirects
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if redirects <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > redirects {
			return fmt.Errorf("stopped after %d redirects", redirects)
		}
		return nil
	}
	if opts.WithCredentials {
		// cookiejar.New never fails with nil options
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	return client
}

// NewHTTPResolver returns the built-in resolver for http and https URLs.
// When the URL has no extension, the response Content-Type fills in
// FileInfo.Extension so that parsers can still match.
func NewHTTPResolver(opts HTTPOptions) Resolver {
	client := NewHTTPClient(opts)
	maxSize := opts.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = refparser.UserAgent()
	}
	return Resolver{
		Name:  NameHTTP,
		Order: OrderHTTP,
		CanRead: Func(func(file *FileInfo) bool {
			return locator.IsHTTP(file.URL)
		}),
		Read: func(ctx context.Context, file *FileInfo) ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator.StripHash(file.URL), nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("User-Agent", userAgent)
			for k, v := range opts.Headers {
				req.Header.Set(k, v)
			}

			resp, err := client.Do(req) //nolint:gosec // G107 - URL comes from the document being resolved
			if err != nil {
				return nil, fmt.Errorf("failed to fetch URL: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if !httputil.IsSuccess(resp.StatusCode) {
				return nil, &httputil.StatusError{URL: file.URL, StatusCode: resp.StatusCode}
			}
			data, err := readLimited(resp.Body, maxSize)
			if err != nil {
				return nil, err
			}
			if file.Extension == "" {
				file.Extension = httputil.ExtensionForContentType(resp.Header.Get("Content-Type"))
			}
			return data, nil
		},
	}
}
