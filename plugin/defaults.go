package plugin

// Built-in plugin names.
const (
	NameFile   = "file"
	NameHTTP   = "http"
	NameJSON   = "json"
	NameYAML   = "yaml"
	NameTOML   = "toml"
	NameXML    = "xml"
	NameText   = "text"
	NameBinary = "binary"
)

// Built-in plugin orders.
const (
	OrderFile   = 100
	OrderHTTP   = 200
	OrderJSON   = 100
	OrderYAML   = 200
	OrderTOML   = 250
	OrderXML    = 275
	OrderText   = 300
	OrderBinary = 400
)

// Options configures the built-in plugins registered by NewDefaultRegistry.
type Options struct {
	File FileOptions
	HTTP HTTPOptions
	// TextEncoding is the character encoding of text files (default utf-8)
	TextEncoding string
}

// DefaultOptions returns the default built-in plugin configuration.
func DefaultOptions() Options {
	return Options{
		HTTP:         DefaultHTTPOptions(),
		TextEncoding: DefaultTextEncoding,
	}
}

// NewDefaultRegistry returns a Registry holding every built-in resolver and
// parser configured by opts. It fails only for an unknown text encoding.
func NewDefaultRegistry(opts Options) (*Registry, error) {
	text, err := NewTextParser(opts.TextEncoding)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, res := range []Resolver{NewFileResolver(opts.File), NewHTTPResolver(opts.HTTP)} {
		if err := r.AddResolver(res); err != nil {
			return nil, err
		}
	}
	for _, p := range []Parser{NewJSONParser(), NewYAMLParser(), NewTOMLParser(), NewXMLParser(), text, NewBinaryParser()} {
		if err := r.AddParser(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
