package config

import (
	"fmt"

	"github.com/erraggy/refparser/internal/maputil"
	"github.com/erraggy/refparser/parser"
	"github.com/erraggy/refparser/plugin"
	"github.com/erraggy/refparser/referrors"
)

// PluginOptions returns the built-in plugin configuration described by c.
func (c *Config) PluginOptions() plugin.Options {
	opts := plugin.DefaultOptions()
	opts.TextEncoding = c.TextEncoding
	opts.File.Root = c.File.Root
	opts.File.MaxFileSize = c.MaxFileSize
	opts.HTTP.Timeout = c.HTTP.Timeout
	opts.HTTP.Redirects = c.HTTP.Redirects
	opts.HTTP.Headers = c.HTTP.Headers
	opts.HTTP.WithCredentials = c.HTTP.WithCredentials
	opts.HTTP.UserAgent = c.HTTP.UserAgent
	opts.HTTP.MaxFileSize = c.MaxFileSize
	return opts
}

// Registry builds the plugin registry described by c: the built-in plugins,
// minus the disabled ones, with the plugin overrides applied.
func (c *Config) Registry() (*plugin.Registry, error) {
	reg, err := plugin.NewDefaultRegistry(c.PluginOptions())
	if err != nil {
		return nil, &referrors.ConfigError{Option: "text_encoding", Value: c.TextEncoding, Cause: err}
	}

	for _, name := range maputil.SortedKeys(c.Plugins) {
		if err := applyOverride(reg, name, c.Plugins[name]); err != nil {
			return nil, err
		}
	}

	for _, name := range c.Disable {
		removed := reg.RemoveResolver(name)
		removed = reg.RemoveParser(name) || removed
		if !removed {
			return nil, &referrors.ConfigError{Option: "disable", Value: name, Message: "unknown plugin"}
		}
	}
	return reg, nil
}

// applyOverride replaces the resolver or parser called name with a copy
// carrying the settings of pc.
func applyOverride(reg *plugin.Registry, name string, pc PluginConfig) error {
	var matcher *plugin.Matcher
	if pc.Match != "" {
		m, err := plugin.Expr(pc.Match)
		if err != nil {
			return &referrors.ConfigError{Option: "plugins." + name + ".match", Value: pc.Match, Cause: err}
		}
		matcher = &m
	}

	found := false
	if res, ok := reg.Resolver(name); ok {
		found = true
		if pc.Order != 0 {
			res.Order = pc.Order
		}
		if matcher != nil {
			res.CanRead = *matcher
		}
		if err := reg.AddResolver(res); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if p, ok := reg.Parser(name); ok {
		found = true
		if pc.Order != 0 {
			p.Order = pc.Order
		}
		if matcher != nil {
			p.CanParse = *matcher
		}
		if pc.AllowEmpty != nil {
			p.AllowEmpty = *pc.AllowEmpty
		}
		if err := reg.AddParser(p); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if !found {
		return &referrors.ConfigError{Option: "plugins." + name, Message: "unknown plugin"}
	}
	return nil
}

// Options returns the parser options described by c. Input options such as
// parser.WithFilePath are left to the caller.
func (c *Config) Options() ([]parser.Option, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return []parser.Option{
		parser.WithRegistry(reg),
		parser.WithExternal(c.External),
		parser.WithCircular(c.Circular),
		parser.WithDefinitionsKey(c.DefinitionsKey),
		parser.WithConcurrency(c.Concurrency),
		parser.WithMaxDocuments(c.MaxDocuments),
	}, nil
}
