// Package config loads refparser settings from layered configuration sources
// and turns them into parser options.
//
// Sources are merged in order, later ones overriding earlier ones:
//
//  1. built-in defaults
//  2. the user config, $XDG_CONFIG_HOME/refparser/config.toml
//  3. the project config, .refparser.toml or .refparser.yaml in the project
//     directory
//  4. an explicit config file (the CLI's --config)
//  5. REFPARSER_* environment variables, where "__" separates sections:
//     REFPARSER_HTTP__TIMEOUT=10s sets http.timeout
//
// A config file looks like this:
//
//	circular = "ignore"
//	definitions_key = "components/schemas"
//	disable = ["binary"]
//
//	[http]
//	timeout = "10s"
//	headers = { Authorization = "Bearer token" }
//
//	[plugins.yaml]
//	match = 'extension in [".yaml", ".yml", ".oas"]'
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/erraggy/refparser"
	"github.com/erraggy/refparser/dereferencer"
	"github.com/erraggy/refparser/referrors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REFPARSER_"

// UserConfigFile is the user config path relative to the XDG config home.
const UserConfigFile = "refparser/config.toml"

// ProjectConfigFiles are the project config names, in lookup order.
var ProjectConfigFiles = []string{".refparser.toml", ".refparser.yaml", ".refparser.yml"}

// Config is the merged configuration.
type Config struct {
	// External enables reading referenced documents
	External bool `koanf:"external"`
	// Circular is the circular reference policy: allow, ignore or error
	Circular dereferencer.CircularMode `koanf:"circular"`
	// DefinitionsKey is where bundles place external documents
	DefinitionsKey string `koanf:"definitions_key"`
	// Concurrency bounds parallel document reads
	Concurrency int `koanf:"concurrency"`
	// MaxDocuments limits the documents read per operation (0 = unlimited)
	MaxDocuments int `koanf:"max_documents"`
	// MaxFileSize limits each document's size in bytes (0 = default)
	MaxFileSize int64 `koanf:"max_file_size"`
	// TextEncoding is the encoding of text documents
	TextEncoding string `koanf:"text_encoding"`
	// Disable names plugins to remove
	Disable []string `koanf:"disable"`

	File    FileConfig              `koanf:"file"`
	HTTP    HTTPConfig              `koanf:"http"`
	Plugins map[string]PluginConfig `koanf:"plugins"`
}

// FileConfig configures the file resolver.
type FileConfig struct {
	// Root restricts reads to this directory
	Root string `koanf:"root"`
}

// HTTPConfig configures the HTTP resolver.
type HTTPConfig struct {
	Timeout         time.Duration     `koanf:"timeout"`
	Redirects       int               `koanf:"redirects"`
	Headers         map[string]string `koanf:"headers"`
	WithCredentials bool              `koanf:"with_credentials"`
	UserAgent       string            `koanf:"user_agent"`
}

// PluginConfig overrides a built-in plugin. Zero fields keep the built-in
// setting.
type PluginConfig struct {
	// Order replaces the plugin's order
	Order int `koanf:"order"`
	// Match replaces the plugin's matcher with an expression, see plugin.Expr
	Match string `koanf:"match"`
	// AllowEmpty replaces a parser's AllowEmpty setting
	AllowEmpty *bool `koanf:"allow_empty"`
}

// LoadOptions selects the configuration sources of Load.
type LoadOptions struct {
	// ProjectDir is searched for a project config; empty means the current
	// directory
	ProjectDir string
	// ConfigFile is an explicit config file loaded after the project config
	ConfigFile string
	// SkipUserConfig ignores the XDG user config
	SkipUserConfig bool
	// SkipEnv ignores REFPARSER_* environment variables
	SkipEnv bool
}

// Defaults returns the built-in configuration as a flat koanf map.
func Defaults() map[string]any {
	return map[string]any{
		"external":        true,
		"circular":        dereferencer.CircularAllow.String(),
		"definitions_key": "$defs",
		"concurrency":     8,
		"max_documents":   0,
		"max_file_size":   0,
		"text_encoding":   "utf-8",
		"http.timeout":    "5s",
		"http.redirects":  5,
		"http.user_agent": refparser.UserAgent(),
	}
}

// Load merges every configuration source selected by opts.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	// 2. User config
	if !opts.SkipUserConfig {
		if path, err := xdg.SearchConfigFile(UserConfigFile); err == nil {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
		}
	}

	// 3. Project config, the first name that exists
	dir := opts.ProjectDir
	if dir == "" {
		dir = "."
	}
	for _, name := range ProjectConfigFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
			break
		}
	}

	// 4. Explicit config file
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, &referrors.ConfigError{Option: "config", Value: opts.ConfigFile, Cause: err}
		}
		if err := loadFile(k, opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	// 5. Environment
	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
		if err != nil {
			return nil, fmt.Errorf("config: failed to load env vars: %w", err)
		}
	}

	return unmarshal(k)
}

// envKey maps REFPARSER_HTTP__USER_AGENT to http.user_agent.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// loadFile loads a TOML or YAML file, chosen by extension.
func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return &referrors.ConfigError{Option: "config", Value: path, Message: "config files must be .toml, .yaml or .yml"}
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &referrors.ConfigError{Option: "config", Value: path, Cause: err}
		}
		return fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	return nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, &referrors.ConfigError{Option: "config", Message: "failed to unmarshal configuration", Cause: err}
	}
	return &cfg, nil
}
