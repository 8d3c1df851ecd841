// Package config loads playground configuration from defaults, an optional
// YAML file, environment variables, and CLI flags, in increasing order of
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "playground.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "playground.yml"

// envPrefix is the prefix for environment variable overrides.
// PLAYGROUND_DIALECT -> dialect, PLAYGROUND_FORMAT__INDENT -> format.indent.
const envPrefix = "PLAYGROUND_"

// Config is the playground configuration.
type Config struct {
	// Dialect is the initially selected SQL dialect.
	Dialect string `koanf:"dialect"`

	// Timeout bounds one sandboxed execution.
	Timeout time.Duration `koanf:"timeout"`

	// Format holds the initial format options.
	Format FormatConfig `koanf:"format"`

	// Server configures the HTTP playground API.
	Server ServerConfig `koanf:"server"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// FormatConfig mirrors core.FormatOptions with config-file-friendly types.
type FormatConfig struct {
	Indent           int    `koanf:"indent"`
	KeywordCase      string `koanf:"keyword_case"`
	LineWidth        int    `koanf:"line_width"`
	InlineParameters bool   `koanf:"inline_parameters"`
}

// Options converts the config representation to format options.
func (f FormatConfig) Options() core.FormatOptions {
	return core.FormatOptions{
		Indent:           f.Indent,
		KeywordCase:      core.ParseKeywordCase(f.KeywordCase),
		LineWidth:        f.LineWidth,
		InlineParameters: f.InlineParameters,
	}
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// cfgFile may be empty, in which case playground.yaml/.yml in the working
// directory is used when present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"dialect":                  "postgres",
		"timeout":                  "2s",
		"format.indent":            2,
		"format.keyword_case":      "lower",
		"format.line_width":        80,
		"format.inline_parameters": false,
		"server.host":              "127.0.0.1",
		"server.port":              8094,
		"verbose":                  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables (PLAYGROUND_ prefix, __ nests keys)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// --inline maps to the nested format key
			switch key {
			case "inline":
				return "format.inline_parameters", posflag.FlagVal(flags, f)
			case "keyword_case":
				return "format.keyword_case", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// findConfigFile resolves the config file to use.
// Priority: explicit path > playground.yaml > playground.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}
