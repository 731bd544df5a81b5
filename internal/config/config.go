// Package config loads the generator configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. IDLGEN_OUTPUT.
const EnvPrefix = "IDLGEN"

// ApiConfig describes one generation project.
type ApiConfig struct {
	// IdlRoot is the directory entries and includes resolve against.
	IdlRoot string `mapstructure:"idl_root"`
	// Entries maps an entry name to an IDL path or glob under IdlRoot. Names
	// are read case-insensitively and come back lower-cased.
	Entries map[string]string `mapstructure:"entries"`
	// CommonCodePath is the import path of the createAPI runtime.
	CommonCodePath string `mapstructure:"common_code_path"`
	Output         string `mapstructure:"output"`
	// Plugins lists the optional built-in plugins to enable, in order.
	Plugins           []string        `mapstructure:"plugins"`
	Formatter         FormatterConfig `mapstructure:"formatter"`
	AggregationExport bool            `mapstructure:"aggregation_export"`
	Mock              MockOptions     `mapstructure:"mock"`
	Aliases           []Alias         `mapstructure:"aliases"`
	// ExcludeFields are "Struct.field" glob patterns removed from output.
	ExcludeFields        []string `mapstructure:"exclude_fields"`
	I64                  string   `mapstructure:"i64"`
	IncludePaths         []string `mapstructure:"include_paths"`
	GenSchema            bool     `mapstructure:"gen_schema"`
	AllowNullForOptional bool     `mapstructure:"allow_null_for_optional"`
	MapEnumKeyAsNumber   bool     `mapstructure:"map_enum_key_as_number"`
	PatchTypesOutput     string   `mapstructure:"patch_types_output"`
	ParamProvider        string   `mapstructure:"param_provider"`
	ReviseTailComment    bool     `mapstructure:"revise_tail_comment"`
}

type FormatterConfig struct {
	Banner   string `mapstructure:"banner"`
	Disabled bool   `mapstructure:"disabled"`
}

type MockOptions struct {
	Enabled bool `mapstructure:"enabled"`
	// ConfigPath is the local mock switchboard, relative to Output.
	ConfigPath string `mapstructure:"config_path"`
	MaxDepth   int    `mapstructure:"max_depth"`
}

// Alias renames a service in generated output.
type Alias struct {
	Service string `mapstructure:"service"`
	Name    string `mapstructure:"name"`
}

// Optional built-in plugins.
const (
	PluginAlias       = "alias"
	PluginComment     = "comment"
	PluginFieldFilter = "fieldfilter"
	PluginFormat      = "format"
	PluginMockConfig  = "mockconfig"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("idl_root", ".")
	v.SetDefault("output", "./src/api")
	v.SetDefault("common_code_path", "@/api/common")
	v.SetDefault("plugins", []string{PluginAlias, PluginComment, PluginFieldFilter, PluginFormat, PluginMockConfig})
	v.SetDefault("formatter.banner", "/* eslint-disable */\n// Code generated by idlgen. DO NOT EDIT.")
	v.SetDefault("mock.config_path", "api.dev.local.json")
	v.SetDefault("mock.max_depth", 3)
	v.SetDefault("i64", "number")
	v.SetDefault("revise_tail_comment", true)
}

// Load reads an ApiConfig from a JSON, YAML or TOML file. IDLGEN_* variables
// override file values. Relative paths are resolved against the directory of
// the file.
func Load(path string) (*ApiConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var cfg ApiConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling config %s", path)
	}
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, "config directory")
	}
	cfg.resolve(base)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ApiConfig) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.IdlRoot = abs(c.IdlRoot)
	c.Output = abs(c.Output)
	for i, p := range c.IncludePaths {
		c.IncludePaths[i] = abs(p)
	}
}

// Validate reports the first unusable setting.
func (c *ApiConfig) Validate() error {
	if len(c.Entries) == 0 {
		return errors.WithHint(errors.New("no entries configured"),
			"add an entries map of name to IDL path, e.g. entries: {item: item/item.thrift}")
	}
	if c.Output == "" {
		return errors.New("no output directory configured")
	}
	switch c.I64 {
	case "", "number", "string":
	default:
		return errors.Newf("i64 must be number or string, got %q", c.I64)
	}
	known := map[string]bool{
		PluginAlias:       true,
		PluginComment:     true,
		PluginFieldFilter: true,
		PluginFormat:      true,
		PluginMockConfig:  true,
	}
	for _, p := range c.Plugins {
		if !known[p] {
			return errors.Newf("unknown plugin %q", p)
		}
	}
	for _, a := range c.Aliases {
		if a.Service == "" || a.Name == "" {
			return errors.New("aliases need both service and name")
		}
	}
	return nil
}

// Enabled reports whether an optional plugin is listed.
func (c *ApiConfig) Enabled(plugin string) bool {
	for _, p := range c.Plugins {
		if p == plugin {
			return true
		}
	}
	return false
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped; variables already set win.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "loading %s", p)
		}
	}
	return nil
}
