package config

import (
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// MockConfig is the local switchboard deciding which methods answer with
// generated mock data. Methods are named "<Service>.<method>".
type MockConfig struct {
	// Methods lists every method that can be mocked.
	Methods []string `mapstructure:"methods" json:"methods"`
	// Enabled lists the methods that are mocked.
	Enabled []string `mapstructure:"enabled" json:"enabled"`
}

// LoadMockConfig reads the mock switchboard from disk. It is read fresh on
// every call.
func LoadMockConfig(path string) (*MockConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading mock config %s", path)
	}
	var cfg MockConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling mock config %s", path)
	}
	return &cfg, nil
}

// Merge returns a config listing methods, keeping every previously enabled
// method that still exists.
func (c *MockConfig) Merge(methods []string) *MockConfig {
	out := &MockConfig{
		Methods: append([]string(nil), methods...),
		Enabled: []string{},
	}
	slices.Sort(out.Methods)
	out.Methods = slices.Compact(out.Methods)
	if c == nil {
		return out
	}
	for _, m := range c.Enabled {
		if _, found := slices.BinarySearch(out.Methods, m); found {
			out.Enabled = append(out.Enabled, m)
		}
	}
	slices.Sort(out.Enabled)
	out.Enabled = slices.Compact(out.Enabled)
	return out
}

// Marshal renders the config as indented JSON.
func (c *MockConfig) Marshal() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding mock config")
	}
	return string(b) + "\n", nil
}
