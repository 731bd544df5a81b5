package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.Nil(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.Nil(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "idlgen.yaml",
			content: `idl_root: idl
entries:
  item: item/item.thrift
output: out
aliases:
  - service: ItemService
    name: Items
exclude_fields: ["*.secret"]
i64: string
`,
		},
		{
			name:    "json",
			file:    "idlgen.json",
			content: `{"idl_root": "idl", "entries": {"item": "item/item.thrift"}, "output": "out", "aliases": [{"service": "ItemService", "name": "Items"}], "exclude_fields": ["*.secret"], "i64": "string"}`,
		},
		{
			name: "toml",
			file: "idlgen.toml",
			content: `idl_root = "idl"
output = "out"
exclude_fields = ["*.secret"]
i64 = "string"

[entries]
item = "item/item.thrift"

[[aliases]]
service = "ItemService"
name = "Items"
`,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			cfg, err := Load(writeFile(t, dir, testCase.file, testCase.content))
			require.Nil(t, err)
			require.Equal(t, filepath.Join(dir, "idl"), cfg.IdlRoot)
			require.Equal(t, filepath.Join(dir, "out"), cfg.Output)
			require.Equal(t, map[string]string{"item": "item/item.thrift"}, cfg.Entries)
			require.Equal(t, []Alias{{Service: "ItemService", Name: "Items"}}, cfg.Aliases)
			require.Equal(t, []string{"*.secret"}, cfg.ExcludeFields)
			require.Equal(t, "string", cfg.I64)
			require.Equal(t, "@/api/common", cfg.CommonCodePath)
			require.Equal(t, 3, cfg.Mock.MaxDepth)
			require.Equal(t, "api.dev.local.json", cfg.Mock.ConfigPath)
			require.True(t, cfg.ReviseTailComment)
			require.True(t, cfg.Enabled(PluginFormat))
			require.Contains(t, cfg.Formatter.Banner, "DO NOT EDIT")
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "idlgen.yaml", "entries:\n  a: a.proto\noutput: out\n")
	t.Setenv("IDLGEN_OUTPUT", "/tmp/elsewhere")
	t.Setenv("IDLGEN_I64", "string")
	cfg, err := Load(p)
	require.Nil(t, err)
	require.Equal(t, "/tmp/elsewhere", cfg.Output)
	require.Equal(t, "string", cfg.I64)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		content string
		err     string
	}{
		{name: "no entries", content: "output: out\n", err: "no entries configured"},
		{name: "bad i64", content: "entries: {a: a.thrift}\ni64: bigint\n", err: `i64 must be number or string, got "bigint"`},
		{name: "unknown plugin", content: "entries: {a: a.thrift}\nplugins: [nope]\n", err: `unknown plugin "nope"`},
		{name: "partial alias", content: "entries: {a: a.thrift}\naliases: [{service: A}]\n", err: "aliases need both service and name"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, t.TempDir(), "idlgen.yaml", testCase.content))
			require.NotNil(t, err)
			require.Contains(t, err.Error(), testCase.err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, err)
}

func TestMockConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "api.dev.local.json", `{"methods": ["ItemService.get", "ItemService.gone"], "enabled": ["ItemService.get", "ItemService.gone"]}`)
	cfg, err := LoadMockConfig(p)
	require.Nil(t, err)
	require.Equal(t, []string{"ItemService.get", "ItemService.gone"}, cfg.Enabled)

	merged := cfg.Merge([]string{"ItemService.list", "ItemService.get", "ItemService.list"})
	require.Equal(t, []string{"ItemService.get", "ItemService.list"}, merged.Methods)
	require.Equal(t, []string{"ItemService.get"}, merged.Enabled)
	require.Equal(t, merged, merged.Merge(merged.Methods))

	var empty *MockConfig
	require.Equal(t, []string{}, empty.Merge(nil).Enabled)

	out, err := merged.Marshal()
	require.Nil(t, err)
	require.Equal(t, `{
  "methods": [
    "ItemService.get",
    "ItemService.list"
  ],
  "enabled": [
    "ItemService.get"
  ]
}
`, out)

	_, err = LoadMockConfig(filepath.Join(dir, "missing.json"))
	require.NotNil(t, err)
	_, err = LoadMockConfig(writeFile(t, dir, "broken.json", "{"))
	require.NotNil(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".env", "IDLGEN_TEST_LOAD_ENV=yes\n")
	t.Setenv("IDLGEN_TEST_LOAD_ENV", "")
	require.Nil(t, os.Unsetenv("IDLGEN_TEST_LOAD_ENV"))
	require.Nil(t, LoadEnv(filepath.Join(dir, "missing.env"), p))
	require.Equal(t, "yes", os.Getenv("IDLGEN_TEST_LOAD_ENV"))
}

func TestWatcher(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "idlgen.yaml", "entries: {a: a.thrift}\n")
	idlDir := filepath.Join(dir, "idl")
	writeFile(t, idlDir, "a.thrift", "struct A {}\n")

	var runs atomic.Int32
	w, err := NewWatcher(cfgPath, []string{idlDir}, func(name string) bool {
		return filepath.Ext(name) == ".thrift"
	}, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.Nil(t, err)
	w.debounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	writeFile(t, idlDir, "notes.txt", "ignored\n")
	writeFile(t, idlDir, "a.thrift", "struct A { 1: string a }\n")
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	before := runs.Load()
	writeFile(t, dir, "idlgen.yaml", "entries: {b: b.thrift}\n")
	require.Eventually(t, func() bool { return runs.Load() > before }, 5*time.Second, 10*time.Millisecond)

	require.Nil(t, w.Stop())
}
