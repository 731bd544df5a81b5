package generator

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"gopkg.idlgen.dev/generator.go/internal/compiler"
	"gopkg.idlgen.dev/generator.go/internal/config"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/optional"
	"gopkg.idlgen.dev/generator.go/internal/plugins"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

const defaultMockDepth = 3

// Options drive one GenClient run.
type Options struct {
	// IdlRoot is the directory entries resolve against.
	IdlRoot      string
	IncludePaths []string
	// Entries maps an entry name to an IDL path or doublestar glob under
	// IdlRoot. A glob matching several files yields one entry per file,
	// named "<name>/<file stem>".
	Entries map[string]string
	// Output is the directory generated files are written to.
	Output         string
	CommonCodePath string
	// Plugins are applied after the built-in stages, in order.
	Plugins []program.Plugin

	AllowNullForOptional bool
	MapEnumKeyAsNumber   bool
	GenSchema            bool
	GenMock              bool
	// SkipClient leaves out the createAPI service modules.
	SkipClient bool
	// PatchTypesOutput moves every types module under this directory,
	// relative to Output.
	PatchTypesOutput  string
	AggregationExport bool
	// I64 is "number" or "string".
	I64               string
	ParamProvider     string
	MockMaxDepth      int
	// ReviseTailComment keeps a comment on the same line as a declaration
	// with that declaration. Unset means true.
	ReviseTailComment optional.Optional[bool]

	// Source reads IDL. It defaults to the local file system rooted at
	// IdlRoot layered over IncludePaths.
	Source idl.FileSystem
	// Sink receives generated files. It defaults to the local file system
	// rooted at Output.
	Sink   idl.FileSystem
	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() (Options, error) {
	if len(o.Entries) == 0 {
		return o, errors.New("no entries to generate")
	}
	if o.Logger == nil {
		o.Logger = logger.Logger
	}
	if o.I64 == "" {
		o.I64 = "number"
	}
	if o.MockMaxDepth <= 0 {
		o.MockMaxDepth = defaultMockDepth
	}
	o.ReviseTailComment = optional.Some(o.ReviseTailComment.ValueOr(true))
	if o.CommonCodePath == "" {
		o.CommonCodePath = "@/api/common"
	}
	if o.Source == nil {
		roots := append([]string{o.IdlRoot}, o.IncludePaths...)
		src, err := compiler.NewDefaultFS(os.LookupEnv, roots...)
		if err != nil {
			return o, errors.Wrap(err, "idl source")
		}
		o.Source = src
	}
	if o.Sink == nil {
		if o.Output == "" {
			return o, errors.New("no output directory")
		}
		sink, err := fs.NewFileSystemLocal(o.Output)
		if err != nil {
			return o, errors.Wrap(err, "output sink")
		}
		o.Sink = sink
	}
	return o, nil
}

// FromConfig turns a loaded project configuration into generator options,
// instantiating the plugins it enables. Call it once per run: plugins carry
// per-run state.
func FromConfig(cfg *config.ApiConfig) (Options, error) {
	opts := Options{
		IdlRoot:              cfg.IdlRoot,
		IncludePaths:         cfg.IncludePaths,
		Entries:              cfg.Entries,
		Output:               cfg.Output,
		CommonCodePath:       cfg.CommonCodePath,
		AllowNullForOptional: cfg.AllowNullForOptional,
		MapEnumKeyAsNumber:   cfg.MapEnumKeyAsNumber,
		GenSchema:            cfg.GenSchema,
		GenMock:              cfg.Mock.Enabled,
		PatchTypesOutput:     cfg.PatchTypesOutput,
		AggregationExport:    cfg.AggregationExport,
		I64:                  cfg.I64,
		ParamProvider:        cfg.ParamProvider,
		MockMaxDepth:         cfg.Mock.MaxDepth,
		ReviseTailComment:    optional.Some(cfg.ReviseTailComment),
	}
	for _, name := range cfg.Plugins {
		switch name {
		case config.PluginAlias:
			aliases := make(map[string]string, len(cfg.Aliases))
			for _, a := range cfg.Aliases {
				aliases[a.Service] = a.Name
			}
			opts.Plugins = append(opts.Plugins, plugins.NewAlias(aliases))
		case config.PluginComment:
			opts.Plugins = append(opts.Plugins, plugins.NewComment())
		case config.PluginFieldFilter:
			p, err := plugins.NewFieldFilter(cfg.ExcludeFields)
			if err != nil {
				return opts, err
			}
			opts.Plugins = append(opts.Plugins, p)
		case config.PluginFormat:
			if cfg.Formatter.Disabled {
				continue
			}
			opts.Plugins = append(opts.Plugins, plugins.NewFormat(cfg.Formatter.Banner))
		case config.PluginMockConfig:
			if !cfg.Mock.Enabled || cfg.Mock.ConfigPath == "" {
				continue
			}
			disk := cfg.Mock.ConfigPath
			if !filepath.IsAbs(disk) {
				disk = filepath.Join(cfg.Output, disk)
			}
			dist, err := filepath.Rel(cfg.Output, disk)
			if err != nil {
				return opts, errors.Wrap(err, "mock config path")
			}
			opts.Plugins = append(opts.Plugins, plugins.NewMockConfig(disk, filepath.ToSlash(dist)))
		default:
			return opts, errors.Newf("unknown plugin %q", name)
		}
	}
	return opts, nil
}
