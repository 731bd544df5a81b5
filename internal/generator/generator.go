// Package generator drives a run from configured IDL entries to TypeScript
// client modules.
package generator

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/tidwall/btree"

	"gopkg.idlgen.dev/generator.go/internal/compiler"
	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/plugins"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

// Result lists what a run wrote.
type Result struct {
	// Files are output paths relative to the sink, in write order.
	Files []string
	Bytes int
}

// GenClient parses the configured entries and writes the generated modules.
func GenClient(ctx context.Context, opts Options) error {
	_, err := Generate(ctx, opts)
	return err
}

// Generate is GenClient returning a summary of the written files.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	reg := program.NewRegistry(opts.Logger)
	if err := reg.Types.SetI64(opts.I64); err != nil {
		return nil, err
	}
	tsOpts := typemap.Options{MapEnumKeyAsNumber: opts.MapEnumKeyAsNumber}

	stages := []program.Plugin{plugins.NewInclude(), plugins.NewMeta(tsOpts)}
	if opts.GenMock {
		stages = append(stages, plugins.NewMock())
	}
	p, err := program.Create(append(stages, opts.Plugins...)...)
	if err != nil {
		return nil, err
	}

	entries, err := resolveEntries(opts)
	if err != nil {
		return nil, err
	}
	reporter := exc.NewReporter(nil)
	c, err := compiler.New(
		compiler.OptionWithFS(opts.Source),
		compiler.OptionWithExcReporter(reporter),
		compiler.OptionWithParseOptions(idl.ParseOptions{ReviseTailComment: opts.ReviseTailComment.Value()}),
	)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	entryPaths := make(map[string]string, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
		entryPaths[e.Name] = e.Path
	}
	docs, err := c.ParseAll(ctx, paths)
	if err != nil {
		return nil, err
	}
	for _, e := range reporter.Reported() {
		if e.Code() == exc.CodeUnresolvedType {
			opts.Logger.Warnw("unresolved type", logger.FieldError, e.Error())
		}
	}

	pc, err := program.Trigger(ctx, p, program.ParseEntry, &program.ParseEntryContext{
		AST:      docs,
		Files:    &btree.Map[string, *program.Dist]{},
		Entries:  entryPaths,
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}
	if pc.Files == nil {
		return nil, errors.New("PARSE_ENTRY dropped the output set")
	}
	r := &run{
		opts:   opts,
		p:      p,
		reg:    reg,
		tsOpts: tsOpts,
		files:  pc.Files,
		byPath: make(map[string]*idl.Document, len(pc.AST)),
	}
	for _, d := range pc.AST {
		reg.Symbols.Collect(d)
		r.byPath[d.IdlPath] = d
	}

	var roots []emit.Export
	for _, e := range entries {
		doc, ok := r.byPath[e.Path]
		if !ok {
			return nil, errors.Newf("entry %s: %s was not parsed", e.Name, e.Path)
		}
		if err := r.genEntry(ctx, e, doc); err != nil {
			return nil, errors.Wrapf(err, "entry %s", e.Name)
		}
		roots = append(roots, emit.Export{
			Module: "./" + e.Name,
			As:     strcase.ToLowerCamel(strings.ReplaceAll(e.Name, "/", "_")),
		})
	}
	if opts.AggregationExport {
		r.add("index.ts", emit.RenderIndex(roots))
	}

	res, err := r.write(ctx)
	if err != nil {
		return nil, err
	}
	opts.Logger.Infow("generated",
		logger.FieldCount, len(res.Files),
		logger.FieldDuration, time.Since(start).String(),
	)
	return res, nil
}

type run struct {
	opts   Options
	p      *program.Program
	reg    *program.Registry
	tsOpts typemap.Options
	files  *btree.Map[string, *program.Dist]
	byPath map[string]*idl.Document
}

func (r *run) add(name string, content string) {
	r.files.Set(name, &program.Dist{Path: name, Content: content})
}

func (r *run) typesPath(e entry) string {
	if r.opts.PatchTypesOutput != "" {
		return path.Join(filepath.ToSlash(r.opts.PatchTypesOutput), e.Name, "types.ts")
	}
	return path.Join(e.Name, "types.ts")
}

func (r *run) genEntry(ctx context.Context, e entry, doc *idl.Document) error {
	scope := r.reachable(doc)
	decls, err := r.typeDecls(scope)
	if err != nil {
		return err
	}
	typesFile := r.typesPath(e)
	r.add(typesFile, emit.RenderTypes(decls))
	if r.opts.GenSchema {
		schema, err := r.schema(scope)
		if err != nil {
			return err
		}
		r.add(path.Join(e.Name, "schema.json"), string(schema))
	}

	indexFile := path.Join(e.Name, "index.ts")
	exports := []emit.Export{{Module: importPath(indexFile, typesFile)}}
	for _, svc := range doc.Services() {
		fc, err := program.Trigger(ctx, r.p, program.GenFileAST, &program.GenFileASTContext{
			Entry:    e.Name,
			Document: doc,
			Service:  svc,
			Registry: r.reg,
		})
		if err != nil {
			return err
		}
		if len(fc.Methods) == 0 {
			r.reg.Log.Debugw("service without routed methods", logger.FieldEntry, e.Name, logger.FieldService, svc.Name)
			continue
		}
		base := path.Join(e.Name, strcase.ToKebab(fc.Service.Name))
		if !r.opts.SkipClient {
			file := base + ".ts"
			src, err := emit.RenderService(emit.ServiceFile{
				CommonCodePath: r.opts.CommonCodePath,
				TypesImport:    importPath(file, typesFile),
				Imports:        fc.Imports,
				Methods:        fc.Methods,
			}, emit.Options{ParamProvider: r.opts.ParamProvider})
			if err != nil {
				return errors.Wrapf(err, "service %s", fc.Service.Name)
			}
			r.add(file, src)
			exports = append(exports, emit.Export{Module: importPath(indexFile, file)})
		}
		if r.opts.GenMock {
			mocks, err := r.serviceMocks(ctx, doc, fc)
			if err != nil {
				return errors.Wrapf(err, "mock %s", fc.Service.Name)
			}
			src, err := emit.RenderMock(mocks)
			if err != nil {
				return err
			}
			r.add(base+".mock.ts", src)
		}
	}
	r.add(indexFile, emit.RenderIndex(exports))
	return nil
}

// reachable returns doc followed by every document it includes,
// transitively, each once.
func (r *run) reachable(doc *idl.Document) []*idl.Document {
	seen := map[string]bool{doc.IdlPath: true}
	out := []*idl.Document{doc}
	for i := 0; i < len(out); i++ {
		from := out[i]
		for _, inc := range from.Includes {
			candidates := []string{path.Join("/", inc)}
			if !path.IsAbs(inc) {
				candidates = append([]string{path.Join(path.Dir(from.IdlPath), inc)}, candidates...)
			}
			for _, c := range candidates {
				d, ok := r.byPath[c]
				if !ok {
					continue
				}
				if !seen[c] {
					seen[c] = true
					out = append(out, d)
				}
				break
			}
		}
	}
	return out
}

func (r *run) write(ctx context.Context) (*Result, error) {
	res := &Result{}
	transform := r.p.Has(program.WriteFile.Name())
	for _, name := range r.files.Keys() {
		d, _ := r.files.Get(name)
		content := d.Content
		if transform {
			wc, err := program.Trigger(ctx, r.p, program.WriteFile, &program.WriteFileContext{
				Filename: name,
				Content:  content,
				Registry: r.reg,
			})
			if err != nil {
				return nil, err
			}
			content = wc.Content
		}
		if err := r.opts.Sink.Write(ctx, name, content); err != nil {
			return nil, errors.Wrapf(err, "write %s", name)
		}
		r.reg.Log.Debugw("wrote", logger.FieldOutput, name)
		res.Files = append(res.Files, name)
		res.Bytes += len(content)
	}
	return res, nil
}

// importPath is the module specifier of to as imported from from.
func importPath(from string, to string) string {
	target := strings.TrimSuffix(to, path.Ext(to))
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(from)), filepath.FromSlash(target))
	if err != nil {
		return "./" + path.Base(target)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
