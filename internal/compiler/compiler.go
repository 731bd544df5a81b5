// Package compiler turns IDL entry files and everything they include into
// unified documents.
package compiler

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/target"
)

const defaultCacheSize = 256

type Option func(c *Compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *Compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *Compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *Compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithParseOptions(opts idl.ParseOptions) Option {
	return func(c *Compiler) error {
		c.ParseOptions = opts
		return nil
	}
}

// OptionWithCacheSize bounds the number of parsed documents kept while
// resolving the includes of one run.
func OptionWithCacheSize(size int) Option {
	return func(c *Compiler) error {
		if size < 1 {
			return exc.New(exc.Location{}, exc.CodeConfig, "cache size must be positive")
		}
		c.CacheSize = size
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{ParseOptions: idl.DefaultParseOptions()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers()
	}
	if c.CacheSize == 0 {
		c.CacheSize = defaultCacheSize
	}
	return c, nil
}

type Compiler struct {
	LookupENV    func(string) (string, bool)
	FS           idl.FileSystem
	Reporter     exc.Reporter
	SubCompilers map[idl.FileKind]SubCompiler
	ParseOptions idl.ParseOptions
	CacheSize    int
}

// Parse accepts either inline IDL text or a path to an IDL file. Paths are
// read from the local file system; inline text is reported under the
// "source" URI and its dialect is detected from its keywords.
func (self *Compiler) Parse(ctx context.Context, source string) (*idl.Document, error) {
	if isPath(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			return nil, exc.WrapUnknown(exc.Location{URI: source}, err)
		}
		local, err := fs.NewFileSystemLocal("/")
		if err != nil {
			return nil, err
		}
		files, err := local.Open(ctx, filepath.ToSlash(abs))
		if err != nil {
			return nil, exc.NewFileNotFound(source)
		}
		return self.CompileFile(ctx, files[0])
	}
	return self.CompileFile(ctx, fs.NewFileString(exc.SourceURI, source, idl.FileKindNone))
}

// isPath reports whether source names a file rather than holding IDL text.
func isPath(source string) bool {
	if strings.ContainsAny(source, "\n{") {
		return false
	}
	return fs.KindOf(strings.TrimSpace(source)) != idl.FileKindNone
}

// CompileFile parses a single file with the sub-compiler for its kind.
func (self *Compiler) CompileFile(ctx context.Context, file idl.File) (*idl.Document, error) {
	sc := self.SubCompilers[file.Kind(ctx)]
	if sc == nil {
		e := exc.New(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, "unsupported file format")
		return nil, self.Reporter.Report(e)
	}
	logger.Debugw("parsing", logger.FieldFile, file.Path(ctx), logger.FieldDialect, file.Kind(ctx).String())
	return sc.CompileFile(ctx, self.Reporter, file, self.ParseOptions)
}

// ParseAll parses every entry and, transitively, every file they include.
// Documents come back in discovery order with each file listed once; entry
// documents are marked IsEntry. Unresolved includes and types are reported
// as warnings.
func (self *Compiler) ParseAll(ctx context.Context, entries []string) ([]*idl.Document, error) {
	cache, err := lru.New[string, *idl.Document](self.CacheSize)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	w := &walker{
		compiler: self,
		cache:    cache,
		seen:     make(map[string]bool),
	}
	for _, entry := range entries {
		uri := target.Normalize(entry)
		doc, err := w.load(ctx, uri)
		if err != nil {
			return nil, err
		}
		doc.IsEntry = true
		if err := w.walk(ctx, doc); err != nil {
			return nil, err
		}
	}
	check(w.docs, self.Reporter)
	return w.docs, nil
}

type walker struct {
	compiler *Compiler
	cache    *lru.Cache[string, *idl.Document]
	seen     map[string]bool
	docs     []*idl.Document
}

func (w *walker) load(ctx context.Context, uri string) (*idl.Document, error) {
	if doc, ok := w.cache.Get(uri); ok {
		return doc, nil
	}
	files, err := w.compiler.FS.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	doc, err := w.compiler.CompileFile(ctx, files[0])
	if err != nil {
		return nil, err
	}
	w.cache.Add(uri, doc)
	return doc, nil
}

func (w *walker) walk(ctx context.Context, doc *idl.Document) error {
	if w.seen[doc.IdlPath] {
		return nil
	}
	w.seen[doc.IdlPath] = true
	w.docs = append(w.docs, doc)
	for _, inc := range doc.Includes {
		uri, ok := w.resolve(ctx, doc.IdlPath, inc)
		if !ok {
			e := exc.New(exc.Location{URI: doc.IdlPath}, exc.CodeUnresolvedInclude, "cannot resolve include "+inc)
			if err := w.compiler.Reporter.Report(e); err != nil {
				return err
			}
			logger.Warnw("unresolved include", logger.FieldFile, doc.IdlPath, logger.FieldInclude, inc)
			continue
		}
		included, err := w.load(ctx, uri)
		if err != nil {
			return err
		}
		if err := w.walk(ctx, included); err != nil {
			return err
		}
	}
	return nil
}

// resolve looks for an include next to the including file first and then
// from the root of the file system.
func (w *walker) resolve(ctx context.Context, from string, inc string) (string, bool) {
	candidates := []string{path.Join("/", inc)}
	if !path.IsAbs(inc) {
		candidates = append([]string{path.Join(path.Dir(from), inc)}, candidates...)
	}
	for _, c := range candidates {
		if _, ok := w.cache.Peek(c); ok {
			return c, true
		}
		if _, err := w.compiler.FS.Open(ctx, c); err == nil {
			return c, true
		}
	}
	return "", false
}
