package generator

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type entry struct {
	Name string
	// Path is the document URI within the IDL source.
	Path string
}

// pathLister is implemented by file systems that can enumerate every file
// they hold.
type pathLister interface {
	Paths() []string
}

func resolveEntries(opts Options) ([]entry, error) {
	names := make([]string, 0, len(opts.Entries))
	for name := range opts.Entries {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []entry
	for _, name := range names {
		pattern := path.Join("/", filepath.ToSlash(opts.Entries[name]))
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, entry{Name: name, Path: pattern})
			continue
		}
		matches, err := glob(opts, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %s", name)
		}
		if len(matches) == 0 {
			return nil, errors.Newf("entry %s: %s matches no IDL file", name, opts.Entries[name])
		}
		if len(matches) == 1 {
			out = append(out, entry{Name: name, Path: matches[0]})
			continue
		}
		for _, m := range matches {
			stem := strings.TrimSuffix(path.Base(m), path.Ext(m))
			out = append(out, entry{Name: name + "/" + stem, Path: m})
		}
	}
	return out, nil
}

func glob(opts Options, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Newf("invalid pattern %q", pattern)
	}
	var candidates []string
	if l, ok := opts.Source.(pathLister); ok {
		candidates = l.Paths()
	} else {
		found, err := doublestar.Glob(os.DirFS(opts.IdlRoot), strings.TrimPrefix(pattern, "/"))
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			candidates = append(candidates, "/"+f)
		}
	}
	var out []string
	for _, c := range candidates {
		if fs.KindOf(c) == idl.FileKindNone {
			continue
		}
		if ok, _ := doublestar.Match(pattern, c); ok {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out, nil
}
