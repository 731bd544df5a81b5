package plugins

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/route"
)

// NewFieldFilter removes struct fields that match one of the "Struct.field"
// glob patterns or carry api.none.
func NewFieldFilter(patterns []string) (program.Plugin, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf("invalid field pattern %q", pattern)
		}
	}
	excluded := func(st *idl.StructDefinition, f *idl.FieldDefinition) bool {
		if route.Hidden(f.Annotations) {
			return true
		}
		name := st.Name + "." + f.Name
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
	return Func{
		PluginName: "fieldfilter",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.ParseEntry, program.PhaseOn, eachDocument(func(c *program.ParseEntryContext, i int) {
				for _, s := range c.AST[i].Statements {
					st, ok := s.(*idl.StructDefinition)
					if !ok {
						continue
					}
					kept := st.Fields[:0]
					for _, f := range st.Fields {
						if excluded(st, f) {
							logOf(c.Registry).Debugw("field excluded", logger.FieldField, st.Name+"."+f.Name)
							continue
						}
						kept = append(kept, f)
					}
					st.Fields = kept
				}
			}))
			return nil
		},
	}, nil
}
