package plugins

import (
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/target"
)

// NewInclude makes include paths explicitly relative and drops repeated
// includes of the same file. A repeat is logged, never fatal.
func NewInclude() program.Plugin {
	return Func{
		PluginName: "include",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.ParseEntry, program.PhaseOn, eachDocument(func(c *program.ParseEntryContext, i int) {
				doc := c.AST[i]
				seen := make(map[string]bool, len(doc.Includes))
				out := doc.Includes[:0]
				for _, inc := range doc.Includes {
					rel := target.Relative(inc)
					if seen[rel] {
						logOf(c.Registry).Warnw("duplicate include", logger.FieldFile, doc.IdlPath, logger.FieldInclude, inc)
						continue
					}
					seen[rel] = true
					out = append(out, rel)
				}
				doc.Includes = out
			}), PriorityEarly)
			return nil
		},
	}
}
