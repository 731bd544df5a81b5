package plugins

import (
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

// AliasAnnotation renames a service from the IDL itself.
const AliasAnnotation = "api.alias"

// NewAlias renames services. The configured map wins over an api.alias
// annotation on the service. A service is renamed at most once.
func NewAlias(aliases map[string]string) program.Plugin {
	return Func{
		PluginName: "alias",
		ApplyFunc: func(p *program.Program) error {
			renamed := make(map[*idl.ServiceDefinition]bool)
			program.Register(p, program.ParseEntry, program.PhaseOn, eachDocument(func(c *program.ParseEntryContext, i int) {
				for _, svc := range c.AST[i].Services() {
					if renamed[svc] {
						continue
					}
					name, ok := aliases[svc.Name]
					if !ok {
						name, ok = idl.LookupAnnotation(svc.Annotations, AliasAnnotation)
					}
					if !ok || name == "" || name == svc.Name {
						continue
					}
					logOf(c.Registry).Debugw("service alias", logger.FieldService, svc.Name, "alias", name)
					svc.Name = name
					renamed[svc] = true
				}
			}))
			return nil
		},
	}
}
