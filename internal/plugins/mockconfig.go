package plugins

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/btree"

	"gopkg.idlgen.dev/generator.go/internal/config"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

// NewMockConfig keeps the local mock switchboard in step with the generated
// methods. The file on disk at diskPath is read once per run and the merged
// result is added to the output set as dist. A file that cannot be read is
// replaced by an empty list after a single warning.
func NewMockConfig(diskPath string, dist string) program.Plugin {
	return Func{
		PluginName: "mockconfig",
		ApplyFunc: func(p *program.Program) error {
			var (
				files   *btree.Map[string, *program.Dist]
				prior   *config.MockConfig
				methods []string
			)
			program.Register(p, program.ParseEntry, program.PhaseAfter, func(ctx context.Context, c *program.ParseEntryContext) (*program.ParseEntryContext, error) {
				files = c.Files
				methods = nil
				prior = nil
				if _, err := os.Stat(diskPath); errors.Is(err, os.ErrNotExist) {
					return c, nil
				}
				cfg, err := config.LoadMockConfig(diskPath)
				if err != nil {
					if c.Registry != nil {
						c.Registry.HintOnce("mockconfig", "mock config unreadable, starting from an empty list",
							logger.FieldPath, diskPath, logger.FieldError, err)
					}
					return c, nil
				}
				prior = cfg
				return c, nil
			})
			program.Register(p, program.GenFileAST, program.PhaseAfter, func(ctx context.Context, c *program.GenFileASTContext) (*program.GenFileASTContext, error) {
				if files == nil {
					return c, errors.New("mock config stage ran before PARSE_ENTRY")
				}
				for _, m := range c.Methods {
					methods = append(methods, c.Service.Name+"."+m.Name)
				}
				content, err := prior.Merge(methods).Marshal()
				if err != nil {
					return c, err
				}
				files.Set(dist, &program.Dist{Path: dist, Content: content})
				return c, nil
			}, PriorityLate)
			return nil
		},
	}
}
