// Package plugins holds the built-in pipeline stages.
package plugins

import (
	"context"

	"go.uber.org/zap"

	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

// Built-in stages run ahead of user handlers registered with the default
// priority.
const (
	PriorityEarly = -100
	PriorityLate  = 100
)

// Func adapts a name and an apply function to program.Plugin.
type Func struct {
	PluginName string
	ApplyFunc  func(p *program.Program) error
}

func (f Func) Name() string {
	return f.PluginName
}

func (f Func) Apply(p *program.Program) error {
	return f.ApplyFunc(p)
}

// eachDocument runs fn over every document of a PARSE_ENTRY context.
func eachDocument(fn func(c *program.ParseEntryContext, i int)) program.Handler[*program.ParseEntryContext] {
	return func(ctx context.Context, c *program.ParseEntryContext) (*program.ParseEntryContext, error) {
		for i := range c.AST {
			fn(c, i)
		}
		return c, nil
	}
}

func logOf(r *program.Registry) *zap.SugaredLogger {
	if r == nil || r.Log == nil {
		return logger.Logger
	}
	return r.Log
}
