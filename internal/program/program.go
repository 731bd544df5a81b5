// Package program is the hook bus shared by the generator and its plugins.
//
// Every hook has three phases that run in the order Before, On, After.
// Within a phase, handlers run by ascending priority and then in the order
// they were registered. Each handler receives the context returned by the
// previous one.
package program

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/logger"
)

type Phase string

const (
	PhaseBefore Phase = "BEFORE"
	PhaseOn     Phase = "ON"
	PhaseAfter  Phase = "AFTER"
)

var phases = []Phase{PhaseBefore, PhaseOn, PhaseAfter}

// DefaultPriority is used when Register is given no priority.
const DefaultPriority = 0

// Key is the registration key of a hook phase.
func Key(phase Phase, hook string) string {
	return fmt.Sprintf("__%s__::%s", phase, hook)
}

// Hook is a typed handle on a named hook. Handlers registered through it
// receive and return a C.
type Hook[C any] struct {
	name string
}

func NewHook[C any](name string) Hook[C] {
	return Hook[C]{name: name}
}

func (h Hook[C]) Name() string {
	return h.name
}

// Handler transforms the context of a hook. A returned error stops the
// trigger immediately.
type Handler[C any] func(ctx context.Context, c C) (C, error)

type registration struct {
	handler  any
	priority int
	seq      int
	plugin   string
}

// Plugin registers handlers on a program.
type Plugin interface {
	Name() string
	Apply(p *Program) error
}

type Program struct {
	lock     sync.Mutex
	handlers map[string][]registration
	seq      int
	// applying is the plugin whose Apply is running, for logs.
	applying string
}

func New() *Program {
	return &Program{handlers: make(map[string][]registration)}
}

// Create returns a program with the plugins applied in order.
func Create(plugins ...Plugin) (*Program, error) {
	p := New()
	if err := p.LoadPlugins(plugins...); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPlugins applies each plugin in order. The first failure stops loading.
func (p *Program) LoadPlugins(plugins ...Plugin) error {
	for _, plugin := range plugins {
		p.lock.Lock()
		p.applying = plugin.Name()
		p.lock.Unlock()
		err := plugin.Apply(p)
		p.lock.Lock()
		p.applying = ""
		p.lock.Unlock()
		if err != nil {
			return errors.Wrapf(err, "apply plugin %s", plugin.Name())
		}
		logger.Debugw("plugin loaded", logger.FieldPlugin, plugin.Name())
	}
	return nil
}

// Register adds a handler to one phase of a hook. The optional priority
// defaults to DefaultPriority; lower values run first.
func Register[C any](p *Program, hook Hook[C], phase Phase, handler Handler[C], priority ...int) {
	prio := DefaultPriority
	if len(priority) > 0 {
		prio = priority[0]
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.seq = p.seq + 1
	key := Key(phase, hook.name)
	p.handlers[key] = append(p.handlers[key], registration{
		handler:  handler,
		priority: prio,
		seq:      p.seq,
		plugin:   p.applying,
	})
}

// Has reports whether any phase of the hook has a handler.
func (p *Program) Has(hook string) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, phase := range phases {
		if len(p.handlers[Key(phase, hook)]) > 0 {
			return true
		}
	}
	return false
}

func (p *Program) ordered(phase Phase, hook string) []registration {
	p.lock.Lock()
	defer p.lock.Unlock()
	regs := append([]registration(nil), p.handlers[Key(phase, hook)]...)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	return regs
}

// Trigger runs every handler of the hook and returns the final context. A
// hook without any handler is an error.
func Trigger[C any](ctx context.Context, p *Program, hook Hook[C], c C) (C, error) {
	if !p.Has(hook.name) {
		return c, errors.Newf("no handler registered for hook %q", hook.name)
	}
	for _, phase := range phases {
		for _, reg := range p.ordered(phase, hook.name) {
			handler, ok := reg.handler.(Handler[C])
			if !ok {
				return c, errors.Newf("handler for %s has type %T", Key(phase, hook.name), reg.handler)
			}
			logger.Debugw("hook", logger.FieldHook, Key(phase, hook.name), logger.FieldPlugin, reg.plugin)
			next, err := handler(ctx, c)
			if err != nil {
				if reg.plugin != "" {
					return c, errors.Wrapf(err, "%s (plugin %s)", Key(phase, hook.name), reg.plugin)
				}
				return c, errors.Wrap(err, Key(phase, hook.name))
			}
			c = next
		}
	}
	return c, nil
}
