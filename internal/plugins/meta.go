package plugins

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"

	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/route"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

// NewMeta fills GenFileASTContext.Methods with one entry per routed function
// of the service. Functions without an HTTP mapping are skipped. Existing
// entries of the same name are replaced.
func NewMeta(opts typemap.Options) program.Plugin {
	return Func{
		PluginName: "meta",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.GenFileAST, program.PhaseOn, func(ctx context.Context, c *program.GenFileASTContext) (*program.GenFileASTContext, error) {
				if c.Registry == nil {
					return c, errors.New("method metadata needs a registry")
				}
				for _, fn := range c.Service.Functions {
					if fn.ExtensionConfig == nil {
						logOf(c.Registry).Debugw("function without route", logger.FieldService, c.Service.Name, logger.FieldFunction, fn.Name)
						continue
					}
					m, err := BuildMeta(c.Registry, c.Document, c.Service, fn, opts)
					if err != nil {
						return c, errors.Wrapf(err, "%s.%s", c.Service.Name, fn.Name)
					}
					c.Methods = upsertMethod(c.Methods, m)
				}
				return c, nil
			}, PriorityEarly)
			return nil
		},
	}
}

func upsertMethod(methods []*emit.MethodMeta, m *emit.MethodMeta) []*emit.MethodMeta {
	for i, existing := range methods {
		if existing.Name == m.Name {
			methods[i] = m
			return methods
		}
	}
	return append(methods, m)
}

// BuildMeta describes one routed function.
func BuildMeta(reg *program.Registry, doc *idl.Document, svc *idl.ServiceDefinition, fn *idl.FunctionDefinition, opts typemap.Options) (*emit.MethodMeta, error) {
	resolver := reg.Resolver(doc)
	ext := fn.ExtensionConfig
	m := &emit.MethodMeta{
		Name:       strcase.ToLowerCamel(fn.Name),
		Service:    svc.Name,
		URL:        ext.URI,
		Method:     ext.Method,
		Serializer: ext.Serializer,
		Group:      ext.Group,
		Comments:   CommentLines(fn.Comments),
	}
	res, err := reg.Types.TSType(fn.ReturnType, resolver, opts)
	if err != nil {
		return nil, err
	}
	m.ResType = res
	if len(fn.Params) == 0 {
		return m, nil
	}
	req := fn.Params[0].Type
	m.ReqType, err = reg.Types.TSType(req, resolver, opts)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Kind != idl.FieldTypeIdentifier {
		return m, nil
	}
	st, _, ok := reg.Symbols.Resolve(doc, req.Name)
	if !ok {
		return m, nil
	}
	reqStruct, ok := st.(*idl.StructDefinition)
	if !ok {
		return m, nil
	}
	for _, f := range reqStruct.Fields {
		if route.Hidden(f.Annotations) {
			continue
		}
		loc, wire := route.FieldLocation(f, ext.Method)
		if m.ReqMapping == nil {
			m.ReqMapping = make(map[string][]string)
		}
		m.ReqMapping[string(loc)] = append(m.ReqMapping[string(loc)], wire)
	}
	return m, nil
}

// CommentLines flattens comments into doc comment lines.
func CommentLines(cs []idl.Comment) []string {
	var out []string
	for _, c := range cs {
		for _, l := range c.Lines() {
			out = append(out, strings.TrimSpace(l))
		}
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
