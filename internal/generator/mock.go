package generator

import (
	"context"

	"github.com/iancoleman/strcase"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/plugins"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

// serviceMocks builds one sample response per method of the service.
// Methods returning void get no sample.
func (r *run) serviceMocks(ctx context.Context, doc *idl.Document, fc *program.GenFileASTContext) ([]emit.Mock, error) {
	fns := make(map[string]*idl.FunctionDefinition, len(fc.Service.Functions))
	for _, fn := range fc.Service.Functions {
		fns[strcase.ToLowerCamel(fn.Name)] = fn
	}
	var out []emit.Mock
	for _, m := range fc.Methods {
		fn, ok := fns[m.Name]
		if !ok || fn.ReturnType == nil {
			continue
		}
		var (
			v   any
			err error
		)
		if st, decl, ok := r.structOf(doc, fn.ReturnType); ok {
			v, err = r.mockStruct(ctx, decl, st, 0)
		} else {
			v, err = r.mockField(ctx, doc, fc.Service.Name, &idl.FieldDefinition{Name: m.Name, Type: fn.ReturnType}, 0)
		}
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		out = append(out, emit.Mock{Name: m.Name, Value: v})
	}
	return out, nil
}

func (r *run) structOf(doc *idl.Document, t *idl.FieldType) (*idl.StructDefinition, *idl.Document, bool) {
	if t == nil || t.Kind != idl.FieldTypeIdentifier {
		return nil, nil, false
	}
	s, decl, ok := r.reg.Symbols.Resolve(doc, t.Name)
	if !ok {
		return nil, nil, false
	}
	st, ok := s.(*idl.StructDefinition)
	return st, decl, ok
}

// mockStruct samples a struct at the given nesting level. Structs at or
// beyond the configured depth are left out.
func (r *run) mockStruct(ctx context.Context, doc *idl.Document, st *idl.StructDefinition, depth int) (any, error) {
	if depth >= r.opts.MockMaxDepth {
		return nil, nil
	}
	obj := orderedmap.New[string, any]()
	for _, f := range st.Fields {
		v, err := r.mockField(ctx, doc, st.Name, f, depth)
		if err != nil {
			return nil, err
		}
		if v != nil {
			obj.Set(f.Name, v)
		}
	}
	return obj, nil
}

// mockField asks GEN_MOCK_FIELD for the value of one field. Composite
// fields arrive with their sample already built; scalars arrive empty.
func (r *run) mockField(ctx context.Context, doc *idl.Document, owner string, f *idl.FieldDefinition, depth int) (any, error) {
	var preset any
	switch {
	case f.Type == nil:
		return nil, nil
	case f.DefaultValue != nil && f.Type.Kind != idl.FieldTypeBase:
		preset = plugins.ConstToValue(f.DefaultValue)
	default:
		v, err := r.mockType(ctx, doc, owner, f.Name, f.Type, depth)
		if err != nil {
			return nil, err
		}
		preset = v
	}
	if !r.p.Has(program.GenMockField.Name()) {
		return preset, nil
	}
	c, err := program.Trigger(ctx, r.p, program.GenMockField, &program.GenMockFieldContext{
		Struct:   owner,
		Field:    f,
		Depth:    depth,
		Value:    preset,
		Registry: r.reg,
	})
	if err != nil {
		return nil, err
	}
	return c.Value, nil
}

func (r *run) mockType(ctx context.Context, doc *idl.Document, owner string, name string, t *idl.FieldType, depth int) (any, error) {
	switch t.Kind {
	case idl.FieldTypeList, idl.FieldTypeSet:
		elem, err := r.mockField(ctx, doc, owner, &idl.FieldDefinition{Name: name, Type: t.ValueType}, depth)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return []any{}, nil
		}
		return []any{elem}, nil
	case idl.FieldTypeMap:
		return map[string]any{}, nil
	case idl.FieldTypeIdentifier:
		s, decl, ok := r.reg.Symbols.Resolve(doc, t.Name)
		if !ok {
			return nil, nil
		}
		switch v := s.(type) {
		case *idl.StructDefinition:
			return r.mockStruct(ctx, decl, v, depth+1)
		case *idl.EnumDefinition:
			if len(v.Members) == 0 {
				return nil, nil
			}
			return v.Members[0].Value, nil
		case *idl.TypedefDefinition:
			if v.Type == nil || (v.Type.Kind == idl.FieldTypeIdentifier && v.Type.Name == t.Name) {
				return nil, nil
			}
			return r.mockField(ctx, decl, owner, &idl.FieldDefinition{Name: name, Type: v.Type}, depth)
		}
	}
	return nil, nil
}
