package protobuf

import (
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/route"
)

// unifier flattens nested messages and enums into top level statements
// named Outer_Inner and rewrites references to them.
type unifier struct {
	doc *idl.Document
	// declared holds every flattened type name in the file.
	declared map[string]bool
}

func unify(uri string, file *astFile) *idl.Document {
	u := &unifier{
		doc: &idl.Document{
			IdlPath:   uri,
			Dialect:   idl.FileKindProtobuf,
			Namespace: file.pkg,
			Root:      &idl.Namespace{},
		},
		declared: make(map[string]bool),
	}
	for _, imp := range file.imports {
		u.doc.Includes = append(u.doc.Includes, imp.path)
	}
	pkg := u.doc.Root
	if file.pkg != "" {
		for _, segment := range strings.Split(file.pkg, ".") {
			pkg = pkg.Child(segment)
		}
	}
	for _, d := range file.definitions {
		switch v := d.(type) {
		case *astMessage:
			u.declareMessage("", v)
		case *astEnum:
			u.declared[v.name] = true
		}
	}
	for _, d := range file.definitions {
		switch v := d.(type) {
		case *astMessage:
			pkg.Types = append(pkg.Types, v.name)
			u.message(nil, v, pkg)
		case *astEnum:
			pkg.Types = append(pkg.Types, v.name)
			u.doc.Statements = append(u.doc.Statements, u.enum("", v))
		case *astService:
			u.doc.Statements = append(u.doc.Statements, u.service(v))
		}
	}
	return u.doc
}

func (u *unifier) declareMessage(prefix string, m *astMessage) {
	name := prefix + m.name
	u.declared[name] = true
	for _, e := range m.enums {
		u.declared[name+"_"+e.name] = true
	}
	for _, nested := range m.messages {
		u.declareMessage(name+"_", nested)
	}
}

// message appends m and then its nested types. scope lists the names of
// the enclosing messages, outermost first.
func (u *unifier) message(scope []string, m *astMessage, ns *idl.Namespace) {
	scope = append(append([]string{}, scope...), m.name)
	name := strings.Join(scope, "_")
	this := &idl.StructDefinition{
		Name:        name,
		Variant:     idl.StructVariantMessage,
		Annotations: annotations(m.options),
		Comments:    m.comments,
		Loc:         m.loc,
	}
	for _, f := range m.fields {
		this.Fields = append(this.Fields, u.field(scope, f))
	}
	u.doc.Statements = append(u.doc.Statements, this)

	if len(m.messages) == 0 && len(m.enums) == 0 {
		return
	}
	child := ns.Child(m.name)
	for _, e := range m.enums {
		child.Types = append(child.Types, e.name)
		u.doc.Statements = append(u.doc.Statements, u.enum(name+"_", e))
	}
	for _, nested := range m.messages {
		child.Types = append(child.Types, nested.name)
		u.message(scope, nested, child)
	}
}

func (u *unifier) field(scope []string, f *astField) *idl.FieldDefinition {
	this := &idl.FieldDefinition{
		ID:          f.number,
		Name:        f.name,
		Required:    f.label == "required",
		Optional:    f.label == "optional" || f.oneof != "",
		Annotations: annotations(f.options),
		Comments:    f.comments,
		Loc:         f.loc,
	}
	if f.typ.name == "map" {
		this.Type = &idl.FieldType{
			Kind:      idl.FieldTypeMap,
			Name:      "map",
			KeyType:   u.fieldType(scope, f.typ.keyType),
			ValueType: u.fieldType(scope, f.typ.valueType),
		}
	} else {
		this.Type = u.fieldType(scope, f.typ.name)
		if f.label == "repeated" {
			this.Type = &idl.FieldType{Kind: idl.FieldTypeList, Name: "list", ValueType: this.Type}
		}
	}
	for _, o := range f.options {
		if o.name == "default" {
			this.DefaultValue = o.value
		}
	}
	return this
}

// fieldType maps scalars onto base keywords and resolves references to
// nested types from the innermost enclosing message outward.
func (u *unifier) fieldType(scope []string, name string) *idl.FieldType {
	if base, ok := idl.ProtobufScalars[name]; ok {
		return &idl.FieldType{Kind: idl.FieldTypeBase, Name: base}
	}
	if !strings.HasPrefix(name, ".") {
		local := strings.ReplaceAll(name, ".", "_")
		for x := len(scope); x >= 0; x = x - 1 {
			candidate := local
			if x > 0 {
				candidate = strings.Join(scope[:x], "_") + "_" + local
			}
			if u.declared[candidate] {
				return &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: candidate}
			}
		}
	}
	return &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: name}
}

func (u *unifier) enum(prefix string, e *astEnum) *idl.EnumDefinition {
	this := &idl.EnumDefinition{
		Name:        prefix + e.name,
		Annotations: annotations(e.options),
		Comments:    e.comments,
		Loc:         e.loc,
	}
	for _, v := range e.values {
		this.Members = append(this.Members, &idl.EnumMember{
			Name:     v.name,
			Value:    v.number,
			Comments: v.comments,
			Loc:      v.loc,
		})
	}
	return this
}

func (u *unifier) service(s *astService) *idl.ServiceDefinition {
	svcAnnotations := annotations(s.options)
	this := &idl.ServiceDefinition{
		Name:            s.name,
		ExtensionConfig: route.Normalize(svcAnnotations, nil),
		Annotations:     svcAnnotations,
		Comments:        s.comments,
		Loc:             s.loc,
	}
	for _, rpc := range s.rpcs {
		rpcAnnotations := annotations(rpc.options)
		this.Functions = append(this.Functions, &idl.FunctionDefinition{
			Name: rpc.name,
			Params: []*idl.FieldDefinition{{
				ID:   1,
				Name: "req",
				Type: u.fieldType(nil, rpc.request),
				Loc:  rpc.loc,
			}},
			ReturnType:      u.fieldType(nil, rpc.response),
			ExtensionConfig: route.Normalize(rpcAnnotations, svcAnnotations),
			Annotations:     rpcAnnotations,
			Comments:        rpc.comments,
			Loc:             rpc.loc,
		})
	}
	return this
}

func annotations(opts []astOption) []idl.Annotation {
	if len(opts) == 0 {
		return nil
	}
	out := make([]idl.Annotation, 0, len(opts))
	for _, o := range opts {
		out = append(out, idl.Annotation{Key: o.name, Value: o.value.Text, Loc: o.loc})
	}
	return out
}
