package thrift

import (
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/route"
)

// preferred namespace scopes, most wanted first.
var namespaceScopes = []string{"js", "*"}

func unify(uri string, doc *astDocument) *idl.Document {
	out := &idl.Document{
		IdlPath: uri,
		Dialect: idl.FileKindThrift,
	}
	var namespaces []*astNamespace
	for _, h := range doc.headers {
		switch v := h.(type) {
		case *astInclude:
			if !v.cpp {
				out.Includes = append(out.Includes, v.path)
			}
		case *astNamespace:
			namespaces = append(namespaces, v)
		}
	}
	out.Namespace = pickNamespace(namespaces)
	for _, d := range doc.definitions {
		switch v := d.(type) {
		case *astConst:
			out.Statements = append(out.Statements, &idl.ConstDefinition{
				Name:     v.name,
				Type:     unifyType(v.typ),
				Value:    v.value,
				Comments: v.comments,
				Loc:      v.loc,
			})
		case *astTypedef:
			out.Statements = append(out.Statements, &idl.TypedefDefinition{
				Name:     v.name,
				Type:     unifyType(v.typ),
				Comments: v.comments,
				Loc:      v.loc,
			})
		case *astEnum:
			out.Statements = append(out.Statements, unifyEnum(v))
		case *astStruct:
			out.Statements = append(out.Statements, &idl.StructDefinition{
				Name:        v.name,
				Variant:     idl.StructVariant(v.keyword),
				Fields:      unifyFields(v.fields),
				Annotations: unifyAnnotations(v.annotations),
				Comments:    v.comments,
				Loc:         v.loc,
			})
		case *astService:
			out.Statements = append(out.Statements, unifyService(v))
		}
	}
	return out
}

func pickNamespace(ns []*astNamespace) string {
	for _, scope := range namespaceScopes {
		for _, n := range ns {
			if n.scope == scope {
				return n.name
			}
		}
	}
	if len(ns) > 0 {
		return ns[0].name
	}
	return ""
}

func unifyEnum(v *astEnum) *idl.EnumDefinition {
	this := &idl.EnumDefinition{
		Name:        v.name,
		Annotations: unifyAnnotations(v.annotations),
		Comments:    v.comments,
		Loc:         v.loc,
	}
	next := int64(0)
	for _, m := range v.values {
		if m.value != nil {
			next = *m.value
		}
		this.Members = append(this.Members, &idl.EnumMember{
			Name:     m.name,
			Value:    next,
			Comments: m.comments,
			Loc:      m.loc,
		})
		next = next + 1
	}
	return this
}

func unifyService(v *astService) *idl.ServiceDefinition {
	annotations := unifyAnnotations(v.annotations)
	this := &idl.ServiceDefinition{
		Name:            v.name,
		Extends:         v.extends,
		ExtensionConfig: route.Normalize(annotations, nil),
		Annotations:     annotations,
		Comments:        v.comments,
		Loc:             v.loc,
	}
	for _, fn := range v.functions {
		fnAnnotations := unifyAnnotations(fn.annotations)
		this.Functions = append(this.Functions, &idl.FunctionDefinition{
			Name:            fn.name,
			Params:          unifyFields(fn.params),
			ReturnType:      unifyType(fn.returnType),
			Oneway:          fn.oneway,
			ExtensionConfig: route.Normalize(fnAnnotations, annotations),
			Annotations:     fnAnnotations,
			Comments:        fn.comments,
			Loc:             fn.loc,
		})
	}
	return this
}

func unifyFields(fields []*astField) []*idl.FieldDefinition {
	out := make([]*idl.FieldDefinition, 0, len(fields))
	next := int64(1)
	for _, f := range fields {
		id := next
		if f.id != nil {
			id = *f.id
		}
		next = id + 1
		out = append(out, &idl.FieldDefinition{
			ID:           id,
			Name:         f.name,
			Type:         unifyType(f.typ),
			Required:     f.req == "required",
			Optional:     f.req == "optional",
			DefaultValue: f.defaultVal,
			Annotations:  unifyAnnotations(f.annotations),
			Comments:     f.comments,
			Loc:          f.loc,
		})
	}
	return out
}

func unifyType(t *astType) *idl.FieldType {
	if t == nil {
		return nil
	}
	switch t.name {
	case "list":
		return &idl.FieldType{Kind: idl.FieldTypeList, Name: "list", ValueType: unifyType(t.valueType)}
	case "set":
		return &idl.FieldType{Kind: idl.FieldTypeSet, Name: "set", ValueType: unifyType(t.valueType)}
	case "map":
		return &idl.FieldType{Kind: idl.FieldTypeMap, Name: "map", KeyType: unifyType(t.keyType), ValueType: unifyType(t.valueType)}
	}
	if idl.BaseTypes[t.name] {
		return &idl.FieldType{Kind: idl.FieldTypeBase, Name: t.name}
	}
	return &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: t.name}
}

func unifyAnnotations(as []astAnnotation) []idl.Annotation {
	if len(as) == 0 {
		return nil
	}
	out := make([]idl.Annotation, 0, len(as))
	for _, a := range as {
		out = append(out, idl.Annotation{Key: a.key, Value: a.value, Loc: a.loc})
	}
	return out
}
