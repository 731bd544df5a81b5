package compiler

import (
	"fmt"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

// check() applies structural type checking to a set of parsed documents.
// reports: identifier types that resolve to nothing, or to a declaration
// that is not a type.
func check(docs []*idl.Document, reporter exc.Reporter) {
	checker := documentChecker{
		symbols:  idl.NewSymbolTable(docs...),
		reporter: reporter,
	}
	for _, doc := range docs {
		checker.check(doc)
	}
}

type documentChecker struct {
	symbols  *idl.SymbolTable
	reporter exc.Reporter
}

type typeKind uint16

const (
	typeKindError   typeKind = 0
	typeKindStruct  typeKind = 1
	typeKindEnum    typeKind = 2
	typeKindTypedef typeKind = 3
	typeKindConst   typeKind = 4
)

var (
	valueKinds   = []typeKind{typeKindStruct, typeKindEnum, typeKindTypedef}
	messageKinds = []typeKind{typeKindStruct, typeKindTypedef}
)

func (c *documentChecker) lookup(doc *idl.Document, name string) typeKind {
	st, _, ok := c.symbols.Resolve(doc, name)
	if !ok {
		return typeKindError
	}
	switch st.(type) {
	case *idl.StructDefinition:
		return typeKindStruct
	case *idl.EnumDefinition:
		return typeKindEnum
	case *idl.TypedefDefinition:
		return typeKindTypedef
	case *idl.ConstDefinition:
		return typeKindConst
	default:
		return typeKindError
	}
}

func (c *documentChecker) check(doc *idl.Document) {
	idl.Walk(doc, func(s idl.Statement) {
		switch v := s.(type) {
		case *idl.FieldDefinition:
			c.checkFieldType(doc, v.Loc, v.Type, valueKinds)
		case *idl.TypedefDefinition:
			c.checkFieldType(doc, v.Loc, v.Type, valueKinds)
		case *idl.ConstDefinition:
			c.checkFieldType(doc, v.Loc, v.Type, valueKinds)
		case *idl.FunctionDefinition:
			expected := valueKinds
			if doc.Dialect == idl.FileKindProtobuf {
				expected = messageKinds
			}
			c.checkFieldType(doc, v.Loc, v.ReturnType, expected)
		}
	})
}

func (c *documentChecker) checkFieldType(doc *idl.Document, loc idl.Location, t *idl.FieldType, expectedKinds []typeKind) {
	if t == nil {
		return
	}
	switch t.Kind {
	case idl.FieldTypeList, idl.FieldTypeSet:
		c.checkFieldType(doc, loc, t.ValueType, valueKinds)
		return
	case idl.FieldTypeMap:
		c.checkFieldType(doc, loc, t.KeyType, valueKinds)
		c.checkFieldType(doc, loc, t.ValueType, valueKinds)
		return
	case idl.FieldTypeIdentifier:
	default:
		return
	}
	kind := c.lookup(doc, t.Name)
	for _, expectedKind := range expectedKinds {
		if kind == expectedKind {
			return
		}
	}
	where := exc.Location{URI: doc.IdlPath, Location: loc}
	if kind == typeKindError {
		_ = c.reporter.Report(exc.New(where, exc.CodeUnresolvedType, fmt.Sprintf("unresolved type %s", t.Name)))
		return
	}
	_ = c.reporter.Report(exc.New(where, exc.CodeUnresolvedType, fmt.Sprintf("%s does not name a type", t.Name)))
}
