// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "strings"

// Document is the dialect independent result of parsing one IDL file.
type Document struct {
	IdlPath    string
	Dialect    FileKind
	Namespace  string
	Statements []Statement
	Includes   []string
	IsEntry    bool
	// Root is the nested namespace tree. Only proto documents carry one.
	Root *Namespace
}

// Services returns the service statements in declaration order.
func (d *Document) Services() []*ServiceDefinition {
	var out []*ServiceDefinition
	for _, s := range d.Statements {
		if svc, ok := s.(*ServiceDefinition); ok {
			out = append(out, svc)
		}
	}
	return out
}

type Namespace struct {
	Name     string
	Children []*Namespace
	// Types are the simple names of messages and enums declared directly in
	// this namespace.
	Types []string
}

// Child returns the named child namespace, creating it when missing.
func (n *Namespace) Child(name string) *Namespace {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &Namespace{Name: name}
	n.Children = append(n.Children, c)
	return c
}

type StatementKind string

const (
	StatementKindService  StatementKind = "ServiceDefinition"
	StatementKindFunction StatementKind = "FunctionDefinition"
	StatementKindStruct   StatementKind = "StructDefinition"
	StatementKindField    StatementKind = "FieldDefinition"
	StatementKindEnum     StatementKind = "EnumDefinition"
	StatementKindMember   StatementKind = "EnumMember"
	StatementKindTypedef  StatementKind = "TypedefDefinition"
	StatementKindConst    StatementKind = "ConstDefinition"
)

// Statement is a closed set of declarations. Only the types in this file
// implement it.
type Statement interface {
	Kind() StatementKind
	statement()
}

type ServiceDefinition struct {
	Name            string
	Extends         string
	Functions       []*FunctionDefinition
	ExtensionConfig *ExtensionConfig
	Annotations     []Annotation
	Comments        []Comment
	Loc             Location
}

type FunctionDefinition struct {
	Name            string
	Params          []*FieldDefinition
	ReturnType      *FieldType
	Oneway          bool
	ExtensionConfig *ExtensionConfig
	Annotations     []Annotation
	Comments        []Comment
	Loc             Location
}

// StructVariant separates the declaration keywords that all produce a
// StructDefinition.
type StructVariant string

const (
	StructVariantStruct    StructVariant = "struct"
	StructVariantUnion     StructVariant = "union"
	StructVariantException StructVariant = "exception"
	StructVariantMessage   StructVariant = "message"
)

type StructDefinition struct {
	Name        string
	Variant     StructVariant
	Fields      []*FieldDefinition
	Annotations []Annotation
	Comments    []Comment
	Loc         Location
}

type FieldDefinition struct {
	ID           int64
	Name         string
	Type         *FieldType
	Required     bool
	Optional     bool
	DefaultValue *ConstValue
	Annotations  []Annotation
	Comments     []Comment
	Loc          Location
}

type EnumDefinition struct {
	Name        string
	Members     []*EnumMember
	Annotations []Annotation
	Comments    []Comment
	Loc         Location
}

type EnumMember struct {
	Name     string
	Value    int64
	Comments []Comment
	Loc      Location
}

type TypedefDefinition struct {
	Name     string
	Type     *FieldType
	Comments []Comment
	Loc      Location
}

type ConstDefinition struct {
	Name     string
	Type     *FieldType
	Value    *ConstValue
	Comments []Comment
	Loc      Location
}

func (*ServiceDefinition) Kind() StatementKind  { return StatementKindService }
func (*FunctionDefinition) Kind() StatementKind { return StatementKindFunction }
func (*StructDefinition) Kind() StatementKind   { return StatementKindStruct }
func (*FieldDefinition) Kind() StatementKind    { return StatementKindField }
func (*EnumDefinition) Kind() StatementKind     { return StatementKindEnum }
func (*EnumMember) Kind() StatementKind         { return StatementKindMember }
func (*TypedefDefinition) Kind() StatementKind  { return StatementKindTypedef }
func (*ConstDefinition) Kind() StatementKind    { return StatementKindConst }

func (*ServiceDefinition) statement()  {}
func (*FunctionDefinition) statement() {}
func (*StructDefinition) statement()   {}
func (*FieldDefinition) statement()    {}
func (*EnumDefinition) statement()     {}
func (*EnumMember) statement()         {}
func (*TypedefDefinition) statement()  {}
func (*ConstDefinition) statement()    {}

// StatementName returns the declared name of any statement.
func StatementName(s Statement) string {
	switch v := s.(type) {
	case *ServiceDefinition:
		return v.Name
	case *FunctionDefinition:
		return v.Name
	case *StructDefinition:
		return v.Name
	case *FieldDefinition:
		return v.Name
	case *EnumDefinition:
		return v.Name
	case *EnumMember:
		return v.Name
	case *TypedefDefinition:
		return v.Name
	case *ConstDefinition:
		return v.Name
	default:
		return ""
	}
}

type CommentType string

const (
	CommentLine  CommentType = "line"
	CommentBlock CommentType = "block"
)

// Comment is either a single comment in Value or a run of adjacent comments
// in Values, one entry per source comment.
type Comment struct {
	Type   CommentType
	Value  string
	Values []string
}

// Lines flattens the comment into text lines.
func (c Comment) Lines() []string {
	if len(c.Values) > 0 {
		var out []string
		for _, v := range c.Values {
			out = append(out, strings.Split(v, "\n")...)
		}
		return out
	}
	return strings.Split(c.Value, "\n")
}

// ExtensionConfig is the HTTP mapping of a service or function. A non-nil
// value always has a Method.
type ExtensionConfig struct {
	Method     string            `json:"method,omitempty" yaml:"method,omitempty"`
	URI        string            `json:"uri,omitempty" yaml:"uri,omitempty"`
	Serializer string            `json:"serializer,omitempty" yaml:"serializer,omitempty"`
	Group      string            `json:"group,omitempty" yaml:"group,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

type Annotation struct {
	Key   string
	Value string
	Loc   Location
}

// LookupAnnotation returns the value of the last annotation with the key.
func LookupAnnotation(as []Annotation, key string) (string, bool) {
	v, ok := "", false
	for _, a := range as {
		if a.Key == key {
			v, ok = a.Value, true
		}
	}
	return v, ok
}

type FieldTypeKind string

const (
	FieldTypeBase       FieldTypeKind = "base"
	FieldTypeIdentifier FieldTypeKind = "identifier"
	FieldTypeList       FieldTypeKind = "list"
	FieldTypeSet        FieldTypeKind = "set"
	FieldTypeMap        FieldTypeKind = "map"
)

type FieldType struct {
	Kind      FieldTypeKind
	Name      string
	KeyType   *FieldType
	ValueType *FieldType
}

func (t *FieldType) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case FieldTypeList, FieldTypeSet:
		return string(t.Kind) + "<" + t.ValueType.String() + ">"
	case FieldTypeMap:
		return "map<" + t.KeyType.String() + "," + t.ValueType.String() + ">"
	default:
		return t.Name
	}
}

type ConstValueKind string

const (
	ConstValueInt        ConstValueKind = "int"
	ConstValueDouble     ConstValueKind = "double"
	ConstValueString     ConstValueKind = "string"
	ConstValueBool       ConstValueKind = "bool"
	ConstValueIdentifier ConstValueKind = "identifier"
	ConstValueList       ConstValueKind = "list"
	ConstValueMap        ConstValueKind = "map"
)

type ConstValue struct {
	Kind ConstValueKind
	// Text is the literal as written, without quotes for strings.
	Text  string
	Items []*ConstValue
	Pairs []ConstPair
}

type ConstPair struct {
	Key   *ConstValue
	Value *ConstValue
}
