package protobuf

import (
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type astNode struct {
	loc idl.Location
}

type astFile struct {
	syntax      string
	pkg         string
	imports     []*astImport
	options     []astOption
	definitions []astDefinition
}

type astDefinition interface {
	definition()
}

type astImport struct {
	astNode
	path     string
	modifier string
}

// astOption is one flattened option. Aggregate values produce one entry per
// leaf, with the aggregate field path appended to the option name.
type astOption struct {
	astNode
	name  string
	value *idl.ConstValue
}

type astType struct {
	name      string
	keyType   string
	valueType string
}

type astField struct {
	astNode
	label    string
	typ      astType
	name     string
	number   int64
	oneof    string
	options  []astOption
	comments []idl.Comment
}

type astMessage struct {
	astNode
	name     string
	fields   []*astField
	messages []*astMessage
	enums    []*astEnum
	options  []astOption
	comments []idl.Comment
}

type astEnumValue struct {
	astNode
	name     string
	number   int64
	options  []astOption
	comments []idl.Comment
}

type astEnum struct {
	astNode
	name     string
	values   []*astEnumValue
	options  []astOption
	comments []idl.Comment
}

type astRPC struct {
	astNode
	name           string
	request        string
	requestStream  bool
	response       string
	responseStream bool
	options        []astOption
	comments       []idl.Comment
}

type astService struct {
	astNode
	name     string
	rpcs     []*astRPC
	options  []astOption
	comments []idl.Comment
}

func (*astMessage) definition() {}
func (*astEnum) definition()    {}
func (*astService) definition() {}
