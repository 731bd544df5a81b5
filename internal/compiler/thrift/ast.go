// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type node interface {
	node()
}

type astNode struct {
	loc idl.Location
}

func (astNode) node() {}

type astDocument struct {
	astNode
	headers     []astHeader
	definitions []astDefinition
}

type astHeader interface {
	node
	header()
}

type astDefinition interface {
	node
	definition()
}

type astInclude struct {
	astNode
	path string
	cpp  bool
}

type astNamespace struct {
	astNode
	scope string
	name  string
}

type astAnnotation struct {
	astNode
	key   string
	value string
}

type astType struct {
	astNode
	name        string
	keyType     *astType
	valueType   *astType
	annotations []astAnnotation
}

type astField struct {
	astNode
	id          *int64
	req         string
	typ         *astType
	name        string
	defaultVal  *idl.ConstValue
	annotations []astAnnotation
	comments    []idl.Comment
}

type astConst struct {
	astNode
	typ      *astType
	name     string
	value    *idl.ConstValue
	comments []idl.Comment
}

type astTypedef struct {
	astNode
	typ         *astType
	name        string
	annotations []astAnnotation
	comments    []idl.Comment
}

type astEnumValue struct {
	astNode
	name        string
	value       *int64
	annotations []astAnnotation
	comments    []idl.Comment
}

type astEnum struct {
	astNode
	name        string
	values      []*astEnumValue
	annotations []astAnnotation
	comments    []idl.Comment
}

type astStruct struct {
	astNode
	keyword     string
	name        string
	fields      []*astField
	annotations []astAnnotation
	comments    []idl.Comment
}

type astFunction struct {
	astNode
	oneway      bool
	returnType  *astType // nil for void
	name        string
	params      []*astField
	throws      []*astField
	annotations []astAnnotation
	comments    []idl.Comment
}

type astService struct {
	astNode
	name        string
	extends     string
	functions   []*astFunction
	annotations []astAnnotation
	comments    []idl.Comment
}

func (*astInclude) header()   {}
func (*astNamespace) header() {}

func (*astConst) definition()   {}
func (*astTypedef) definition() {}
func (*astEnum) definition()    {}
func (*astStruct) definition()  {}
func (*astService) definition() {}
