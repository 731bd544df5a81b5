// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"context"
	"strconv"
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/compiler/grammar"
	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type parserThriftTokens struct {
	*grammar.Cursor
}

func newParser(ctx context.Context, reporter exc.Reporter, f idl.LexerFile) (*parserThriftTokens, error) {
	c, err := grammar.NewCursor(ctx, reporter, f)
	if err != nil {
		return nil, err
	}
	return &parserThriftTokens{Cursor: c}, nil
}

// Document = { Header } { Definition } .
func (p *parserThriftTokens) parseDocument() *astDocument {
	this := &astDocument{}
	if p.Failed() {
		return nil
	}
	for !p.AtEOF() {
		switch {
		case p.IsKeyword("include", "cpp_include"):
			h := p.parseInclude()
			if h == nil {
				return nil
			}
			this.headers = append(this.headers, h)
		case p.IsKeyword("namespace"):
			h := p.parseNamespace()
			if h == nil {
				return nil
			}
			this.headers = append(this.headers, h)
		default:
			d := p.parseDefinition()
			if d == nil {
				return nil
			}
			this.definitions = append(this.definitions, d)
		}
	}
	return this
}

// Include = ( include | cpp_include ) Literal .
func (p *parserThriftTokens) parseInclude() *astInclude {
	kw := p.ExpectKeyword("include", "cpp_include")
	if kw == nil {
		return nil
	}
	path := p.ExpectOne(idl.TokenTypeText)
	if path == nil {
		return nil
	}
	p.acceptListSeparator()
	return &astInclude{astNode: astNode{*kw.Span.Start}, path: path.Value, cpp: kw.Value == "cpp_include"}
}

// Namespace = namespace ( identifier | star ) DottedName .
func (p *parserThriftTokens) parseNamespace() *astNamespace {
	kw := p.ExpectKeyword("namespace")
	if kw == nil {
		return nil
	}
	scope := p.ExpectOneOf(idl.TokenTypeIdentifier, idl.TokenTypeStar)
	if scope == nil {
		return nil
	}
	name, ok := p.parseDottedName()
	if !ok {
		return nil
	}
	p.parseAnnotations()
	p.acceptListSeparator()
	return &astNamespace{astNode: astNode{*kw.Span.Start}, scope: scope.Value, name: name}
}

// Definition = Const | Typedef | Enum | Struct | Union | Exception | Service .
func (p *parserThriftTokens) parseDefinition() astDefinition {
	switch {
	case p.IsKeyword("const"):
		if v := p.parseConst(); v != nil {
			return v
		}
	case p.IsKeyword("typedef"):
		if v := p.parseTypedef(); v != nil {
			return v
		}
	case p.IsKeyword("enum"):
		if v := p.parseEnum(); v != nil {
			return v
		}
	case p.IsKeyword("struct", "union", "exception"):
		if v := p.parseStruct(); v != nil {
			return v
		}
	case p.IsKeyword("service"):
		if v := p.parseService(); v != nil {
			return v
		}
	default:
		p.Illegal()
	}
	return nil
}

// Const = const FieldType identifier equal ConstValue [ListSeparator] .
func (p *parserThriftTokens) parseConst() *astConst {
	first := p.Mark()
	kw := p.ExpectKeyword("const")
	if kw == nil {
		return nil
	}
	typ := p.parseFieldType()
	if typ == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	if p.ExpectOne(idl.TokenTypeEqual) == nil {
		return nil
	}
	value := p.parseConstValue()
	if value == nil {
		return nil
	}
	p.acceptListSeparator()
	this := &astConst{astNode: astNode{*kw.Span.Start}, typ: typ, name: name.Value, value: value}
	p.Declare(first, &this.comments)
	return this
}

// Typedef = typedef FieldType identifier [Annotations] [ListSeparator] .
func (p *parserThriftTokens) parseTypedef() *astTypedef {
	first := p.Mark()
	kw := p.ExpectKeyword("typedef")
	if kw == nil {
		return nil
	}
	typ := p.parseFieldType()
	if typ == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	p.acceptListSeparator()
	this := &astTypedef{astNode: astNode{*kw.Span.Start}, typ: typ, name: name.Value, annotations: annotations}
	p.Declare(first, &this.comments)
	return this
}

// Enum = enum identifier curlyOpen { EnumValue } curlyClose [Annotations] .
func (p *parserThriftTokens) parseEnum() *astEnum {
	first := p.Mark()
	kw := p.ExpectKeyword("enum")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	if p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	this := &astEnum{astNode: astNode{*kw.Span.Start}, name: name.Value}
	for !p.Is(idl.TokenTypeCurlyClose) {
		v := p.parseEnumValue()
		if v == nil {
			return nil
		}
		this.values = append(this.values, v)
	}
	p.Advance()
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

// EnumValue = identifier [equal IntConstant] [Annotations] [ListSeparator] .
func (p *parserThriftTokens) parseEnumValue() *astEnumValue {
	first := p.Mark()
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this := &astEnumValue{astNode: astNode{*name.Span.Start}, name: name.Value}
	if p.Accept(idl.TokenTypeEqual) {
		v, ok := p.parseInt()
		if !ok {
			return nil
		}
		this.value = &v
	}
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

// Struct = ( struct | union | exception ) identifier [xsd_all] curlyOpen { Field } curlyClose [Annotations] .
func (p *parserThriftTokens) parseStruct() *astStruct {
	first := p.Mark()
	kw := p.ExpectKeyword("struct", "union", "exception")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	_, _ = p.AcceptKeyword("xsd_all")
	if p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	this := &astStruct{astNode: astNode{*kw.Span.Start}, keyword: kw.Value, name: name.Value}
	for !p.Is(idl.TokenTypeCurlyClose) {
		f := p.parseField()
		if f == nil {
			return nil
		}
		this.fields = append(this.fields, f)
	}
	p.Advance()
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

// Field = [FieldID colon] [FieldReq] FieldType identifier [equal ConstValue] [Annotations] [ListSeparator] .
func (p *parserThriftTokens) parseField() *astField {
	first := p.Mark()
	start := p.Peek()
	if start == nil {
		p.Illegal()
		return nil
	}
	this := &astField{astNode: astNode{*start.Span.Start}}
	if p.Is(idl.TokenTypeIntegerDecimal) || p.Is(idl.TokenTypeIntegerHex) || p.Is(idl.TokenTypeMinus) {
		id, ok := p.parseInt()
		if !ok {
			return nil
		}
		this.id = &id
		if p.ExpectOne(idl.TokenTypeColon) == nil {
			return nil
		}
	}
	if req, ok := p.AcceptKeyword("required", "optional"); ok {
		this.req = req
	}
	this.typ = p.parseFieldType()
	if this.typ == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this.name = name.Value
	if p.Accept(idl.TokenTypeEqual) {
		this.defaultVal = p.parseConstValue()
		if this.defaultVal == nil {
			return nil
		}
	}
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = append(append([]astAnnotation{}, this.typ.annotations...), annotations...)
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

// Service = service identifier [extends DottedName] curlyOpen { Function } curlyClose [Annotations] .
func (p *parserThriftTokens) parseService() *astService {
	first := p.Mark()
	kw := p.ExpectKeyword("service")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this := &astService{astNode: astNode{*kw.Span.Start}, name: name.Value}
	if _, ok := p.AcceptKeyword("extends"); ok {
		extends, ok := p.parseDottedName()
		if !ok {
			return nil
		}
		this.extends = extends
	}
	if p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	for !p.Is(idl.TokenTypeCurlyClose) {
		f := p.parseFunction()
		if f == nil {
			return nil
		}
		this.functions = append(this.functions, f)
	}
	p.Advance()
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

// Function = [oneway] ( void | FieldType ) identifier parenOpen { Field } parenClose [Throws] [Annotations] [ListSeparator] .
func (p *parserThriftTokens) parseFunction() *astFunction {
	first := p.Mark()
	start := p.Peek()
	if start == nil {
		p.Illegal()
		return nil
	}
	this := &astFunction{astNode: astNode{*start.Span.Start}}
	if _, ok := p.AcceptKeyword("oneway"); ok {
		this.oneway = true
	}
	if _, ok := p.AcceptKeyword("void"); !ok {
		this.returnType = p.parseFieldType()
		if this.returnType == nil {
			return nil
		}
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this.name = name.Value
	params, ok := p.parseFieldList()
	if !ok {
		return nil
	}
	this.params = params
	if _, ok := p.AcceptKeyword("throws"); ok {
		throws, ok := p.parseFieldList()
		if !ok {
			return nil
		}
		this.throws = throws
	}
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	p.acceptListSeparator()
	p.Declare(first, &this.comments)
	return this
}

func (p *parserThriftTokens) parseFieldList() ([]*astField, bool) {
	if p.ExpectOne(idl.TokenTypeParenOpen) == nil {
		return nil, false
	}
	var fields []*astField
	for !p.Is(idl.TokenTypeParenClose) {
		f := p.parseField()
		if f == nil {
			return nil, false
		}
		fields = append(fields, f)
	}
	p.Advance()
	return fields, true
}

// FieldType = BaseType | ContainerType | DottedName , each followed by optional Annotations.
// ContainerType = map angleOpen FieldType comma FieldType angleClose | ( list | set ) angleOpen FieldType angleClose .
func (p *parserThriftTokens) parseFieldType() *astType {
	start := p.Peek()
	if start == nil || start.Type != idl.TokenTypeIdentifier {
		p.Illegal()
		return nil
	}
	this := &astType{astNode: astNode{*start.Span.Start}}
	switch start.Value {
	case "map":
		p.Advance()
		p.skipCppType()
		if p.ExpectOne(idl.TokenTypeAngleOpen) == nil {
			return nil
		}
		this.name = "map"
		if this.keyType = p.parseFieldType(); this.keyType == nil {
			return nil
		}
		if p.ExpectOne(idl.TokenTypeComma) == nil {
			return nil
		}
		if this.valueType = p.parseFieldType(); this.valueType == nil {
			return nil
		}
		if p.ExpectOne(idl.TokenTypeAngleClose) == nil {
			return nil
		}
	case "list", "set":
		p.Advance()
		p.skipCppType()
		if p.ExpectOne(idl.TokenTypeAngleOpen) == nil {
			return nil
		}
		this.name = start.Value
		if this.valueType = p.parseFieldType(); this.valueType == nil {
			return nil
		}
		if p.ExpectOne(idl.TokenTypeAngleClose) == nil {
			return nil
		}
	default:
		name, ok := p.parseDottedName()
		if !ok {
			return nil
		}
		this.name = name
	}
	annotations, ok := p.parseAnnotations()
	if !ok {
		return nil
	}
	this.annotations = annotations
	return this
}

func (p *parserThriftTokens) skipCppType() {
	if _, ok := p.AcceptKeyword("cpp_type"); ok {
		_ = p.ExpectOne(idl.TokenTypeText)
	}
}

// Annotations = parenOpen { DottedName [equal Literal] [ListSeparator] } parenClose .
//
// Annotations are optional everywhere, so an absent list is not an error.
func (p *parserThriftTokens) parseAnnotations() ([]astAnnotation, bool) {
	if !p.Is(idl.TokenTypeParenOpen) {
		return nil, true
	}
	p.Advance()
	var out []astAnnotation
	for !p.Is(idl.TokenTypeParenClose) {
		start := p.Location(p.Mark())
		key, ok := p.parseDottedName()
		if !ok {
			return nil, false
		}
		a := astAnnotation{astNode: astNode{start}, key: key}
		if p.Accept(idl.TokenTypeEqual) {
			v := p.ExpectOneOf(idl.TokenTypeText, idl.TokenTypeIntegerDecimal, idl.TokenTypeIdentifier)
			if v == nil {
				return nil, false
			}
			a.value = v.Value
		}
		out = append(out, a)
		p.acceptListSeparator()
	}
	p.Advance()
	return out, true
}

// ConstValue = IntConstant | DoubleConstant | Literal | DottedName | ConstList | ConstMap .
func (p *parserThriftTokens) parseConstValue() *idl.ConstValue {
	tok := p.Peek()
	if tok == nil {
		p.Illegal()
		return nil
	}
	switch tok.Type {
	case idl.TokenTypeMinus, idl.TokenTypePlus:
		sign := tok.Value
		p.Advance()
		n := p.ExpectOneOf(idl.TokenTypeIntegerDecimal, idl.TokenTypeIntegerHex, idl.TokenTypeFloatDecimal)
		if n == nil {
			return nil
		}
		return numberValue(n, strings.TrimPrefix(sign, "+"))
	case idl.TokenTypeIntegerDecimal, idl.TokenTypeIntegerHex, idl.TokenTypeFloatDecimal:
		p.Advance()
		return numberValue(tok, "")
	case idl.TokenTypeText:
		p.Advance()
		return &idl.ConstValue{Kind: idl.ConstValueString, Text: tok.Value}
	case idl.TokenTypeIdentifier:
		name, ok := p.parseDottedName()
		if !ok {
			return nil
		}
		if name == "true" || name == "false" {
			return &idl.ConstValue{Kind: idl.ConstValueBool, Text: name}
		}
		return &idl.ConstValue{Kind: idl.ConstValueIdentifier, Text: name}
	case idl.TokenTypeSquareOpen:
		p.Advance()
		this := &idl.ConstValue{Kind: idl.ConstValueList}
		for !p.Is(idl.TokenTypeSquareClose) {
			item := p.parseConstValue()
			if item == nil {
				return nil
			}
			this.Items = append(this.Items, item)
			p.acceptListSeparator()
		}
		p.Advance()
		return this
	case idl.TokenTypeCurlyOpen:
		p.Advance()
		this := &idl.ConstValue{Kind: idl.ConstValueMap}
		for !p.Is(idl.TokenTypeCurlyClose) {
			k := p.parseConstValue()
			if k == nil {
				return nil
			}
			if p.ExpectOne(idl.TokenTypeColon) == nil {
				return nil
			}
			v := p.parseConstValue()
			if v == nil {
				return nil
			}
			this.Pairs = append(this.Pairs, idl.ConstPair{Key: k, Value: v})
			p.acceptListSeparator()
		}
		p.Advance()
		return this
	default:
		p.Illegal()
		return nil
	}
}

func numberValue(tok *idl.Token, sign string) *idl.ConstValue {
	if tok.Type == idl.TokenTypeFloatDecimal {
		return &idl.ConstValue{Kind: idl.ConstValueDouble, Text: sign + tok.Value}
	}
	return &idl.ConstValue{Kind: idl.ConstValueInt, Text: sign + tok.Value}
}

func (p *parserThriftTokens) parseInt() (int64, bool) {
	negative := p.Accept(idl.TokenTypeMinus)
	tok := p.ExpectOneOf(idl.TokenTypeIntegerDecimal, idl.TokenTypeIntegerHex)
	if tok == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(tok.Value, 0, 64)
	if err != nil {
		p.Report(exc.CodeInvalidNumber, "invalid integer "+tok.Value)
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// DottedName = identifier { dot identifier } .
func (p *parserThriftTokens) parseDottedName() (string, bool) {
	first := p.ExpectIdentifier()
	if first == nil {
		return "", false
	}
	name := first.Value
	for p.Is(idl.TokenTypeDot) {
		p.Advance()
		next := p.ExpectIdentifier()
		if next == nil {
			return "", false
		}
		name = name + "." + next.Value
	}
	return name, true
}

// ListSeparator = comma | semicolon .
func (p *parserThriftTokens) acceptListSeparator() {
	if !p.Accept(idl.TokenTypeComma) {
		_ = p.Accept(idl.TokenTypeSemicolon)
	}
}
