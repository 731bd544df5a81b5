// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package protobuf

import (
	"context"
	"strconv"
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/compiler/grammar"
	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

var fieldLabels = []string{"optional", "required", "repeated"}

type parserProtobufTokens struct {
	*grammar.Cursor
}

func newParser(ctx context.Context, reporter exc.Reporter, f idl.LexerFile) (*parserProtobufTokens, error) {
	c, err := grammar.NewCursor(ctx, reporter, f)
	if err != nil {
		return nil, err
	}
	return &parserProtobufTokens{Cursor: c}, nil
}

// File = { Syntax | Package | Import | Option | TopLevelDef | semicolon } .
func (p *parserProtobufTokens) parseFile() *astFile {
	if p.Failed() {
		return nil
	}
	this := &astFile{}
	for !p.AtEOF() {
		switch {
		case p.Accept(idl.TokenTypeSemicolon):
		case p.IsKeyword("syntax", "edition"):
			p.Advance()
			if p.ExpectOne(idl.TokenTypeEqual) == nil {
				return nil
			}
			v := p.ExpectOne(idl.TokenTypeText)
			if v == nil || p.ExpectOne(idl.TokenTypeSemicolon) == nil {
				return nil
			}
			this.syntax = v.Value
		case p.IsKeyword("package"):
			p.Advance()
			name, ok := p.parseFullIdent()
			if !ok || p.ExpectOne(idl.TokenTypeSemicolon) == nil {
				return nil
			}
			this.pkg = name
		case p.IsKeyword("import"):
			imp := p.parseImport()
			if imp == nil {
				return nil
			}
			this.imports = append(this.imports, imp)
		case p.IsKeyword("option"):
			opts, ok := p.parseOptionStatement()
			if !ok {
				return nil
			}
			this.options = append(this.options, opts...)
		case p.IsKeyword("message"):
			m := p.parseMessage()
			if m == nil {
				return nil
			}
			this.definitions = append(this.definitions, m)
		case p.IsKeyword("enum"):
			e := p.parseEnum()
			if e == nil {
				return nil
			}
			this.definitions = append(this.definitions, e)
		case p.IsKeyword("service"):
			s := p.parseService()
			if s == nil {
				return nil
			}
			this.definitions = append(this.definitions, s)
		case p.IsKeyword("extend"):
			if !p.skipExtend() {
				return nil
			}
		default:
			p.Illegal()
			return nil
		}
	}
	return this
}

// Import = import [ weak | public ] strLit semicolon .
func (p *parserProtobufTokens) parseImport() *astImport {
	kw := p.ExpectKeyword("import")
	if kw == nil {
		return nil
	}
	this := &astImport{astNode: astNode{*kw.Span.Start}}
	if m, ok := p.AcceptKeyword("weak", "public"); ok {
		this.modifier = m
	}
	path := p.ExpectOne(idl.TokenTypeText)
	if path == nil || p.ExpectOne(idl.TokenTypeSemicolon) == nil {
		return nil
	}
	this.path = path.Value
	return this
}

// Message = message identifier curlyOpen MessageBody curlyClose .
// MessageBody = { Field | Enum | Message | Extend | Extensions | Option | Oneof | MapField | Reserved | semicolon } .
func (p *parserProtobufTokens) parseMessage() *astMessage {
	first := p.Mark()
	kw := p.ExpectKeyword("message")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil || p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	this := &astMessage{astNode: astNode{*kw.Span.Start}, name: name.Value}
	for !p.Is(idl.TokenTypeCurlyClose) {
		if !p.parseMessageElement(this) {
			return nil
		}
	}
	p.Advance()
	p.Declare(first, &this.comments)
	return this
}

func (p *parserProtobufTokens) parseMessageElement(m *astMessage) bool {
	switch {
	case p.AtEOF():
		p.Illegal()
		return false
	case p.Accept(idl.TokenTypeSemicolon):
		return true
	case p.IsKeyword("option"):
		opts, ok := p.parseOptionStatement()
		m.options = append(m.options, opts...)
		return ok
	case p.IsKeyword("message"):
		nested := p.parseMessage()
		if nested == nil {
			return false
		}
		m.messages = append(m.messages, nested)
		return true
	case p.IsKeyword("enum"):
		e := p.parseEnum()
		if e == nil {
			return false
		}
		m.enums = append(m.enums, e)
		return true
	case p.IsKeyword("oneof"):
		fields, ok := p.parseOneof()
		m.fields = append(m.fields, fields...)
		return ok
	case p.IsKeyword("reserved", "extensions"):
		return p.skipStatement()
	case p.IsKeyword("extend"):
		return p.skipExtend()
	default:
		f := p.parseField()
		if f == nil {
			return false
		}
		m.fields = append(m.fields, f)
		return true
	}
}

// Field = [ Label ] Type identifier equal intLit [ bracketOpen FieldOptions bracketClose ] semicolon .
// MapField = map angleOpen KeyType comma Type angleClose identifier equal intLit [ FieldOptions ] semicolon .
func (p *parserProtobufTokens) parseField() *astField {
	first := p.Mark()
	start := p.Peek()
	if start == nil {
		p.Illegal()
		return nil
	}
	this := &astField{astNode: astNode{*start.Span.Start}}
	if label, ok := p.AcceptKeyword(fieldLabels...); ok {
		this.label = label
	}
	if p.IsKeyword("map") && p.isAngleOpenAt(1) {
		p.Advance()
		p.Advance()
		key, ok := p.parseTypeName()
		if !ok || p.ExpectOne(idl.TokenTypeComma) == nil {
			return nil
		}
		value, ok := p.parseTypeName()
		if !ok || p.ExpectOne(idl.TokenTypeAngleClose) == nil {
			return nil
		}
		this.typ = astType{name: "map", keyType: key, valueType: value}
	} else {
		name, ok := p.parseTypeName()
		if !ok {
			return nil
		}
		this.typ = astType{name: name}
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this.name = name.Value
	if p.ExpectOne(idl.TokenTypeEqual) == nil {
		return nil
	}
	number, ok := p.parseInt()
	if !ok {
		return nil
	}
	this.number = number
	if this.options, ok = p.parseBracketOptions(); !ok {
		return nil
	}
	if p.ExpectOne(idl.TokenTypeSemicolon) == nil {
		return nil
	}
	p.Declare(first, &this.comments)
	return this
}

func (p *parserProtobufTokens) isAngleOpenAt(n int) bool {
	t := p.PeekN(n)
	return t != nil && t.Type == idl.TokenTypeAngleOpen
}

// Oneof = oneof identifier curlyOpen { Option | OneofField | semicolon } curlyClose .
func (p *parserProtobufTokens) parseOneof() ([]*astField, bool) {
	_ = p.ExpectKeyword("oneof")
	name := p.ExpectIdentifier()
	if name == nil || p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil, false
	}
	var fields []*astField
	for !p.Is(idl.TokenTypeCurlyClose) {
		switch {
		case p.AtEOF():
			p.Illegal()
			return nil, false
		case p.Accept(idl.TokenTypeSemicolon):
		case p.IsKeyword("option"):
			if _, ok := p.parseOptionStatement(); !ok {
				return nil, false
			}
		default:
			f := p.parseField()
			if f == nil {
				return nil, false
			}
			f.oneof = name.Value
			fields = append(fields, f)
		}
	}
	p.Advance()
	return fields, true
}

// Enum = enum identifier curlyOpen { Option | EnumField | Reserved | semicolon } curlyClose .
func (p *parserProtobufTokens) parseEnum() *astEnum {
	first := p.Mark()
	kw := p.ExpectKeyword("enum")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil || p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	this := &astEnum{astNode: astNode{*kw.Span.Start}, name: name.Value}
	for !p.Is(idl.TokenTypeCurlyClose) {
		switch {
		case p.AtEOF():
			p.Illegal()
			return nil
		case p.Accept(idl.TokenTypeSemicolon):
		case p.IsKeyword("option"):
			opts, ok := p.parseOptionStatement()
			if !ok {
				return nil
			}
			this.options = append(this.options, opts...)
		case p.IsKeyword("reserved"):
			if !p.skipStatement() {
				return nil
			}
		default:
			v := p.parseEnumValue()
			if v == nil {
				return nil
			}
			this.values = append(this.values, v)
		}
	}
	p.Advance()
	p.Declare(first, &this.comments)
	return this
}

// EnumField = identifier equal [ minus ] intLit [ bracketOpen EnumValueOptions bracketClose ] semicolon .
func (p *parserProtobufTokens) parseEnumValue() *astEnumValue {
	first := p.Mark()
	name := p.ExpectIdentifier()
	if name == nil || p.ExpectOne(idl.TokenTypeEqual) == nil {
		return nil
	}
	number, ok := p.parseInt()
	if !ok {
		return nil
	}
	this := &astEnumValue{astNode: astNode{*name.Span.Start}, name: name.Value, number: number}
	if this.options, ok = p.parseBracketOptions(); !ok {
		return nil
	}
	if p.ExpectOne(idl.TokenTypeSemicolon) == nil {
		return nil
	}
	p.Declare(first, &this.comments)
	return this
}

// Service = service identifier curlyOpen { Option | RPC | semicolon } curlyClose .
func (p *parserProtobufTokens) parseService() *astService {
	first := p.Mark()
	kw := p.ExpectKeyword("service")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil || p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}
	this := &astService{astNode: astNode{*kw.Span.Start}, name: name.Value}
	for !p.Is(idl.TokenTypeCurlyClose) {
		switch {
		case p.Accept(idl.TokenTypeSemicolon):
		case p.IsKeyword("option"):
			opts, ok := p.parseOptionStatement()
			if !ok {
				return nil
			}
			this.options = append(this.options, opts...)
		case p.IsKeyword("rpc"):
			rpc := p.parseRPC()
			if rpc == nil {
				return nil
			}
			this.rpcs = append(this.rpcs, rpc)
		default:
			p.Illegal()
			return nil
		}
	}
	p.Advance()
	p.Declare(first, &this.comments)
	return this
}

// RPC = rpc identifier parenOpen [ stream ] MessageType parenClose returns parenOpen [ stream ] MessageType parenClose
//
//	( curlyOpen { Option | semicolon } curlyClose | semicolon ) .
func (p *parserProtobufTokens) parseRPC() *astRPC {
	first := p.Mark()
	kw := p.ExpectKeyword("rpc")
	if kw == nil {
		return nil
	}
	name := p.ExpectIdentifier()
	if name == nil {
		return nil
	}
	this := &astRPC{astNode: astNode{*kw.Span.Start}, name: name.Value}
	var ok bool
	if this.request, this.requestStream, ok = p.parseRPCType(); !ok {
		return nil
	}
	if p.ExpectKeyword("returns") == nil {
		return nil
	}
	if this.response, this.responseStream, ok = p.parseRPCType(); !ok {
		return nil
	}
	if p.Accept(idl.TokenTypeCurlyOpen) {
		for !p.Is(idl.TokenTypeCurlyClose) {
			switch {
			case p.Accept(idl.TokenTypeSemicolon):
			case p.IsKeyword("option"):
				opts, ok := p.parseOptionStatement()
				if !ok {
					return nil
				}
				this.options = append(this.options, opts...)
			default:
				p.Illegal()
				return nil
			}
		}
		p.Advance()
		_ = p.Accept(idl.TokenTypeSemicolon)
	} else if p.ExpectOne(idl.TokenTypeSemicolon) == nil {
		return nil
	}
	p.Declare(first, &this.comments)
	return this
}

func (p *parserProtobufTokens) parseRPCType() (string, bool, bool) {
	if p.ExpectOne(idl.TokenTypeParenOpen) == nil {
		return "", false, false
	}
	stream := false
	// "stream" is also a legal message name.
	if p.IsKeyword("stream") {
		if next := p.PeekN(1); next != nil && next.Type != idl.TokenTypeParenClose {
			p.Advance()
			stream = true
		}
	}
	name, ok := p.parseTypeName()
	if !ok || p.ExpectOne(idl.TokenTypeParenClose) == nil {
		return "", false, false
	}
	return name, stream, true
}

// Option = option OptionName equal Constant semicolon .
func (p *parserProtobufTokens) parseOptionStatement() ([]astOption, bool) {
	if p.ExpectKeyword("option") == nil {
		return nil, false
	}
	opts, ok := p.parseOption()
	if !ok || p.ExpectOne(idl.TokenTypeSemicolon) == nil {
		return nil, false
	}
	return opts, true
}

// FieldOptions = bracketOpen Option { comma Option } bracketClose .
func (p *parserProtobufTokens) parseBracketOptions() ([]astOption, bool) {
	if !p.Accept(idl.TokenTypeSquareOpen) {
		return nil, true
	}
	var out []astOption
	for {
		opts, ok := p.parseOption()
		if !ok {
			return nil, false
		}
		out = append(out, opts...)
		if !p.Accept(idl.TokenTypeComma) {
			break
		}
	}
	if p.ExpectOne(idl.TokenTypeSquareClose) == nil {
		return nil, false
	}
	return out, true
}

func (p *parserProtobufTokens) parseOption() ([]astOption, bool) {
	start := p.Location(p.Mark())
	name, ok := p.parseOptionName()
	if !ok || p.ExpectOne(idl.TokenTypeEqual) == nil {
		return nil, false
	}
	return p.parseOptionValue(start, name)
}

// OptionName = ( identifier | parenOpen [ dot ] FullIdent parenClose ) { dot ( identifier | parenOpen FullIdent parenClose ) } .
//
// Parentheses and a leading dot are dropped so that "(api_method).get"
// and "api_method.get" name the same option.
func (p *parserProtobufTokens) parseOptionName() (string, bool) {
	var parts []string
	for {
		if p.Accept(idl.TokenTypeParenOpen) {
			_ = p.Accept(idl.TokenTypeDot)
			name, ok := p.parseFullIdent()
			if !ok || p.ExpectOne(idl.TokenTypeParenClose) == nil {
				return "", false
			}
			parts = append(parts, name)
		} else {
			name := p.ExpectIdentifier()
			if name == nil {
				return "", false
			}
			parts = append(parts, name.Value)
		}
		if !p.Accept(idl.TokenTypeDot) {
			break
		}
	}
	return strings.Join(parts, "."), true
}

// parseOptionValue returns one option per scalar leaf of the value.
func (p *parserProtobufTokens) parseOptionValue(loc idl.Location, name string) ([]astOption, bool) {
	switch {
	case p.Is(idl.TokenTypeCurlyOpen):
		p.Advance()
		var out []astOption
		for !p.Is(idl.TokenTypeCurlyClose) {
			if p.AtEOF() {
				p.Illegal()
				return nil, false
			}
			var field string
			if p.Accept(idl.TokenTypeSquareOpen) {
				ext, ok := p.parseFullIdent()
				if !ok || p.ExpectOne(idl.TokenTypeSquareClose) == nil {
					return nil, false
				}
				field = ext
			} else {
				tok := p.ExpectIdentifier()
				if tok == nil {
					return nil, false
				}
				field = tok.Value
			}
			hasColon := p.Accept(idl.TokenTypeColon)
			if !hasColon && !p.Is(idl.TokenTypeCurlyOpen) && !p.Is(idl.TokenTypeAngleOpen) {
				p.Illegal()
				return nil, false
			}
			leaf, ok := p.parseOptionValue(loc, name+"."+field)
			if !ok {
				return nil, false
			}
			out = append(out, leaf...)
			if !p.Accept(idl.TokenTypeComma) {
				_ = p.Accept(idl.TokenTypeSemicolon)
			}
		}
		p.Advance()
		return out, true
	case p.Is(idl.TokenTypeSquareOpen):
		p.Advance()
		var out []astOption
		for !p.Is(idl.TokenTypeSquareClose) {
			leaf, ok := p.parseOptionValue(loc, name)
			if !ok {
				return nil, false
			}
			out = append(out, leaf...)
			if !p.Accept(idl.TokenTypeComma) {
				break
			}
		}
		if p.ExpectOne(idl.TokenTypeSquareClose) == nil {
			return nil, false
		}
		return out, true
	default:
		v := p.parseConstant()
		if v == nil {
			return nil, false
		}
		return []astOption{{astNode: astNode{loc}, name: name, value: v}}, true
	}
}

// Constant = FullIdent | ( [ minus | plus ] intLit ) | ( [ minus | plus ] floatLit ) | strLit { strLit } | boolLit .
func (p *parserProtobufTokens) parseConstant() *idl.ConstValue {
	tok := p.Peek()
	if tok == nil {
		p.Illegal()
		return nil
	}
	switch tok.Type {
	case idl.TokenTypeText:
		var b strings.Builder
		for p.Is(idl.TokenTypeText) {
			b.WriteString(p.Peek().Value)
			p.Advance()
		}
		return &idl.ConstValue{Kind: idl.ConstValueString, Text: b.String()}
	case idl.TokenTypeMinus, idl.TokenTypePlus:
		p.Advance()
		sign := strings.TrimPrefix(tok.Value, "+")
		if p.IsKeyword("inf", "nan") {
			word := p.Peek().Value
			p.Advance()
			return &idl.ConstValue{Kind: idl.ConstValueDouble, Text: sign + word}
		}
		n := p.ExpectOneOf(idl.TokenTypeIntegerDecimal, idl.TokenTypeIntegerHex, idl.TokenTypeFloatDecimal)
		if n == nil {
			return nil
		}
		return numberValue(n, sign)
	case idl.TokenTypeIntegerDecimal, idl.TokenTypeIntegerHex, idl.TokenTypeFloatDecimal:
		p.Advance()
		return numberValue(tok, "")
	case idl.TokenTypeIdentifier:
		name, ok := p.parseFullIdent()
		if !ok {
			return nil
		}
		switch name {
		case "true", "false":
			return &idl.ConstValue{Kind: idl.ConstValueBool, Text: name}
		case "inf", "nan":
			return &idl.ConstValue{Kind: idl.ConstValueDouble, Text: name}
		}
		return &idl.ConstValue{Kind: idl.ConstValueIdentifier, Text: name}
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

func (p *parserProtobufTokens) parseInt() (int64, bool) {
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

// MessageType = [ dot ] FullIdent .
func (p *parserProtobufTokens) parseTypeName() (string, bool) {
	prefix := ""
	if p.Accept(idl.TokenTypeDot) {
		prefix = "."
	}
	name, ok := p.parseFullIdent()
	return prefix + name, ok
}

// FullIdent = identifier { dot identifier } .
func (p *parserProtobufTokens) parseFullIdent() (string, bool) {
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

// skipStatement consumes tokens through the next semicolon.
func (p *parserProtobufTokens) skipStatement() bool {
	for !p.AtEOF() {
		if p.Accept(idl.TokenTypeSemicolon) {
			return true
		}
		p.Advance()
	}
	p.Illegal()
	return false
}

// Extend blocks declare custom options and carry nothing the generated
// clients use; they are parsed for balance and dropped.
func (p *parserProtobufTokens) skipExtend() bool {
	_ = p.ExpectKeyword("extend")
	if _, ok := p.parseTypeName(); !ok {
		return false
	}
	if p.ExpectOne(idl.TokenTypeCurlyOpen) == nil {
		return false
	}
	depth := 1
	for depth > 0 {
		if p.AtEOF() {
			p.Illegal()
			return false
		}
		switch p.Peek().Type {
		case idl.TokenTypeCurlyOpen:
			depth = depth + 1
		case idl.TokenTypeCurlyClose:
			depth = depth - 1
		}
		p.Advance()
	}
	return true
}
