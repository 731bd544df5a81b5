// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/iter"
	"gopkg.idlgen.dev/generator.go/internal/optional"
)

const (
	lexerLookahead = 8
)

type Options struct {
	// HashComments treats '#' as the start of a line comment, as Thrift does.
	HashComments bool
}

// Lexer implements a tokenizer shared by the Thrift and Protobuf grammars.
// Keywords are not distinguished from identifiers; the parsers match on the
// identifier value. Comments and newlines are emitted as tokens so parsers
// can attach comments to declarations.
type Lexer struct {
	reporter exc.Reporter
	opts     Options
}

func New(reporter exc.Reporter, opts Options) *Lexer {
	return &Lexer{reporter: reporter, opts: opts}
}

func (self *Lexer) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFile{
		File:     f,
		reporter: self.reporter,
		opts:     self.opts,
	}, nil
}

type lexerFile struct {
	idl.File
	reporter exc.Reporter
	opts     Options
}

func (self *lexerFile) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewCodePoints(ctx, b), lexerLookahead)
	return &lexerFileTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		opts:     self.opts,
		line:     1,
		col:      0,
		offset:   -1,
	}, nil
}

type lexerFileTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	opts     Options
	line     int32
	col      int32
	offset   int64
}

func (self *lexerFileTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		start := self.here()
		switch r {
		case 0xFEFF:
			if self.line != 1 || self.col != 1 {
				_ = self.reporter.Report(self.exc(exc.CodeUnsupportedFileFormat, "invalid UTF-8 BOM location"))
				return optional.None[*idl.Token]()
			}
			self.col = 0
			self.offset = -1
			continue
		case 0x00:
			return optional.None[*idl.Token]() // Treat null byte as EOF as it's not allowed.
		case 0x0009, 0x0020, '\f', '\v':
			continue
		case '\n':
			return self.newLineToken(start, "\n")
		case '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken(start, "\r\n")
			}
			return self.newLineToken(start, "\r")
		case '0':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && (n.Value() == 'x' || n.Value() == 'X') {
				_ = self.next(ctx)
				return self.readHex(ctx, start, "0"+string(rune(n.Value())))
			}
			return self.readDecimal(ctx, start, string(r))
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.readDecimal(ctx, start, string(r))
		case '"', '\'':
			return self.readText(ctx, start, r)
		case '#':
			if self.opts.HashComments {
				return self.readCommentLine(ctx, start)
			}
			return self.single(start, idl.TokenTypeUnknown, r)
		case '/':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() {
				switch n.Value() {
				case '/':
					_ = self.next(ctx)
					return self.readCommentLine(ctx, start)
				case '*':
					_ = self.next(ctx)
					return self.readCommentBlock(ctx, start)
				}
			}
			return self.single(start, idl.TokenTypeSlash, r)
		case '{':
			return self.single(start, idl.TokenTypeCurlyOpen, r)
		case '}':
			return self.single(start, idl.TokenTypeCurlyClose, r)
		case '[':
			return self.single(start, idl.TokenTypeSquareOpen, r)
		case ']':
			return self.single(start, idl.TokenTypeSquareClose, r)
		case '(':
			return self.single(start, idl.TokenTypeParenOpen, r)
		case ')':
			return self.single(start, idl.TokenTypeParenClose, r)
		case '<':
			return self.single(start, idl.TokenTypeAngleOpen, r)
		case '>':
			return self.single(start, idl.TokenTypeAngleClose, r)
		case ',':
			return self.single(start, idl.TokenTypeComma, r)
		case ';':
			return self.single(start, idl.TokenTypeSemicolon, r)
		case ':':
			return self.single(start, idl.TokenTypeColon, r)
		case '=':
			return self.single(start, idl.TokenTypeEqual, r)
		case '.':
			return self.single(start, idl.TokenTypeDot, r)
		case '+':
			return self.single(start, idl.TokenTypePlus, r)
		case '-':
			return self.single(start, idl.TokenTypeMinus, r)
		case '*':
			return self.single(start, idl.TokenTypeStar, r)
		default:
			if unicode.IsLetter(r) || r == '_' {
				return self.readIdentifier(ctx, start, string(r))
			}
			return self.single(start, idl.TokenTypeUnknown, r)
		}
	}
	return optional.None[*idl.Token]()
}

func (self *lexerFileTokens) readIdentifier(ctx context.Context, start idl.Location, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			return self.token(start, idl.TokenTypeIdentifier, builder.String())
		}
		if unicode.IsLetter(rune(n.Value())) || unicode.IsDigit(rune(n.Value())) || n.Value() == '_' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		return self.token(start, idl.TokenTypeIdentifier, builder.String())
	}
}

// readCommentLine keeps everything after the comment marker up to, but not
// including, the line break.
func (self *lexerFileTokens) readCommentLine(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || n.Value() == '\r' || n.Value() == '\n' {
			return self.token(start, idl.TokenTypeComment, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

// readCommentBlock keeps the text between the block delimiters verbatim,
// interior line breaks included.
func (self *lexerFileTokens) readCommentBlock(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "unexpected EOF while reading comment block"))
			return optional.None[*idl.Token]()
		}
		switch n.Value() {
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune('\n')
			self.newLine()
		case '\r':
			_ = self.next(ctx)
			_, _ = builder.WriteRune('\r')
			if nn := self.body.Lookahead(ctx, 1); nn.IsPresent() && nn.Value() == '\n' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune('\n')
			}
			self.newLine()
		case '*':
			if nn := self.body.Lookahead(ctx, 2); nn.IsPresent() && nn.Value() == '/' {
				_ = self.next(ctx)
				_ = self.next(ctx)
				return self.token(start, idl.TokenTypeCommentBlock, builder.String())
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune('*')
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

func (self *lexerFileTokens) readText(ctx context.Context, start idl.Location, quote rune) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "unexpected EOF while reading text literal"))
			return optional.None[*idl.Token]()
		}
		r := rune(n.Value())
		switch r {
		case quote:
			_ = self.next(ctx)
			return self.token(start, idl.TokenTypeText, builder.String())
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
			self.newLine()
		case '\\':
			_ = self.next(ctx)
			nn := self.body.Lookahead(ctx, 1)
			if !nn.IsPresent() {
				_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "unexpected EOF while reading text literal"))
				return optional.None[*idl.Token]()
			}
			_ = self.next(ctx)
			switch rune(nn.Value()) {
			case 'n':
				_, _ = builder.WriteRune('\n')
			case 't':
				_, _ = builder.WriteRune('\t')
			case 'r':
				_, _ = builder.WriteRune('\r')
			case '\\', '"', '\'':
				_, _ = builder.WriteRune(rune(nn.Value()))
			default:
				_, _ = builder.WriteRune('\\')
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
		}
	}
}

func (self *lexerFileTokens) readHex(ctx context.Context, start idl.Location, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || !isHexDigit(rune(n.Value())) {
			if builder.Len() == len(prefix) {
				_ = self.reporter.Report(self.exc(exc.CodeInvalidNumber, "hex literal without digits"))
				return optional.None[*idl.Token]()
			}
			return self.token(start, idl.TokenTypeIntegerHex, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

func (self *lexerFileTokens) readDecimal(ctx context.Context, start idl.Location, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	tokType := idl.TokenTypeIntegerDecimal
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			return self.token(start, tokType, builder.String())
		}
		switch n.Value() {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case '.':
			if tokType == idl.TokenTypeFloatDecimal {
				return self.token(start, tokType, builder.String())
			}
			tokType = idl.TokenTypeFloatDecimal
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case 'e', 'E':
			tokType = idl.TokenTypeFloatDecimal
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			if sign := self.body.Lookahead(ctx, 1); sign.IsPresent() && (sign.Value() == '+' || sign.Value() == '-') {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(sign.Value()))
			}
			if d := self.body.Lookahead(ctx, 1); !d.IsPresent() || !unicode.IsDigit(rune(d.Value())) {
				_ = self.reporter.Report(self.exc(exc.CodeInvalidNumber, "invalid exponent in decimal float literal"))
				return optional.None[*idl.Token]()
			}
		default:
			return self.token(start, tokType, builder.String())
		}
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (self *lexerFileTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.addCol(rune(n.Value()))
	}
	return n
}

// here is the location of the most recently consumed code point.
func (self *lexerFileTokens) here() idl.Location {
	return idl.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

func (self *lexerFileTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: self.here()}, code, message)
}

func (self *lexerFileTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
}

func (self *lexerFileTokens) newLineToken(start idl.Location, v string) optional.Optional[*idl.Token] {
	t := self.token(start, idl.TokenTypeNewline, v)
	self.newLine()
	return t
}

func (self *lexerFileTokens) addCol(r rune) {
	self.col = self.col + 1
	self.offset = self.offset + int64(len(string(r)))
}

func (self *lexerFileTokens) single(start idl.Location, kind idl.TokenType, r rune) optional.Optional[*idl.Token] {
	return self.token(start, kind, string(r))
}

// token closes a span that began at start and ends with the most recently
// consumed code point.
func (self *lexerFileTokens) token(start idl.Location, kind idl.TokenType, value string) optional.Optional[*idl.Token] {
	end := self.here()
	return optional.Some(newToken(start, end, kind, value))
}

func (self *lexerFileTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func newToken(start idl.Location, end idl.Location, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &start,
			End:   &end,
		},
		Type:  kind,
		Value: value,
	}
}

// Dump renders a token stream one token per line, for debugging grammars.
func Dump(ctx context.Context, tokens idl.Iterator[*idl.Token]) (string, error) {
	var b strings.Builder
	for t := tokens.Next(ctx); t.IsPresent(); t = tokens.Next(ctx) {
		tok := t.Value()
		fmt.Fprintf(&b, "%d:%d\t%d\t%q\n", tok.Span.Start.Line, tok.Span.Start.Column, tok.Type, tok.Value)
	}
	return b.String(), tokens.Close(ctx)
}
