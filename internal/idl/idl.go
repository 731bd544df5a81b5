// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.idlgen.dev/generator.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindThrift
	FileKindProtobuf
	FileKindProtobufDesc
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindThrift:
		return "thrift"
	case FileKindProtobuf:
		return "protobuf"
	case FileKindProtobufDesc:
		return "protobuf-descriptor"
	default:
		return fmt.Sprintf("unkown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

// ParseOptions are shared by every dialect parser.
type ParseOptions struct {
	// ReviseTailComment attaches a comment that starts on the same line a
	// declaration ends to that declaration instead of the next one.
	ReviseTailComment bool
}

// DefaultParseOptions returns the options used when a caller gives none.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{ReviseTailComment: true}
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Span struct {
	Start *Location
	End   *Location
}

type Token struct {
	Span  *Span
	Type  TokenType
	Value string
}

type TokenType uint16

//go:generate stringer -type=TokenType
const (
	TokenTypeUnknown        TokenType = 0
	TokenTypeIdentifier     TokenType = 1
	TokenTypeIntegerDecimal TokenType = 2
	TokenTypeIntegerHex     TokenType = 3
	TokenTypeIntegerOctal   TokenType = 4
	TokenTypeFloatDecimal   TokenType = 6
	TokenTypeText           TokenType = 8
	TokenTypeComment        TokenType = 10
	TokenTypeCommentBlock   TokenType = 11
	TokenTypeCurlyOpen      TokenType = 15
	TokenTypeCurlyClose     TokenType = 16
	TokenTypeSquareOpen     TokenType = 17
	TokenTypeSquareClose    TokenType = 18
	TokenTypeParenOpen      TokenType = 19
	TokenTypeParenClose     TokenType = 20
	TokenTypePlus           TokenType = 21
	TokenTypeMinus          TokenType = 23
	TokenTypeDot            TokenType = 25
	TokenTypeStar           TokenType = 27
	TokenTypeComma          TokenType = 29
	TokenTypeColon          TokenType = 30
	TokenTypeAngleOpen      TokenType = 31
	TokenTypeAngleClose     TokenType = 33
	TokenTypeEqual          TokenType = 37
	TokenTypeSlash          TokenType = 40
	TokenTypeSemicolon      TokenType = 52
	TokenTypeNewline        TokenType = 93
)

// Describe returns the token as it appeared in source, for diagnostics.
func (t *Token) Describe() string {
	switch t.Type {
	case TokenTypeText:
		return fmt.Sprintf("%q", t.Value)
	case TokenTypeNewline:
		return "newline"
	default:
		return t.Value
	}
}
