// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package grammar holds the token cursor shared by the recursive descent
// parsers of each IDL dialect.
package grammar

import (
	"context"
	"fmt"
	"slices"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/iter"
)

type commentToken struct {
	tok *idl.Token
	// prev is the index of the significant token before the comment, or -1.
	prev int
}

type declaration struct {
	first    int
	last     int
	comments *[]idl.Comment
}

// Cursor walks the significant tokens of one file. Comments are set aside as
// they are read and attached to declarations once parsing is complete.
type Cursor struct {
	uri      string
	reporter exc.Reporter
	tokens   []*idl.Token
	comments []commentToken
	pos      int
	// loc is the end of the last consumed token, used for EOF diagnostics.
	loc    idl.Location
	decls  []declaration
	failed bool
	// fatal is the count of fatal reports that predate this cursor.
	fatal int
}

func NewCursor(ctx context.Context, reporter exc.Reporter, f idl.LexerFile) (*Cursor, error) {
	ts, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	before := len(reporter.Fatal())
	all, err := iter.Collect(ctx, ts)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: f.Path(ctx)}, err)
	}
	c := &Cursor{
		uri:      f.Path(ctx),
		reporter: reporter,
		fatal:    before,
		// The lexer stops at its first fatal exception.
		failed: len(reporter.Fatal()) > before,
	}
	for _, t := range all {
		switch t.Type {
		case idl.TokenTypeNewline:
		case idl.TokenTypeComment, idl.TokenTypeCommentBlock:
			c.comments = append(c.comments, commentToken{tok: t, prev: len(c.tokens) - 1})
		default:
			c.tokens = append(c.tokens, t)
		}
	}
	return c, nil
}

func (p *Cursor) URI() string {
	return p.uri
}

// Failed reports whether a fatal exception was reported.
func (p *Cursor) Failed() bool {
	return p.failed
}

// Err returns the first fatal exception reported for this file, or nil.
func (p *Cursor) Err() error {
	if !p.failed {
		return nil
	}
	fatal := p.reporter.Fatal()
	if len(fatal) <= p.fatal {
		return nil
	}
	return fatal[p.fatal]
}

func (p *Cursor) report(e exc.Exception) {
	if p.reporter.Report(e) != nil {
		p.failed = true
	}
}

// Report records an exception at the end of the last consumed token.
func (p *Cursor) Report(code string, message string) {
	p.report(exc.New(exc.Location{URI: p.uri, Location: p.loc}, code, message))
}

// Illegal reports the current token as not allowed here, or an unexpected EOF
// when the input is exhausted.
func (p *Cursor) Illegal() {
	t := p.Peek()
	if t == nil {
		p.Report(exc.CodeUnexpectedEOF, "unexpected EOF")
		return
	}
	p.report(exc.NewIllegalToken(p.uri, t))
}

func (p *Cursor) PeekN(n int) *idl.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return p.tokens[p.pos+n]
}

func (p *Cursor) Peek() *idl.Token {
	return p.PeekN(0)
}

func (p *Cursor) Advance() {
	if t := p.Peek(); t != nil {
		p.loc = *t.Span.End
		p.pos = p.pos + 1
	}
}

// AtEOF reports whether every significant token was consumed.
func (p *Cursor) AtEOF() bool {
	return p.pos >= len(p.tokens)
}

// Is reports whether the current token has the given type.
func (p *Cursor) Is(t idl.TokenType) bool {
	tok := p.Peek()
	return tok != nil && tok.Type == t
}

// IsKeyword reports whether the current token is an identifier spelled as one
// of the given words.
func (p *Cursor) IsKeyword(words ...string) bool {
	tok := p.Peek()
	return tok != nil && tok.Type == idl.TokenTypeIdentifier && slices.Contains(words, tok.Value)
}

// Accept consumes the current token when it has the given type.
func (p *Cursor) Accept(t idl.TokenType) bool {
	if p.Is(t) {
		p.Advance()
		return true
	}
	return false
}

// AcceptKeyword consumes the current token when it is one of the words.
func (p *Cursor) AcceptKeyword(words ...string) (string, bool) {
	if p.IsKeyword(words...) {
		v := p.Peek().Value
		p.Advance()
		return v, true
	}
	return "", false
}

// ExpectOne reports an error if the current token isn't of the expected
// type; advances on success.
func (p *Cursor) ExpectOne(expected idl.TokenType) *idl.Token {
	return p.ExpectOneOf(expected)
}

// ExpectOneOf reports an error if the current token isn't one of the given
// types; advances on success.
func (p *Cursor) ExpectOneOf(expected ...idl.TokenType) *idl.Token {
	tok := p.Peek()
	if tok == nil || !slices.Contains(expected, tok.Type) {
		p.Illegal()
		return nil
	}
	p.Advance()
	return tok
}

// ExpectKeyword requires one of the given identifier spellings.
func (p *Cursor) ExpectKeyword(words ...string) *idl.Token {
	if !p.IsKeyword(words...) {
		p.Illegal()
		return nil
	}
	tok := p.Peek()
	p.Advance()
	return tok
}

// ExpectIdentifier requires any identifier.
func (p *Cursor) ExpectIdentifier() *idl.Token {
	return p.ExpectOne(idl.TokenTypeIdentifier)
}

// Mark returns the index of the current token for a later Declare.
func (p *Cursor) Mark() int {
	return p.pos
}

// Declare registers the tokens from first up to the last consumed token as a
// declaration that owns the given comment slice.
func (p *Cursor) Declare(first int, comments *[]idl.Comment) {
	p.decls = append(p.decls, declaration{first: first, last: p.pos - 1, comments: comments})
}

// Location returns the start of the token at index i.
func (p *Cursor) Location(i int) idl.Location {
	if i < 0 || i >= len(p.tokens) {
		return p.loc
	}
	return *p.tokens[i].Span.Start
}

func (p *Cursor) String() string {
	return fmt.Sprintf("%s@%d/%d", p.uri, p.pos, len(p.tokens))
}
