// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package thrift parses Thrift IDL into the unified document model.
package thrift

import (
	"context"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/lexer"
)

// Parse reads one Thrift file. The first fatal exception is returned as the
// error; every exception stays available on the reporter.
func Parse(ctx context.Context, r exc.Reporter, file idl.File, opts idl.ParseOptions) (*idl.Document, error) {
	lf, err := lexer.New(r, lexer.Options{HashComments: true}).Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	p, err := newParser(ctx, r, lf)
	if err != nil {
		return nil, err
	}
	tree := p.parseDocument()
	if tree == nil || p.Failed() {
		if err := p.Err(); err != nil {
			return nil, err
		}
		return nil, exc.New(exc.Location{URI: p.URI()}, exc.CodeUnknownFatal, "failed to parse thrift")
	}
	p.AttachComments(opts)
	return unify(p.URI(), tree), nil
}
