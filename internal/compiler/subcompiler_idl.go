package compiler

import (
	"context"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/lexer"
)

var (
	protobufKeywords = map[string]bool{
		"syntax":  true,
		"edition": true,
		"package": true,
		"import":  true,
		"message": true,
		"option":  true,
		"rpc":     true,
		"oneof":   true,
	}
	thriftKeywords = map[string]bool{
		"namespace":   true,
		"include":     true,
		"cpp_include": true,
		"struct":      true,
		"union":       true,
		"exception":   true,
		"typedef":     true,
		"const":       true,
		"oneway":      true,
		"throws":      true,
	}
)

// SubCompilerIDL is an adaptive sub-compiler for content without a telling
// file extension. It switches into the appropriate sub-compiler based on the
// first keyword that belongs to only one dialect. Content with no such
// keyword, like a lone enum, is read as Thrift.
type SubCompilerIDL struct {
	Thrift   SubCompiler
	Protobuf SubCompiler
}

func (self *SubCompilerIDL) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts idl.ParseOptions) (*idl.Document, error) {
	kind, content, err := self.sniff(ctx, file)
	if err != nil {
		return nil, r.Report(exc.WrapUnknown(exc.Location{URI: file.Path(ctx)}, err))
	}
	// The body was consumed while sniffing.
	replay := fs.NewFileString(file.Path(ctx), content, kind)
	if kind == idl.FileKindProtobuf {
		return self.Protobuf.CompileFile(ctx, r, replay, opts)
	}
	return self.Thrift.CompileFile(ctx, r, replay, opts)
}

func (self *SubCompilerIDL) sniff(ctx context.Context, file idl.File) (idl.FileKind, string, error) {
	content, err := fs.ReadAll(ctx, file)
	if err != nil {
		return idl.FileKindNone, "", err
	}
	// Lexing errors surface again in the real parse; a scratch reporter keeps
	// them from being reported twice.
	scratch := exc.NewReporter(nil)
	lf, err := lexer.New(scratch, lexer.Options{HashComments: true}).Lex(ctx, fs.NewFileString(file.Path(ctx), content, idl.FileKindNone))
	if err != nil {
		return idl.FileKindNone, "", err
	}
	tokens, err := lf.Tokens(ctx)
	if err != nil {
		return idl.FileKindNone, "", err
	}
	defer tokens.Close(ctx)
	for tok := tokens.Next(ctx); tok.IsPresent(); tok = tokens.Next(ctx) {
		t := tok.Value()
		if t.Type != idl.TokenTypeIdentifier {
			continue
		}
		if protobufKeywords[t.Value] {
			return idl.FileKindProtobuf, content, nil
		}
		if thriftKeywords[t.Value] {
			return idl.FileKindThrift, content, nil
		}
	}
	return idl.FileKindThrift, content, nil
}
