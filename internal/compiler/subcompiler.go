package compiler

import (
	"context"

	"gopkg.idlgen.dev/generator.go/internal/compiler/protobuf"
	"gopkg.idlgen.dev/generator.go/internal/compiler/thrift"
	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts idl.ParseOptions) (*idl.Document, error)
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	scthrift := &SubCompilerThrift{}
	scproto := &SubCompilerProtobuf{}
	scidl := &SubCompilerIDL{
		Thrift:   scthrift,
		Protobuf: scproto,
	}
	return map[idl.FileKind]SubCompiler{
		idl.FileKindNone:     scidl,
		idl.FileKindThrift:   scthrift,
		idl.FileKindProtobuf: scproto,
		// Descriptor sets are an output format only.
		idl.FileKindProtobufDesc: nil,
	}
}

type SubCompilerThrift struct{}

func (self *SubCompilerThrift) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts idl.ParseOptions) (*idl.Document, error) {
	return thrift.Parse(ctx, r, file, opts)
}

type SubCompilerProtobuf struct{}

func (self *SubCompilerProtobuf) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts idl.ParseOptions) (*idl.Document, error) {
	return protobuf.Parse(ctx, r, file, opts)
}
