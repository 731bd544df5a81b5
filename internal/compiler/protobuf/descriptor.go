package protobuf

import (
	"context"
	"errors"
	"io"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/cockroachdb/errors/oserror"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

// DescriptorSet compiles proto entries read from fsys and returns them as a
// descriptor set. With includeImports every transitive dependency precedes
// the files that import it, as protoc's --include_imports does.
func DescriptorSet(ctx context.Context, r exc.Reporter, fsys idl.FileSystem, paths []string, includeImports bool) (*descriptorpb.FileDescriptorSet, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: func(path string) (io.ReadCloser, error) {
				return openBody(ctx, fsys, path)
			},
		}),
		Reporter:       &protoReporter{Reporter: r},
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	files, err := compiler.Compile(ctx, paths...)
	if err != nil {
		return nil, err
	}
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	var add func(fd protoreflect.FileDescriptor)
	add = func(fd protoreflect.FileDescriptor) {
		if seen[fd.Path()] {
			return
		}
		seen[fd.Path()] = true
		if includeImports {
			imports := fd.Imports()
			for x := 0; x < imports.Len(); x = x + 1 {
				add(imports.Get(x).FileDescriptor)
			}
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(fd))
	}
	for _, f := range files {
		add(f)
	}
	return set, nil
}

// MarshalDescriptorSet encodes a set in the binary .protoset format.
func MarshalDescriptorSet(set *descriptorpb.FileDescriptorSet) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(set)
}

func openBody(ctx context.Context, fsys idl.FileSystem, path string) (io.ReadCloser, error) {
	files, err := fsys.Open(ctx, path)
	if err != nil {
		if e, ok := err.(exc.Exception); ok && e.Code() == exc.CodeFileNotFound {
			return nil, oserror.ErrNotExist
		}
		return nil, err
	}
	if len(files) == 0 {
		return nil, oserror.ErrNotExist
	}
	body, err := files[0].Body(ctx)
	if err != nil {
		return nil, err
	}
	return &fileBodyIO{ctx: ctx, body: body}, nil
}

type protoReporter struct {
	Reporter exc.Reporter
}

func (self *protoReporter) Error(e reporter.ErrorWithPos) error {
	pos := e.GetPosition()
	loc := exc.Location{
		URI: pos.Filename,
		Location: idl.Location{
			Line:   int32(pos.Line),
			Column: int32(pos.Col),
			Offset: int64(pos.Offset),
		},
	}
	return self.Reporter.Report(exc.Wrap(loc, exc.CodeProtobufParseError, e.Unwrap()))
}

func (self *protoReporter) Warning(e reporter.ErrorWithPos) {}

type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	copy(p, b)
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), err
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
