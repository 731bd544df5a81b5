package protobuf

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/fs"
)

func TestDescriptorSet(t *testing.T) {
	t.Parallel()
	fsys := fs.NewFileSystemMemory(map[string]string{
		"base.proto": `syntax = "proto3";
package demo.base;
message Page { int32 size = 1; }
`,
		"api.proto": `syntax = "proto3";
package demo.api;
import "base.proto";
message ListReq { demo.base.Page page = 1; }
message ListRes { repeated string items = 1; }
service Items { rpc List(ListReq) returns (ListRes); }
`,
	})
	testCases := []struct {
		name           string
		includeImports bool
		expected       []string
	}{
		{
			name:     "entry only",
			expected: []string{"api.proto"},
		},
		{
			name:           "dependencies first",
			includeImports: true,
			expected:       []string{"base.proto", "api.proto"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			r := exc.NewReporter(nil)
			set, err := DescriptorSet(context.Background(), r, fsys, []string{"api.proto"}, testCase.includeImports)
			require.Nil(t, err)
			var names []string
			for _, f := range set.File {
				names = append(names, f.GetName())
			}
			if diff := cmp.Diff(testCase.expected, names); diff != "" {
				t.Fatalf("unexpected files (-want +got):\n%s", diff)
			}
			api := set.File[len(set.File)-1]
			require.Equal(t, "demo.api", api.GetPackage())
			require.Equal(t, ".demo.base.Page", api.GetMessageType()[0].GetField()[0].GetTypeName())
			require.Equal(t, "List", api.GetService()[0].GetMethod()[0].GetName())
		})
	}
}

func TestMarshalDescriptorSet(t *testing.T) {
	t.Parallel()
	fsys := fs.NewFileSystemMemory(map[string]string{
		"a.proto": "syntax = \"proto3\";\nmessage A { string x = 1; }\n",
	})
	set, err := DescriptorSet(context.Background(), exc.NewReporter(nil), fsys, []string{"a.proto"}, false)
	require.Nil(t, err)
	b, err := MarshalDescriptorSet(set)
	require.Nil(t, err)
	decoded := &descriptorpb.FileDescriptorSet{}
	require.Nil(t, proto.Unmarshal(b, decoded))
	require.True(t, proto.Equal(set, decoded))
}

func TestDescriptorSetErrors(t *testing.T) {
	t.Parallel()
	fsys := fs.NewFileSystemMemory(map[string]string{
		"bad.proto": "syntax = \"proto3\";\nmessage A { string x = ; }\n",
	})
	r := exc.NewReporter(nil)
	_, err := DescriptorSet(context.Background(), r, fsys, []string{"bad.proto"}, false)
	require.NotNil(t, err)
	require.NotEmpty(t, r.Fatal())
	require.Equal(t, exc.CodeProtobufParseError, r.Fatal()[0].Code())

	_, err = DescriptorSet(context.Background(), exc.NewReporter(nil), fsys, []string{"missing.proto"}, false)
	require.NotNil(t, err)
}
