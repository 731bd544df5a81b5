package thrift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

func parse(t *testing.T, src string, opts idl.ParseOptions) (*idl.Document, error) {
	t.Helper()
	r := exc.NewReporter(nil)
	return Parse(context.Background(), r, fs.NewFileString(exc.SourceURI, src, idl.FileKindThrift), opts)
}

func TestParseDocument(t *testing.T) {
	t.Parallel()
	src := `
include "base.thrift"
include "base.thrift"
cpp_include "<vector>"
namespace go demo.go
namespace js demo.js

const i32 LIMIT = -10
typedef map<string, list<i64>> Index

enum Status {
  OK,
  FAILED = 5,
  UNKNOWN
}

struct Item {
  1: required string name (api.query = "n")
  3: optional i64 id = 0x10,
  list<base.Tag> tags;
}

exception NotFound {
  1: string message
}

service ItemService {
  Item GetItem(1: i64 id (api.path = "id")) throws (1: NotFound err) (api.get = "/item/:id")
  oneway void Ping()
  void Save(1: Item item) (api.uri = "/item", api.method = "put")
} (api.serializer = "json")
`
	doc, err := parse(t, src, idl.DefaultParseOptions())
	require.Nil(t, err)
	require.Equal(t, idl.FileKindThrift, doc.Dialect)
	require.Equal(t, "demo.js", doc.Namespace)
	require.Equal(t, []string{"base.thrift", "base.thrift"}, doc.Includes)
	require.Len(t, doc.Statements, 6)

	c := doc.Statements[0].(*idl.ConstDefinition)
	require.Equal(t, "LIMIT", c.Name)
	require.Equal(t, &idl.ConstValue{Kind: idl.ConstValueInt, Text: "-10"}, c.Value)

	td := doc.Statements[1].(*idl.TypedefDefinition)
	require.Equal(t, "map<string,list<i64>>", td.Type.String())

	enum := doc.Statements[2].(*idl.EnumDefinition)
	values := make([]int64, 0, len(enum.Members))
	for _, m := range enum.Members {
		values = append(values, m.Value)
	}
	require.Equal(t, []int64{0, 5, 6}, values)

	item := doc.Statements[3].(*idl.StructDefinition)
	require.Equal(t, idl.StructVariantStruct, item.Variant)
	require.Len(t, item.Fields, 3)
	require.True(t, item.Fields[0].Required)
	require.Equal(t, []idl.Annotation{{Key: "api.query", Value: "n", Loc: item.Fields[0].Annotations[0].Loc}}, item.Fields[0].Annotations)
	require.Equal(t, int64(3), item.Fields[1].ID)
	require.True(t, item.Fields[1].Optional)
	require.Equal(t, "0x10", item.Fields[1].DefaultValue.Text)
	require.Equal(t, int64(4), item.Fields[2].ID)
	require.Equal(t, &idl.FieldType{
		Kind:      idl.FieldTypeList,
		Name:      "list",
		ValueType: &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: "base.Tag"},
	}, item.Fields[2].Type)

	require.Equal(t, idl.StructVariantException, doc.Statements[4].(*idl.StructDefinition).Variant)

	svc := doc.Statements[5].(*idl.ServiceDefinition)
	require.Nil(t, svc.ExtensionConfig)
	require.Len(t, svc.Functions, 3)
	require.Equal(t, &idl.ExtensionConfig{Method: "GET", URI: "/item/:id", Serializer: "json"}, svc.Functions[0].ExtensionConfig)
	require.Equal(t, "Item", svc.Functions[0].ReturnType.Name)
	require.True(t, svc.Functions[1].Oneway)
	require.Nil(t, svc.Functions[1].ReturnType)
	require.Nil(t, svc.Functions[1].ExtensionConfig)
	require.Equal(t, &idl.ExtensionConfig{Method: "PUT", URI: "/item", Serializer: "json"}, svc.Functions[2].ExtensionConfig)
}

func TestParseComments(t *testing.T) {
	t.Parallel()
	src := `// leading one
// leading two
struct A {
  1: string a // trailing a
  // before b
  2: i32 b
}
`
	testCases := []struct {
		name    string
		opts    idl.ParseOptions
		structs []idl.Comment
		fieldA  []idl.Comment
		fieldB  []idl.Comment
	}{
		{
			name:    "tail comments stay with their line",
			opts:    idl.ParseOptions{ReviseTailComment: true},
			structs: []idl.Comment{{Type: idl.CommentLine, Values: []string{" leading one", " leading two"}}},
			fieldA:  []idl.Comment{{Type: idl.CommentLine, Value: " trailing a"}},
			fieldB:  []idl.Comment{{Type: idl.CommentLine, Value: " before b"}},
		},
		{
			name:    "tail comments lead the next declaration",
			opts:    idl.ParseOptions{},
			structs: []idl.Comment{{Type: idl.CommentLine, Values: []string{" leading one", " leading two"}}},
			fieldB: []idl.Comment{
				{Type: idl.CommentLine, Value: " trailing a"},
				{Type: idl.CommentLine, Value: " before b"},
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			doc, err := parse(t, src, testCase.opts)
			require.Nil(t, err)
			s := doc.Statements[0].(*idl.StructDefinition)
			require.Equal(t, testCase.structs, s.Comments)
			require.Equal(t, testCase.fieldA, s.Fields[0].Comments)
			require.Equal(t, testCase.fieldB, s.Fields[1].Comments)
		})
	}
}

func TestParseBlockAndHashComments(t *testing.T) {
	t.Parallel()
	src := `# hash
/* block
   text */
enum E { A }
`
	doc, err := parse(t, src, idl.DefaultParseOptions())
	require.Nil(t, err)
	e := doc.Statements[0].(*idl.EnumDefinition)
	require.Equal(t, []idl.Comment{{Type: idl.CommentBlock, Values: []string{" hash", " block\n   text "}}}, e.Comments)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "double separator",
			src:      `struct Foo { 1: string a, , }`,
			expected: "I0006: illegal token ','(source:1:27)",
		},
		{
			name:     "unknown top level",
			src:      `message Foo {}`,
			expected: "I0006: illegal token 'message'(source:1:1)",
		},
		{
			name:     "missing close",
			src:      `service S {`,
			expected: "I0005: unexpected EOF(source:1:11)",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			doc, err := parse(t, testCase.src, idl.DefaultParseOptions())
			require.Nil(t, doc)
			require.NotNil(t, err)
			require.Equal(t, testCase.expected, err.Error())
		})
	}
}
