package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/btree"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gopkg.idlgen.dev/generator.go/internal/compiler"
	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/program"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

func parse(t *testing.T, source string) *idl.Document {
	t.Helper()
	c, err := compiler.New(compiler.OptionWithFS(fs.NewFileSystemMemory(nil)))
	require.Nil(t, err)
	doc, err := c.Parse(context.Background(), source)
	require.Nil(t, err)
	return doc
}

func parseEntry(t *testing.T, p *program.Program, reg *program.Registry, docs ...*idl.Document) *program.ParseEntryContext {
	t.Helper()
	c, err := program.Trigger(context.Background(), p, program.ParseEntry, &program.ParseEntryContext{
		AST:      docs,
		Files:    &btree.Map[string, *program.Dist]{},
		Registry: reg,
	})
	require.Nil(t, err)
	return c
}

func TestInclude(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	reg := program.NewRegistry(zap.New(core).Sugar())
	p, err := program.Create(NewInclude())
	require.Nil(t, err)
	doc := &idl.Document{IdlPath: "/a.thrift", Includes: []string{"base.thrift", "./base.thrift", "/abs/x.thrift", "../up.thrift", "base.thrift"}}

	parseEntry(t, p, reg, doc)
	require.Equal(t, []string{"./base.thrift", "/abs/x.thrift", "../up.thrift"}, doc.Includes)
	require.Equal(t, 2, logs.FilterMessage("duplicate include").Len())

	parseEntry(t, p, reg, doc)
	require.Equal(t, []string{"./base.thrift", "/abs/x.thrift", "../up.thrift"}, doc.Includes)
	require.Equal(t, 2, logs.FilterMessage("duplicate include").Len())
}

func TestAlias(t *testing.T) {
	t.Parallel()
	doc := parse(t, `service A {}
service B {} (api.alias = "Bee")
service C {} (api.alias = "Sea")
`)
	p, err := program.Create(NewAlias(map[string]string{"A": "Ay", "C": "Cee"}))
	require.Nil(t, err)
	parseEntry(t, p, program.NewRegistry(nil), doc)
	parseEntry(t, p, program.NewRegistry(nil), doc)
	var names []string
	for _, svc := range doc.Services() {
		names = append(names, svc.Name)
	}
	require.Equal(t, []string{"Ay", "Bee", "Cee"}, names)
}

func TestCleanComment(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    idl.Comment
		expected idl.Comment
	}{
		{
			name:     "line",
			input:    idl.Comment{Type: idl.CommentLine, Value: "  hello  "},
			expected: idl.Comment{Type: idl.CommentLine, Value: "hello"},
		},
		{
			name:     "block gutters",
			input:    idl.Comment{Type: idl.CommentBlock, Value: "*\n * first\n *\n ** second\n "},
			expected: idl.Comment{Type: idl.CommentBlock, Value: "first\n\nsecond"},
		},
		{
			name:     "run",
			input:    idl.Comment{Type: idl.CommentLine, Values: []string{" one", " two "}},
			expected: idl.Comment{Type: idl.CommentLine, Values: []string{"one", "two"}},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			once := CleanComment(testCase.input)
			require.Equal(t, testCase.expected, once)
			require.Equal(t, once, CleanComment(once))
		})
	}
}

func TestCommentPlugin(t *testing.T) {
	t.Parallel()
	doc := parse(t, `/**
 * An item.
 */
struct Item {
  // the id
  1: i64 id
}
`)
	p, err := program.Create(NewComment())
	require.Nil(t, err)
	parseEntry(t, p, nil, doc)
	st := doc.Statements[0].(*idl.StructDefinition)
	require.Equal(t, []idl.Comment{{Type: idl.CommentBlock, Value: "An item."}}, st.Comments)
	require.Equal(t, []idl.Comment{{Type: idl.CommentLine, Value: "the id"}}, st.Fields[0].Comments)

	parseEntry(t, p, nil, doc)
	require.Equal(t, []idl.Comment{{Type: idl.CommentBlock, Value: "An item."}}, st.Comments)
	require.Equal(t, []string{"An item."}, CommentLines(st.Comments))
}

func TestFieldFilter(t *testing.T) {
	t.Parallel()
	doc := parse(t, `struct User {
  1: i64 id
  2: string password
  3: string token (api.none = "true")
  4: string name
}
struct Admin { 1: string password, 2: string secretKey }
`)
	p, err := program.Create(mustPlugin(t)(NewFieldFilter([]string{"User.password", "Admin.secret*"})))
	require.Nil(t, err)
	parseEntry(t, p, nil, doc)
	fields := func(i int) []string {
		var out []string
		for _, f := range doc.Statements[i].(*idl.StructDefinition).Fields {
			out = append(out, f.Name)
		}
		return out
	}
	require.Equal(t, []string{"id", "name"}, fields(0))
	require.Equal(t, []string{"password"}, fields(1))

	_, err = NewFieldFilter([]string{"User.[a"})
	require.NotNil(t, err)
}

func mustPlugin(t *testing.T) func(program.Plugin, error) program.Plugin {
	return func(p program.Plugin, err error) program.Plugin {
		require.Nil(t, err)
		return p
	}
}

func TestMockValue(t *testing.T) {
	t.Parallel()
	field := func(name string, typ string) *idl.FieldDefinition {
		return &idl.FieldDefinition{Name: name, Type: &idl.FieldType{Kind: idl.FieldTypeBase, Name: typ}}
	}
	types := typemap.New()
	strTypes := typemap.New()
	require.Nil(t, strTypes.SetI64("string"))

	for _, name := range []string{"userId", "uid", "userid", "ID"} {
		id, ok := MockValue("User", field(name, "i64"), types).(int64)
		require.True(t, ok, name)
		require.GreaterOrEqual(t, id, int64(10000), name)
		require.Less(t, id, int64(100000), name)
	}

	sid, ok := MockValue("User", field("user_id", "i64"), strTypes).(string)
	require.True(t, ok)
	require.NotEmpty(t, sid)

	email, ok := MockValue("User", field("contactEmail", "string"), types).(string)
	require.True(t, ok)
	require.Regexp(t, `^user\d+@example\.com$`, email)

	for _, name := range []string{"createTime", "createtime", "update_timestamp"} {
		ts, ok := MockValue("User", field(name, "i64"), types).(int64)
		require.True(t, ok, name)
		require.GreaterOrEqual(t, ts, int64(mockEpochMillis))
	}

	for _, name := range []string{"status", "userType", "auditStatus", "itemstatus"} {
		st, ok := MockValue("User", field(name, "i32"), types).(int64)
		require.True(t, ok, name)
		require.GreaterOrEqual(t, st, int64(0))
		require.Less(t, st, int64(4))
	}

	withDefault := field("name", "string")
	withDefault.DefaultValue = &idl.ConstValue{Kind: idl.ConstValueString, Text: "bob"}
	require.Equal(t, "bob", MockValue("User", withDefault, types))

	require.Equal(t, "displayName", MockValue("User", field("display_name", "string"), types))
	_, isBool := MockValue("User", field("enabled", "bool"), types).(bool)
	require.True(t, isBool)
	require.Equal(t, "", MockValue("User", field("avatar", "binary"), types))
	require.Nil(t, MockValue("User", &idl.FieldDefinition{Name: "x", Type: &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: "X"}}, types))

	// Samples are stable.
	require.Equal(t, MockValue("User", field("userId", "i64"), types), MockValue("User", field("userId", "i64"), types))
}

func TestMockPlugin(t *testing.T) {
	t.Parallel()
	p, err := program.Create(NewMock())
	require.Nil(t, err)
	c, err := program.Trigger(context.Background(), p, program.GenMockField, &program.GenMockFieldContext{
		Struct:   "User",
		Field:    &idl.FieldDefinition{Name: "id", Type: &idl.FieldType{Kind: idl.FieldTypeBase, Name: "i32"}},
		Registry: program.NewRegistry(nil),
	})
	require.Nil(t, err)
	require.NotNil(t, c.Value)

	c, err = program.Trigger(context.Background(), p, program.GenMockField, &program.GenMockFieldContext{
		Field: &idl.FieldDefinition{Name: "id", Type: &idl.FieldType{Kind: idl.FieldTypeBase, Name: "i32"}},
		Value: "preset",
	})
	require.Nil(t, err)
	require.Equal(t, "preset", c.Value)
}

func TestConstToValue(t *testing.T) {
	t.Parallel()
	v := ConstToValue(&idl.ConstValue{Kind: idl.ConstValueMap, Pairs: []idl.ConstPair{
		{
			Key: &idl.ConstValue{Kind: idl.ConstValueString, Text: "a"},
			Value: &idl.ConstValue{Kind: idl.ConstValueList, Items: []*idl.ConstValue{
				{Kind: idl.ConstValueInt, Text: "0x10"},
				{Kind: idl.ConstValueDouble, Text: "1.5"},
				{Kind: idl.ConstValueBool, Text: "true"},
				{Kind: idl.ConstValueIdentifier, Text: "Kind.A"},
			}},
		},
	}})
	require.Equal(t, map[string]any{"a": []any{int64(16), 1.5, true, "Kind.A"}}, v)
	require.Nil(t, ConstToValue(nil))
}

func TestFormat(t *testing.T) {
	t.Parallel()
	banner := "// generated  \n"
	testCases := []struct {
		name     string
		file     string
		input    string
		expected string
	}{
		{
			name:     "ts gets banner",
			file:     "item.ts",
			input:    "\r\nexport const a = 1;   \r\n\r\n\r\n\r\nexport const b = 2;",
			expected: "// generated\n\nexport const a = 1;\n\nexport const b = 2;\n",
		},
		{
			name:     "json keeps content",
			file:     "schema.json",
			input:    "{}\n\n\n",
			expected: "{}\n",
		},
		{
			name:     "empty",
			file:     "x.json",
			input:    "\n\n",
			expected: "",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			once := Format(testCase.file, testCase.input, banner)
			require.Equal(t, testCase.expected, once)
			require.Equal(t, once, Format(testCase.file, once, banner))
		})
	}

	p, err := program.Create(NewFormat(banner))
	require.Nil(t, err)
	c, err := program.Trigger(context.Background(), p, program.WriteFile, &program.WriteFileContext{Filename: "a.ts", Content: "x"})
	require.Nil(t, err)
	require.Equal(t, "// generated\n\nx\n", c.Content)
}

const metaSource = `struct GetReq {
  1: i64 id (api.path = "id")
  2: string q
  3: string trace (api.header = "X-Trace")
  4: string hidden (api.none = "true")
}
struct GetRes { 1: string name }
service ItemService {
  // Reads an item.
  GetRes GetItem(1: GetReq req) (api.get = "/api/:space/item/:id")
  GetRes CreateItem(1: GetReq req) (api.post = "/api/item", api.serializer = "json")
  void Ping()
}
`

func genFileAST(t *testing.T, p *program.Program, doc *idl.Document, reg *program.Registry) *program.GenFileASTContext {
	t.Helper()
	c, err := program.Trigger(context.Background(), p, program.GenFileAST, &program.GenFileASTContext{
		Entry:    "item",
		Document: doc,
		Service:  doc.Services()[0],
		Registry: reg,
	})
	require.Nil(t, err)
	return c
}

func TestMeta(t *testing.T) {
	t.Parallel()
	doc := parse(t, metaSource)
	reg := program.NewRegistry(nil)
	reg.Symbols.Collect(doc)
	p, err := program.Create(NewMeta(typemap.Options{}))
	require.Nil(t, err)

	c := genFileAST(t, p, doc, reg)
	require.Equal(t, []*emit.MethodMeta{
		{
			Name:    "getItem",
			Service: "ItemService",
			ReqType: "GetReq",
			ResType: "GetRes",
			URL:     "/api/:space/item/:id",
			Method:  "GET",
			ReqMapping: map[string][]string{
				"path":   {"id"},
				"query":  {"q"},
				"header": {"X-Trace"},
			},
			Comments: []string{"Reads an item."},
		},
		{
			Name:       "createItem",
			Service:    "ItemService",
			ReqType:    "GetReq",
			ResType:    "GetRes",
			URL:        "/api/item",
			Method:     "POST",
			Serializer: "json",
			ReqMapping: map[string][]string{
				"path":   {"id"},
				"body":   {"q"},
				"header": {"X-Trace"},
			},
		},
	}, c.Methods)

	// Running again replaces rather than duplicates.
	c, err = program.Trigger(context.Background(), p, program.GenFileAST, c)
	require.Nil(t, err)
	require.Len(t, c.Methods, 2)

	_, err = program.Trigger(context.Background(), p, program.GenFileAST, &program.GenFileASTContext{Document: doc, Service: doc.Services()[0]})
	require.NotNil(t, err)
}

func TestMockConfig(t *testing.T) {
	t.Parallel()
	doc := parse(t, metaSource)
	dir := t.TempDir()
	disk := filepath.Join(dir, "api.dev.local.json")
	require.Nil(t, os.WriteFile(disk, []byte(`{"methods": ["ItemService.getItem"], "enabled": ["ItemService.getItem", "Old.gone"]}`), 0o644))

	run := func(core zapcore.Core) *program.ParseEntryContext {
		reg := program.NewRegistry(zap.New(core).Sugar())
		reg.Symbols.Collect(doc)
		p, err := program.Create(NewMeta(typemap.Options{}), NewMockConfig(disk, "api.dev.local.json"))
		require.Nil(t, err)
		pc := parseEntry(t, p, reg, doc)
		genFileAST(t, p, doc, reg)
		return pc
	}

	core, logs := observer.New(zapcore.WarnLevel)
	pc := run(core)
	dist, ok := pc.Files.Get("api.dev.local.json")
	require.True(t, ok)
	require.Equal(t, `{
  "methods": [
    "ItemService.createItem",
    "ItemService.getItem"
  ],
  "enabled": [
    "ItemService.getItem"
  ]
}
`, dist.Content)
	require.Equal(t, 0, logs.Len())

	require.Nil(t, os.WriteFile(disk, []byte(`{not json`), 0o644))
	pc = run(core)
	dist, ok = pc.Files.Get("api.dev.local.json")
	require.True(t, ok)
	require.Contains(t, dist.Content, `"enabled": []`)
	require.Equal(t, 1, logs.Len())

	require.Nil(t, os.Remove(disk))
	pc = run(core)
	_, ok = pc.Files.Get("api.dev.local.json")
	require.True(t, ok)
	require.Equal(t, 1, logs.Len())
}
