package typemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type fakeResolver map[string]bool

func (f fakeResolver) Resolve(name string) (string, bool, bool) {
	enum, ok := f[name]
	return name, enum, ok
}

func TestMap(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		i64      string
		expected string
		err      string
	}{
		{name: "i32", input: "i32", expected: "number"},
		{name: "double", input: "double", expected: "number"},
		{name: "byte", input: "byte", expected: "number"},
		{name: "i64 default", input: "i64", expected: "number"},
		{name: "i64 as string", input: "i64", i64: "string", expected: "string"},
		{name: "proto uint64 as string", input: "uint64", i64: "string", expected: "string"},
		{name: "string", input: "string", expected: "string"},
		{name: "bool", input: "bool", expected: "boolean"},
		{name: "binary", input: "binary", expected: "object"},
		{name: "unknown", input: "float128", err: "UnKnown type: float128"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			m := New()
			if testCase.i64 != "" {
				require.Nil(t, m.SetI64(testCase.i64))
			}
			out, err := m.Map(testCase.input)
			if testCase.err != "" {
				require.NotNil(t, err)
				require.Contains(t, err.Error(), testCase.err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, testCase.expected, out)
		})
	}
}

func TestSetI64(t *testing.T) {
	t.Parallel()
	m := New()
	require.NotNil(t, m.SetI64("bigint"))
	require.Equal(t, "number", m.I64)
}

func TestTSType(t *testing.T) {
	t.Parallel()
	base := func(n string) *idl.FieldType { return &idl.FieldType{Kind: idl.FieldTypeBase, Name: n} }
	ident := func(n string) *idl.FieldType { return &idl.FieldType{Kind: idl.FieldTypeIdentifier, Name: n} }
	r := fakeResolver{"Page": false, "Kind": true}
	testCases := []struct {
		name     string
		input    *idl.FieldType
		opts     Options
		expected string
	}{
		{name: "void", input: nil, expected: "void"},
		{name: "identifier", input: ident("Page"), expected: "Page"},
		{name: "unresolved identifier", input: ident("Nope"), expected: "any"},
		{name: "list", input: &idl.FieldType{Kind: idl.FieldTypeList, ValueType: base("i32")}, expected: "number[]"},
		{
			name:     "nested list",
			input:    &idl.FieldType{Kind: idl.FieldTypeSet, ValueType: &idl.FieldType{Kind: idl.FieldTypeList, ValueType: ident("Page")}},
			expected: "Page[][]",
		},
		{
			name:     "map string key",
			input:    &idl.FieldType{Kind: idl.FieldTypeMap, KeyType: base("string"), ValueType: ident("Page")},
			expected: "Record<string, Page>",
		},
		{
			name:     "map numeric key",
			input:    &idl.FieldType{Kind: idl.FieldTypeMap, KeyType: base("i64"), ValueType: base("bool")},
			expected: "Record<number, boolean>",
		},
		{
			name:     "map enum key",
			input:    &idl.FieldType{Kind: idl.FieldTypeMap, KeyType: ident("Kind"), ValueType: base("string")},
			expected: "Record<string, string>",
		},
		{
			name:     "map enum key as number",
			input:    &idl.FieldType{Kind: idl.FieldTypeMap, KeyType: ident("Kind"), ValueType: base("string")},
			opts:     Options{MapEnumKeyAsNumber: true},
			expected: "Record<number, string>",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			out, err := New().TSType(testCase.input, r, testCase.opts)
			require.Nil(t, err)
			require.Equal(t, testCase.expected, out)
		})
	}
}
