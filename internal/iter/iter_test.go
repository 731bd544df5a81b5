package iter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type elem struct {
	value int
}

func TestLookahead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	numValues := 10

	for x := 0; x < numValues; x = x + 1 {
		t.Run(fmt.Sprintf("LA(%d)", x), func(t *testing.T) {
			elems := make([]*elem, 0, numValues)
			for y := 0; y < numValues; y = y + 1 {
				elems = append(elems, &elem{value: y})
			}
			iter := NewSlice(elems)
			look := NewLookahead(iter, uint8(x))
			for y := 0; y < numValues; y = y + 1 {
				val := look.Next(ctx)
				require.NotNil(t, val)
				require.True(t, val.IsPresent())
				expected := y
				require.Equal(t, expected, val.Value().value)

				expectedPeek := y + x
				expectedPeekOK := expectedPeek < numValues
				peek := look.Lookahead(ctx, uint8(x))
				if expectedPeekOK {
					require.True(t, peek.IsPresent())
					require.Equal(t, expectedPeek, peek.Value().value)
				} else {
					require.False(t, peek.IsPresent())
				}
			}
			require.Nil(t, look.Close(ctx))
		})
	}
}

func TestLookaheadFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	numValues := 10
	filter := idl.Filter[*elem](FilterFunc[*elem](func(ctx context.Context, val *elem) bool {
		return val.value%2 == 0
	}))
	for x := 0; x < numValues/2; x = x + 1 {
		t.Run(fmt.Sprintf("LA(%d)", x), func(t *testing.T) {
			elems := make([]*elem, 0, numValues)
			for y := 0; y < numValues; y = y + 1 {
				elems = append(elems, &elem{value: y})
			}
			iter := NewSlice(elems)
			iter = NewIteratorFilter(iter, filter)
			look := NewLookahead(iter, uint8(x))
			for y := 0; y < numValues/2; y = y + 2 {
				val := look.Next(ctx)
				require.NotNil(t, val)
				require.True(t, val.IsPresent())
				expected := y
				require.Equal(t, expected, val.Value().value)

				expectedPeek := y + (x * 2)
				expectedPeekOK := expectedPeek < numValues
				peek := look.Lookahead(ctx, uint8(x))
				if expectedPeekOK {
					require.True(t, peek.IsPresent())
					require.Equal(t, expectedPeek, peek.Value().value)
				} else {
					require.False(t, peek.IsPresent())
				}
			}
			require.Nil(t, look.Close(ctx))
		})
	}
}

var benchEscapeValue *elem
var benchEscapeValuePeek *elem

func BenchmarkLookahead(b *testing.B) {
	ctx := context.Background()
	sliceSize := 1000
	slice := make([]*elem, sliceSize)
	for x := 0; x < sliceSize; x = x + 1 {
		slice[x] = &elem{value: x}
	}
	iter := NewSlice(slice)
	look := NewLookahead(iter, 1)

	var loopEscapeValue *elem
	var loopEscapeValuePeek *elem
	b.ResetTimer()
	for n := 0; n < b.N; n = n + 1 {
		for x := 0; x < sliceSize; x = x + 1 {
			loopEscapeValue = look.Next(ctx).Value()
			loopEscapeValuePeek = look.Lookahead(ctx, 1).Value()
		}
	}
	benchEscapeValue = loopEscapeValue
	benchEscapeValuePeek = loopEscapeValuePeek
}

func TestDropTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := []*idl.Token{
		{Type: idl.TokenTypeIdentifier, Value: "struct"},
		{Type: idl.TokenTypeNewline, Value: "\n"},
		{Type: idl.TokenTypeComment, Value: " note"},
		{Type: idl.TokenTypeIdentifier, Value: "Foo"},
	}
	out, err := Collect(ctx, DropTokens(NewSlice(tokens), idl.TokenTypeNewline, idl.TokenTypeComment))
	require.Nil(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "struct", out[0].Value)
	require.Equal(t, "Foo", out[1].Value)
}

func TestCodePoints(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ascii", input: "enum A {}", expected: "enum A {}"},
		{name: "multibyte", input: "// ü 名前\n", expected: "// ü 名前\n"},
		{name: "byte order mark", input: "\uFEFFstruct S {}", expected: "struct S {}"},
		{name: "inner byte order mark", input: "a\uFEFF", expected: "a\uFEFF"},
		{name: "invalid utf8", input: "a\xffb", expected: "a\uFFFDb"},
		{name: "empty", input: "", expected: ""},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			body, err := fs.NewFileString("/a.thrift", testCase.input, idl.FileKindThrift).Body(ctx)
			require.Nil(t, err)
			points := NewCodePoints(ctx, body)
			var out []rune
			for p := points.Next(ctx); p.IsPresent(); p = points.Next(ctx) {
				out = append(out, rune(p.Value()))
			}
			require.Nil(t, points.Close(ctx))
			require.Equal(t, testCase.expected, string(out))
		})
	}
}
