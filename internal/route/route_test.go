package route

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.idlgen.dev/generator.go/internal/idl"
)

func anns(kv ...string) []idl.Annotation {
	out := make([]idl.Annotation, 0, len(kv)/2)
	for x := 0; x+1 < len(kv); x = x + 2 {
		out = append(out, idl.Annotation{Key: kv[x], Value: kv[x+1]})
	}
	return out
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		own       []idl.Annotation
		inherited []idl.Annotation
		expected  *idl.ExtensionConfig
	}{
		{
			name:     "no annotations",
			expected: nil,
		},
		{
			name:     "unrelated annotations",
			own:      anns("go.tag", "json"),
			expected: nil,
		},
		{
			name:     "new dialect verb",
			own:      anns("api.get", "/api/biz1"),
			expected: &idl.ExtensionConfig{Method: "GET", URI: "/api/biz1"},
		},
		{
			name:     "old dialect verb",
			own:      anns("api_method.get", "/api/biz1"),
			expected: &idl.ExtensionConfig{Method: "GET", URI: "/api/biz1"},
		},
		{
			name:     "old dialect with package",
			own:      anns("pb_idl.api_method.post", "/api/biz2"),
			expected: &idl.ExtensionConfig{Method: "POST", URI: "/api/biz2"},
		},
		{
			name:     "agw prefix",
			own:      anns("agw.put", "/v1/x"),
			expected: &idl.ExtensionConfig{Method: "PUT", URI: "/v1/x"},
		},
		{
			name:     "uri without method",
			own:      anns("api.uri", "/api/biz1"),
			expected: &idl.ExtensionConfig{Method: DefaultMethod, URI: "/api/biz1"},
		},
		{
			name:     "explicit method is upper cased",
			own:      anns("api.uri", "/a", "api.method", "post"),
			expected: &idl.ExtensionConfig{Method: "POST", URI: "/a"},
		},
		{
			name:     "explicit method wins over verb",
			own:      anns("api.get", "/a", "api.method", "delete"),
			expected: &idl.ExtensionConfig{Method: "DELETE", URI: "/a"},
		},
		{
			name:     "explicit uri wins over verb value",
			own:      anns("api.uri", "/explicit", "api.post", "/verb"),
			expected: &idl.ExtensionConfig{Method: "POST", URI: "/explicit"},
		},
		{
			name:      "serializer and group inherited",
			own:       anns("api.get", "/a"),
			inherited: anns("api.serializer", "json", "api.group", "biz", "api.category", "demo"),
			expected:  &idl.ExtensionConfig{Method: "GET", URI: "/a", Serializer: "json", Group: "biz", Extra: map[string]string{"category": "demo"}},
		},
		{
			name:      "own serializer overrides inherited",
			own:       anns("api.get", "/a", "api.serializer", "form"),
			inherited: anns("api.serializer", "json"),
			expected:  &idl.ExtensionConfig{Method: "GET", URI: "/a", Serializer: "form"},
		},
		{
			name:      "inherited route keys do not route",
			inherited: anns("api.get", "/svc"),
			expected:  nil,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.own, testCase.inherited))
		})
	}
}

func TestNormalizeDialectsAgree(t *testing.T) {
	t.Parallel()
	for verb := range verbs {
		newer := Normalize(anns("api."+verb, "/x"), nil)
		older := Normalize(anns("api_method."+verb, "/x"), nil)
		require.Equal(t, newer, older, verb)
	}
}

func TestFieldLocation(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		field    *idl.FieldDefinition
		method   string
		location Location
		wire     string
	}{
		{
			name:     "path annotation",
			field:    &idl.FieldDefinition{Name: "id", Annotations: anns("api.path", "id")},
			method:   "GET",
			location: LocationPath,
			wire:     "id",
		},
		{
			name:     "header with wire name",
			field:    &idl.FieldDefinition{Name: "token", Annotations: anns("api.header", "X-Token")},
			method:   "POST",
			location: LocationHeader,
			wire:     "X-Token",
		},
		{
			name:     "empty value uses field name",
			field:    &idl.FieldDefinition{Name: "page", Annotations: anns("api.query", "")},
			method:   "POST",
			location: LocationQuery,
			wire:     "page",
		},
		{
			name:     "post defaults to body",
			field:    &idl.FieldDefinition{Name: "name"},
			method:   "POST",
			location: LocationBody,
			wire:     "name",
		},
		{
			name:     "get defaults to query",
			field:    &idl.FieldDefinition{Name: "name"},
			method:   "GET",
			location: LocationQuery,
			wire:     "name",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			location, wire := FieldLocation(testCase.field, testCase.method)
			require.Equal(t, testCase.location, location)
			require.Equal(t, testCase.wire, wire)
		})
	}
}

func TestHidden(t *testing.T) {
	t.Parallel()
	require.True(t, Hidden(anns("api.none", "true")))
	require.True(t, Hidden(anns("agw.none", "")))
	require.False(t, Hidden(anns("api.none", "false")))
	require.False(t, Hidden(nil))
}
