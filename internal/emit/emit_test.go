package emit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		meta     *MethodMeta
		opts     Options
		expected string
		unmapped []string
	}{
		{
			name: "no path params",
			meta: &MethodMeta{Name: "getItem", ReqType: "GetReq", ResType: "GetRes", URL: "/api/item", Method: "GET"},
			expected: `export const getItem = createAPI<GetReq, GetRes>({"url":"/api/item","method":"GET","name":"getItem","reqType":"GetReq","resType":"GetRes"});
`,
		},
		{
			name: "mapped path param",
			meta: &MethodMeta{
				Name: "getItem", ReqType: "GetReq", ResType: "GetRes", URL: "/api/item/:id", Method: "GET",
				ReqMapping: map[string][]string{"path": {"id"}},
			},
			expected: `export const getItem = createAPI<GetReq, GetRes>({"url":"/api/item/${req.id}","method":"GET","name":"getItem","reqType":"GetReq","resType":"GetRes","reqMapping":{"path":["id"]}});
`,
		},
		{
			name: "unmapped path param",
			meta: &MethodMeta{Name: "getItem", ReqType: "GetReq", ResType: "GetRes", URL: "/api/:space/item", Method: "GET"},
			expected: `export const getItem = createAPI<GetReq, GetRes, {space: string | number}>({"url":"/api/${option.pathParams?.space ?? getDefaultPathParam('space')}/item","method":"GET","name":"getItem","reqType":"GetReq","resType":"GetRes"});
`,
			unmapped: []string{"space"},
		},
		{
			name: "mixed params with custom provider and comments",
			meta: &MethodMeta{
				Name: "putItem", ReqType: "PutReq", ResType: "", URL: "/api/:space/item/:id", Method: "PUT",
				Serializer: "json", Group: "items",
				ReqMapping: map[string][]string{"path": {"id"}, "body": {"name"}},
				Comments:   []string{"Updates an item.", "", "Idempotent."},
			},
			opts: Options{ParamProvider: "spaceOf"},
			expected: `/**
 * Updates an item.
 *
 * Idempotent.
 */
export const putItem = createAPI<PutReq, any, {space: string | number}>({"url":"/api/${option.pathParams?.space ?? spaceOf('space')}/item/${req.id}","method":"PUT","name":"putItem","reqType":"PutReq","resType":"","reqMapping":{"body":["name"],"path":["id"]},"serializer":"json","group":"items"});
`,
			unmapped: []string{"space"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			out, err := Render(testCase.meta, testCase.opts)
			require.Nil(t, err)
			require.Equal(t, testCase.expected, out.Source)
			require.Equal(t, testCase.unmapped, out.Unmapped)
		})
	}
}

func TestRenderRequiresName(t *testing.T) {
	t.Parallel()
	_, err := Render(&MethodMeta{URL: "/x"}, Options{})
	require.NotNil(t, err)
}

func TestPathParams(t *testing.T) {
	t.Parallel()
	m := &MethodMeta{URL: "/a/:b/c/:d/:"}
	require.Equal(t, []string{"b", "d"}, m.PathParams())
}

func TestRenderService(t *testing.T) {
	t.Parallel()
	out, err := RenderService(ServiceFile{
		CommonCodePath: "@/api/common",
		TypesImport:    "./types",
		Methods: []*MethodMeta{
			{Name: "list", ReqType: "ListReq", ResType: "Page[]", URL: "/api/:space/list", Method: "GET"},
			{Name: "get", ReqType: "GetReq", ResType: "Record<string, Item>", URL: "/api/get", Method: "GET"},
		},
	}, Options{})
	require.Nil(t, err)
	require.Equal(t, `import { createAPI, getDefaultPathParam } from '@/api/common';
import type { GetReq, Item, ListReq, Page } from './types';

export const list = createAPI<ListReq, Page[], {space: string | number}>({"url":"/api/${option.pathParams?.space ?? getDefaultPathParam('space')}/list","method":"GET","name":"list","reqType":"ListReq","resType":"Page[]"});

export const get = createAPI<GetReq, Record<string, Item>>({"url":"/api/get","method":"GET","name":"get","reqType":"GetReq","resType":"Record<string, Item>"});
`, out)
}

func TestRenderTypes(t *testing.T) {
	t.Parallel()
	out := RenderTypes([]Decl{
		Enum{Name: "Kind", Members: []EnumMember{{Name: "A", Value: 0}, {Name: "B", Value: 3, Comments: []string{"bee"}}}},
		Alias{Name: "Ids", Type: "number[]"},
		Interface{
			Name:     "Item",
			Comments: []string{"An item."},
			Properties: []Property{
				{Name: "id", Type: "number"},
				{Name: "display-name", Type: "string", Optional: true},
				{Name: "kind", Type: "Kind", Optional: true, Nullable: true},
			},
		},
		Const{Name: "LIMIT", Type: "number", Value: "10"},
	})
	require.Equal(t, `export enum Kind {
  A = 0,
  /**
   * bee
   */
  B = 3,
}

export type Ids = number[];

/**
 * An item.
 */
export interface Item {
  id: number;
  'display-name'?: string;
  kind?: Kind | null;
}

export const LIMIT: number = 10;
`, out)
}

func TestRenderIndex(t *testing.T) {
	t.Parallel()
	out := RenderIndex([]Export{{Module: "./types"}, {Module: "./item", As: "item"}})
	require.Equal(t, "export * from './types';\nexport * as item from './item';\n", out)
}

func TestRenderMock(t *testing.T) {
	t.Parallel()
	out, err := RenderMock([]Mock{{Name: "get", Value: map[string]any{"id": 1, "url": "<a>"}}})
	require.Nil(t, err)
	require.Equal(t, `export const getMock = {
  "id": 1,
  "url": "<a>"
};

export const mocks: Record<string, unknown> = {
  get: getMock,
};
`, out)
}

func TestConstLiteral(t *testing.T) {
	t.Parallel()
	out, err := ConstLiteral([]any{"a", 1.5, true})
	require.Nil(t, err)
	require.Equal(t, `["a",1.5,true]`, out)
}
