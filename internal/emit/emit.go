// Package emit renders TypeScript client source from method metadata.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultParamProvider is called at runtime for path parameters that the
// request type does not carry.
const DefaultParamProvider = "getDefaultPathParam"

// MethodMeta is everything a createAPI call site needs about one RPC.
type MethodMeta struct {
	Name       string
	Service    string
	ReqType    string
	ResType    string
	URL        string
	Method     string
	Serializer string
	Group      string
	// ReqMapping lists request field wire names by location (path, query,
	// body, header, cookie).
	ReqMapping map[string][]string
	Comments   []string
}

// PathParams returns the :param segments of the URL in order.
func (m *MethodMeta) PathParams() []string {
	var out []string
	for _, seg := range strings.Split(m.URL, "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			out = append(out, seg[1:])
		}
	}
	return out
}

// Options tune rendering.
type Options struct {
	// ParamProvider overrides DefaultParamProvider.
	ParamProvider string
}

func (o Options) provider() string {
	if o.ParamProvider == "" {
		return DefaultParamProvider
	}
	return o.ParamProvider
}

// wireMeta fixes the key order of the serialized metadata.
type wireMeta struct {
	URL        string              `json:"url"`
	Method     string              `json:"method"`
	Name       string              `json:"name"`
	ReqType    string              `json:"reqType"`
	ResType    string              `json:"resType"`
	ReqMapping map[string][]string `json:"reqMapping,omitempty"`
	Serializer string              `json:"serializer,omitempty"`
	Group      string              `json:"group,omitempty"`
}

// Rendered is one createAPI declaration.
type Rendered struct {
	Source string
	// Unmapped are path parameters resolved through the param provider.
	Unmapped []string
}

// Render produces the createAPI declaration of one method. A :param segment
// becomes ${req.param} when the request maps a path field of that name and
// ${option.pathParams?.param ?? provider('param')} otherwise; every unmapped
// parameter is added to the third type argument.
//
// The rewritten url stays inside the JSON encoded metadata, so TypeScript
// never interpolates it. createAPI in the common module must evaluate the
// ${...} placeholders at call time with req and option in scope.
func Render(meta *MethodMeta, opts Options) (*Rendered, error) {
	if meta.Name == "" {
		return nil, errors.New("method without a name")
	}
	mapped := make(map[string]bool)
	for _, p := range meta.ReqMapping["path"] {
		mapped[p] = true
	}
	var unmapped []string
	segs := strings.Split(meta.URL, "/")
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") || len(seg) < 2 {
			continue
		}
		name := seg[1:]
		if mapped[name] {
			segs[i] = fmt.Sprintf("${req.%s}", name)
			continue
		}
		segs[i] = fmt.Sprintf("${option.pathParams?.%s ?? %s('%s')}", name, opts.provider(), name)
		unmapped = append(unmapped, name)
	}

	wm := wireMeta{
		URL:        strings.Join(segs, "/"),
		Method:     meta.Method,
		Name:       meta.Name,
		ReqType:    meta.ReqType,
		ResType:    meta.ResType,
		ReqMapping: meta.ReqMapping,
		Serializer: meta.Serializer,
		Group:      meta.Group,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wm); err != nil {
		return nil, errors.Wrapf(err, "encode meta of %s", meta.Name)
	}

	typeArgs := []string{orAny(meta.ReqType), orAny(meta.ResType)}
	if len(unmapped) > 0 {
		fields := make([]string, 0, len(unmapped))
		for _, p := range unmapped {
			fields = append(fields, p+": string | number")
		}
		typeArgs = append(typeArgs, "{"+strings.Join(fields, "; ")+"}")
	}

	var b strings.Builder
	writeDoc(&b, "", meta.Comments)
	fmt.Fprintf(&b, "export const %s = createAPI<%s>(%s);\n",
		meta.Name, strings.Join(typeArgs, ", "), strings.TrimSuffix(buf.String(), "\n"))
	return &Rendered{Source: b.String(), Unmapped: unmapped}, nil
}

func orAny(t string) string {
	if t == "" {
		return "any"
	}
	return t
}

// ServiceFile is one generated module of createAPI calls.
type ServiceFile struct {
	// CommonCodePath is the import path of the runtime holding createAPI.
	CommonCodePath string
	// TypesImport is the import path of the types module.
	TypesImport string
	// Imports are extra import statements, written verbatim.
	Imports []string
	Methods []*MethodMeta
}

// RenderService renders a service module: runtime imports, type imports and
// one declaration per method in the given order.
func RenderService(f ServiceFile, opts Options) (string, error) {
	var (
		body       strings.Builder
		types      []string
		needsParam bool
	)
	for _, m := range f.Methods {
		r, err := Render(m, opts)
		if err != nil {
			return "", err
		}
		if len(r.Unmapped) > 0 {
			needsParam = true
		}
		types = append(types, importable(m.ReqType)...)
		types = append(types, importable(m.ResType)...)
		body.WriteString("\n")
		body.WriteString(r.Source)
	}
	slices.Sort(types)
	types = slices.Compact(types)

	runtime := []string{"createAPI"}
	if needsParam {
		runtime = append(runtime, opts.provider())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "import { %s } from '%s';\n", strings.Join(runtime, ", "), f.CommonCodePath)
	if len(types) > 0 {
		fmt.Fprintf(&b, "import type { %s } from '%s';\n", strings.Join(types, ", "), f.TypesImport)
	}
	for _, imp := range f.Imports {
		b.WriteString(strings.TrimSuffix(imp, "\n") + "\n")
	}
	b.WriteString(body.String())
	return b.String(), nil
}

// importable returns the named types a type expression refers to.
func importable(t string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(t, func(r rune) bool {
		return !(r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) {
		switch f {
		case "", "any", "void", "number", "string", "boolean", "object", "Record":
			continue
		}
		out = append(out, f)
	}
	return out
}

func writeDoc(b *strings.Builder, indent string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(indent + "/**\n")
	for _, l := range lines {
		if l == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + strings.ReplaceAll(l, "*/", "*\\/") + "\n")
	}
	b.WriteString(indent + " */\n")
}
