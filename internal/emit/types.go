package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Decl is a top level declaration of the types module.
type Decl interface {
	render(b *strings.Builder)
}

type Property struct {
	Name     string
	Type     string
	Optional bool
	// Nullable adds "| null" to an optional property.
	Nullable bool
	Comments []string
}

type Interface struct {
	Name       string
	Comments   []string
	Properties []Property
}

type EnumMember struct {
	Name     string
	Value    int64
	Comments []string
}

type Enum struct {
	Name     string
	Comments []string
	Members  []EnumMember
}

type Alias struct {
	Name     string
	Type     string
	Comments []string
}

type Const struct {
	Name     string
	Type     string
	Value    string
	Comments []string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func propertyName(n string) string {
	if identPattern.MatchString(n) {
		return n
	}
	return "'" + strings.ReplaceAll(n, "'", "\\'") + "'"
}

func (d Interface) render(b *strings.Builder) {
	writeDoc(b, "", d.Comments)
	fmt.Fprintf(b, "export interface %s {\n", d.Name)
	for _, p := range d.Properties {
		writeDoc(b, "  ", p.Comments)
		opt := ""
		t := p.Type
		if p.Optional {
			opt = "?"
			if p.Nullable {
				t += " | null"
			}
		}
		fmt.Fprintf(b, "  %s%s: %s;\n", propertyName(p.Name), opt, t)
	}
	b.WriteString("}\n")
}

func (d Enum) render(b *strings.Builder) {
	writeDoc(b, "", d.Comments)
	fmt.Fprintf(b, "export enum %s {\n", d.Name)
	for _, m := range d.Members {
		writeDoc(b, "  ", m.Comments)
		fmt.Fprintf(b, "  %s = %d,\n", propertyName(m.Name), m.Value)
	}
	b.WriteString("}\n")
}

func (d Alias) render(b *strings.Builder) {
	writeDoc(b, "", d.Comments)
	fmt.Fprintf(b, "export type %s = %s;\n", d.Name, d.Type)
}

func (d Const) render(b *strings.Builder) {
	writeDoc(b, "", d.Comments)
	fmt.Fprintf(b, "export const %s: %s = %s;\n", d.Name, d.Type, d.Value)
}

// RenderTypes renders declarations in the given order separated by blank
// lines.
func RenderTypes(decls []Decl) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString("\n")
		}
		d.render(&b)
	}
	return b.String()
}

// Export is one re-export of an index module. An empty As re-exports every
// name flat.
type Export struct {
	Module string
	As     string
}

func RenderIndex(exports []Export) string {
	var b strings.Builder
	for _, e := range exports {
		if e.As == "" {
			fmt.Fprintf(&b, "export * from '%s';\n", e.Module)
			continue
		}
		fmt.Fprintf(&b, "export * as %s from '%s';\n", e.As, e.Module)
	}
	return b.String()
}

// Mock is the sample response of one method.
type Mock struct {
	Name  string
	Value any
}

// RenderMock renders a module exporting one sample object per method and a
// lookup table keyed by method name.
func RenderMock(mocks []Mock) (string, error) {
	var b strings.Builder
	names := make([]string, 0, len(mocks))
	for _, m := range mocks {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m.Value); err != nil {
			return "", errors.Wrapf(err, "encode mock of %s", m.Name)
		}
		fmt.Fprintf(&b, "export const %sMock = %s;\n\n", m.Name, strings.TrimSuffix(buf.String(), "\n"))
		names = append(names, m.Name)
	}
	b.WriteString("export const mocks: Record<string, unknown> = {\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %s: %sMock,\n", n, n)
	}
	b.WriteString("};\n")
	return b.String(), nil
}

// ConstLiteral renders a constant as a TypeScript literal.
func ConstLiteral(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "encode constant")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
