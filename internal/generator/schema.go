package generator

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/plugins"
	"gopkg.idlgen.dev/generator.go/internal/typemap"
)

// schema describes the structs, enums and typedefs of the documents as
// JSON Schema definitions.
func (r *run) schema(docs []*idl.Document) ([]byte, error) {
	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Definitions: jsonschema.Definitions{},
	}
	for _, doc := range docs {
		for _, s := range doc.Statements {
			name := idl.StatementName(s)
			if _, dup := root.Definitions[name]; dup {
				continue
			}
			switch v := s.(type) {
			case *idl.StructDefinition:
				def := &jsonschema.Schema{
					Type:        "object",
					Description: description(v.Comments),
					Properties:  jsonschema.NewProperties(),
				}
				for _, f := range v.Fields {
					prop := r.typeSchema(doc, f.Type)
					if d := description(f.Comments); d != "" {
						prop.Description = d
					}
					def.Properties.Set(f.Name, prop)
					if f.Required {
						def.Required = append(def.Required, f.Name)
					}
				}
				root.Definitions[name] = def
			case *idl.EnumDefinition:
				def := &jsonschema.Schema{Type: "integer", Description: description(v.Comments)}
				for _, m := range v.Members {
					def.Enum = append(def.Enum, m.Value)
				}
				root.Definitions[name] = def
			case *idl.TypedefDefinition:
				def := r.typeSchema(doc, v.Type)
				def.Description = description(v.Comments)
				root.Definitions[name] = def
			}
		}
	}
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode schema")
	}
	return append(out, '\n'), nil
}

func (r *run) typeSchema(doc *idl.Document, t *idl.FieldType) *jsonschema.Schema {
	if t == nil {
		return &jsonschema.Schema{Type: "null"}
	}
	switch t.Kind {
	case idl.FieldTypeBase:
		switch t.Name {
		case "bool":
			return &jsonschema.Schema{Type: "boolean"}
		case "byte", "i8", "i16", "i32":
			return &jsonschema.Schema{Type: "integer"}
		case "i64":
			if r.reg.Types.I64 == typemap.TSString {
				return &jsonschema.Schema{Type: "string"}
			}
			return &jsonschema.Schema{Type: "integer"}
		case "double":
			return &jsonschema.Schema{Type: "number"}
		default:
			return &jsonschema.Schema{Type: "string"}
		}
	case idl.FieldTypeIdentifier:
		name, _, ok := r.reg.Resolver(doc).Resolve(t.Name)
		if !ok {
			return &jsonschema.Schema{}
		}
		return &jsonschema.Schema{Ref: "#/$defs/" + name}
	case idl.FieldTypeList, idl.FieldTypeSet:
		return &jsonschema.Schema{Type: "array", Items: r.typeSchema(doc, t.ValueType)}
	case idl.FieldTypeMap:
		return &jsonschema.Schema{Type: "object", AdditionalProperties: r.typeSchema(doc, t.ValueType)}
	}
	return &jsonschema.Schema{}
}

func description(cs []idl.Comment) string {
	return strings.Join(plugins.CommentLines(cs), "\n")
}
