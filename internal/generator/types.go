package generator

import (
	"github.com/cockroachdb/errors"

	"gopkg.idlgen.dev/generator.go/internal/emit"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
	"gopkg.idlgen.dev/generator.go/internal/plugins"
)

// typeDecls converts the type declarations of the documents into the types
// module. The first declaration of a name wins.
func (r *run) typeDecls(docs []*idl.Document) ([]emit.Decl, error) {
	var decls []emit.Decl
	seen := make(map[string]string)
	for _, doc := range docs {
		resolver := r.reg.Resolver(doc)
		for _, s := range doc.Statements {
			name := idl.StatementName(s)
			switch s.(type) {
			case *idl.StructDefinition, *idl.EnumDefinition, *idl.TypedefDefinition, *idl.ConstDefinition:
			default:
				continue
			}
			if first, dup := seen[name]; dup {
				r.reg.Log.Warnw("duplicate type name", logger.FieldFile, doc.IdlPath, "name", name, "first", first)
				continue
			}
			seen[name] = doc.IdlPath

			switch v := s.(type) {
			case *idl.StructDefinition:
				d := emit.Interface{Name: v.Name, Comments: plugins.CommentLines(v.Comments)}
				for _, f := range v.Fields {
					ts, err := r.reg.Types.TSType(f.Type, resolver, r.tsOpts)
					if err != nil {
						return nil, errors.Wrapf(err, "%s.%s", v.Name, f.Name)
					}
					d.Properties = append(d.Properties, emit.Property{
						Name:     f.Name,
						Type:     ts,
						Optional: f.Optional,
						Nullable: r.opts.AllowNullForOptional,
						Comments: plugins.CommentLines(f.Comments),
					})
				}
				decls = append(decls, d)
			case *idl.EnumDefinition:
				d := emit.Enum{Name: v.Name, Comments: plugins.CommentLines(v.Comments)}
				for _, m := range v.Members {
					d.Members = append(d.Members, emit.EnumMember{
						Name:     m.Name,
						Value:    m.Value,
						Comments: plugins.CommentLines(m.Comments),
					})
				}
				decls = append(decls, d)
			case *idl.TypedefDefinition:
				ts, err := r.reg.Types.TSType(v.Type, resolver, r.tsOpts)
				if err != nil {
					return nil, errors.Wrapf(err, "typedef %s", v.Name)
				}
				decls = append(decls, emit.Alias{Name: v.Name, Type: ts, Comments: plugins.CommentLines(v.Comments)})
			case *idl.ConstDefinition:
				ts, err := r.reg.Types.TSType(v.Type, resolver, r.tsOpts)
				if err != nil {
					return nil, errors.Wrapf(err, "const %s", v.Name)
				}
				value := ""
				if v.Value != nil && v.Value.Kind == idl.ConstValueIdentifier {
					value = v.Value.Text
				} else if value, err = emit.ConstLiteral(plugins.ConstToValue(v.Value)); err != nil {
					return nil, errors.Wrapf(err, "const %s", v.Name)
				}
				decls = append(decls, emit.Const{Name: v.Name, Type: ts, Value: value, Comments: plugins.CommentLines(v.Comments)})
			}
		}
	}
	return decls, nil
}
