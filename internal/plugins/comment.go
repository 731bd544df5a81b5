package plugins

import (
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/program"
)

// NewComment cleans comment text: block gutters and surrounding space are
// removed and empty first and last lines dropped. Running it twice changes
// nothing.
func NewComment() program.Plugin {
	return Func{
		PluginName: "comment",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.ParseEntry, program.PhaseOn, eachDocument(func(c *program.ParseEntryContext, i int) {
				idl.Walk(c.AST[i], func(s idl.Statement) {
					cs := idl.Comments(s)
					if cs == nil {
						return
					}
					for x := range *cs {
						(*cs)[x] = CleanComment((*cs)[x])
					}
				})
			}))
			return nil
		},
	}
}

// CleanComment returns the comment with every value cleaned.
func CleanComment(c idl.Comment) idl.Comment {
	if len(c.Values) > 0 {
		values := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			values = append(values, cleanText(v))
		}
		return idl.Comment{Type: c.Type, Values: values}
	}
	return idl.Comment{Type: c.Type, Value: cleanText(c.Value)}
}

func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimLeft(l, "*")
		lines[i] = strings.TrimSpace(l)
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
