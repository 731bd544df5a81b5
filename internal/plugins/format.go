package plugins

import (
	"context"
	"path"
	"regexp"
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/program"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// NewFormat tidies every output file before it is written: newlines are
// normalized, trailing blanks stripped, runs of blank lines collapsed and a
// single final newline kept. TypeScript files get the banner on top.
func NewFormat(banner string) program.Plugin {
	return Func{
		PluginName: "format",
		ApplyFunc: func(p *program.Program) error {
			program.Register(p, program.WriteFile, program.PhaseOn, func(ctx context.Context, c *program.WriteFileContext) (*program.WriteFileContext, error) {
				c.Content = Format(c.Filename, c.Content, banner)
				return c, nil
			}, PriorityLate)
			return nil
		},
	}
}

// Format applies the output formatting rules to one file.
func Format(filename string, content string, banner string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	content = strings.Trim(strings.Join(lines, "\n"), "\n")
	content = blankRuns.ReplaceAllString(content, "\n\n")

	if banner != "" && path.Ext(filename) == ".ts" {
		banner = strings.TrimSuffix(Format("", banner, ""), "\n")
		if !strings.HasPrefix(content, banner) {
			content = banner + "\n\n" + content
		}
	}
	if content == "" {
		return ""
	}
	return content + "\n"
}
