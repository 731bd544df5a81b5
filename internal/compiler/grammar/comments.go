package grammar

import (
	"gopkg.idlgen.dev/generator.go/internal/idl"
)

type commentRun struct {
	tokens   []*idl.Token
	prev     int
	trailing bool
}

func (r commentRun) comment() idl.Comment {
	typ := idl.CommentLine
	for _, t := range r.tokens {
		if t.Type == idl.TokenTypeCommentBlock {
			typ = idl.CommentBlock
		}
	}
	if len(r.tokens) == 1 {
		return idl.Comment{Type: typ, Value: r.tokens[0].Value}
	}
	values := make([]string, 0, len(r.tokens))
	for _, t := range r.tokens {
		values = append(values, t.Value)
	}
	return idl.Comment{Type: typ, Values: values}
}

// AttachComments distributes the comments set aside while parsing to the
// declarations registered with Declare. It must run once, after the parse.
//
// Comments on consecutive lines with nothing between them form one run. A
// run that starts on the line where a declaration ends is trailing; with
// ReviseTailComment it belongs to that declaration, otherwise it leads the
// next one. Every other run leads the declaration that follows it.
func (p *Cursor) AttachComments(opts idl.ParseOptions) {
	for _, run := range p.commentRuns() {
		var target *declaration
		if run.trailing && opts.ReviseTailComment {
			target = p.declEndingAt(run.prev)
		}
		if target == nil {
			target = p.declStartingAt(run.prev + 1)
		}
		if target == nil {
			target = p.declEndingAt(run.prev)
		}
		if target == nil {
			continue
		}
		*target.comments = append(*target.comments, run.comment())
	}
	p.comments = nil
}

func (p *Cursor) commentRuns() []commentRun {
	var runs []commentRun
	for _, c := range p.comments {
		trailing := c.prev >= 0 && p.tokens[c.prev].Span.End.Line == c.tok.Span.Start.Line
		if n := len(runs); n > 0 && !trailing {
			last := runs[n-1]
			lastTok := last.tokens[len(last.tokens)-1]
			if !last.trailing && last.prev == c.prev && c.tok.Span.Start.Line-lastTok.Span.End.Line <= 1 {
				runs[n-1].tokens = append(runs[n-1].tokens, c.tok)
				continue
			}
		}
		runs = append(runs, commentRun{tokens: []*idl.Token{c.tok}, prev: c.prev, trailing: trailing})
	}
	return runs
}

// declEndingAt prefers the innermost declaration, which registers first.
func (p *Cursor) declEndingAt(i int) *declaration {
	if i < 0 {
		return nil
	}
	for x := range p.decls {
		if p.decls[x].last == i {
			return &p.decls[x]
		}
	}
	return nil
}

// declStartingAt prefers the outermost declaration, which registers last.
func (p *Cursor) declStartingAt(i int) *declaration {
	for x := len(p.decls) - 1; x >= 0; x = x - 1 {
		if p.decls[x].first == i {
			return &p.decls[x]
		}
	}
	return nil
}
