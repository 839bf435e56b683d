package quesimg

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extensionAST "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const listIndent = "  "

// FlattenMarkdown turns a Markdown body into plain text lines separated by
// "\n", ready for WrapText. Every block becomes its own hard line; list
// items keep a bullet or number; code blocks keep their lines verbatim.
// Emphasis, links and inline code collapse to their text.
func FlattenMarkdown(src []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))
	f := &flattener{src: src}
	f.blocks(doc, 0)
	return strings.Join(f.lines, "\n")
}

type flattener struct {
	src   []byte
	lines []string
}

func (f *flattener) add(prefix, s string) {
	for i, ln := range strings.Split(s, "\n") {
		if i > 0 {
			prefix = strings.Repeat(" ", len([]rune(prefix)))
		}
		f.lines = append(f.lines, prefix+strings.TrimRight(ln, " "))
	}
}

func (f *flattener) blocks(parent ast.Node, level int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		f.block(n, level)
	}
}

func (f *flattener) block(n ast.Node, level int) {
	indent := strings.Repeat(listIndent, level)
	switch nd := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		f.add(indent, strings.TrimSpace(f.inline(nd)))
	case *ast.List:
		f.list(nd, level)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := nd.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			f.lines = append(f.lines, indent+strings.TrimRight(string(seg.Value(f.src)), "\r\n"))
		}
	case *extensionAST.Table:
		f.table(nd, indent)
	case *ast.ThematicBreak, *ast.HTMLBlock:
		// nothing to draw
	default:
		f.blocks(nd, level)
	}
}

func (f *flattener) list(list *ast.List, level int) {
	num := list.Start
	if num == 0 {
		num = 1
	}
	indent := strings.Repeat(listIndent, level)
	for it := list.FirstChild(); it != nil; it = it.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(num) + string(list.Marker) + " "
			num++
		}
		first := true
		for c := it.FirstChild(); c != nil; c = c.NextSibling() {
			switch cn := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if first {
					f.add(indent+marker, strings.TrimSpace(f.inline(c)))
					first = false
					continue
				}
				f.add(indent+strings.Repeat(" ", len([]rune(marker))), strings.TrimSpace(f.inline(c)))
			case *ast.List:
				if first {
					f.lines = append(f.lines, indent+strings.TrimSpace(marker))
					first = false
				}
				f.list(cn, level+1)
			default:
				first = false
				f.block(cn, level+1)
			}
		}
		if first {
			f.lines = append(f.lines, indent+strings.TrimSpace(marker))
		}
	}
}

func (f *flattener) table(tbl *extensionAST.Table, indent string) {
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(f.inline(cell)))
		}
		f.lines = append(f.lines, indent+strings.Join(cells, " | "))
	}
}

// inline collects the text of n's inline children. Soft breaks become a
// space and hard breaks a newline.
func (f *flattener) inline(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch nd := c.(type) {
		case *ast.Text:
			b.Write(nd.Segment.Value(f.src))
			switch {
			case nd.HardLineBreak():
				b.WriteByte('\n')
			case nd.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(nd.Value)
		case *ast.AutoLink:
			b.Write(nd.Label(f.src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
