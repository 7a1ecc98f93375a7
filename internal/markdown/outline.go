package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
)

// buildOutline walks doc in document order and assembles the heading tree
// described by the parser algorithm: each heading becomes a node whose
// children are the headings one level deeper that appear before the next
// heading of equal-or-shallower level. Level-1 headings (reserved for the
// page title) reset nesting back to the virtual root but are not
// themselves exposed as nodes.
func buildOutline(doc ast.Node, source []byte) []*HeadingNode {
	type frame struct {
		level    int
		children *[]*HeadingNode
	}

	var root []*HeadingNode
	stack := []frame{{level: 1, children: &root}}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		if h.Level == 1 {
			stack = stack[:1]
			return ast.WalkSkipChildren, nil
		}

		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		node := &HeadingNode{
			Title: headingText(h, source),
			ID:    headingID(h),
			Level: h.Level,
		}
		top := stack[len(stack)-1]
		*top.children = append(*top.children, node)
		stack = append(stack, frame{level: h.Level, children: &node.Children})

		return ast.WalkSkipChildren, nil
	})

	return root
}

// headingText renders the plain-text content of a heading node.
func headingText(h *ast.Heading, source []byte) string {
	var buf bytes.Buffer
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		writeText(&buf, c, source)
	}
	return buf.String()
}

func writeText(buf *bytes.Buffer, n ast.Node, source []byte) {
	switch v := n.(type) {
	case *ast.Text:
		buf.Write(v.Segment.Value(source))
	case *ast.String:
		buf.Write(v.Value)
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			writeText(buf, c, source)
		}
	}
}

// headingID reads the id attribute goldmark's auto-heading-id parser
// option assigns to every heading node.
func headingID(h *ast.Heading) string {
	if v, ok := h.AttributeString("id"); ok {
		if b, ok := v.([]byte); ok {
			return string(b)
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
