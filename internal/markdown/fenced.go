package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// CodeHighlighter renders a fenced code block's source into highlighted
// HTML given its routing decision from the fence info string (§4.5). It is
// implemented by the highlight subsystem (C6); the markdown parser only
// knows how to extract a route and a source string.
type CodeHighlighter interface {
	Highlight(ctx context.Context, route FenceRoute, source string) (string, error)
}

// FenceRoute is the parsed form of a fenced code block's info string.
type FenceRoute struct {
	// Language is the base language token, with any ":xmldocid[,bodyonly]"
	// modifier already stripped off.
	Language string
	XMLDocID bool
	BodyOnly bool
	// DataAttr is the value of a data="..." attribute on the fence, used
	// by the executable xmldocid form to select which output to splice
	// back in.
	DataAttr string
}

var fenceAttrRe = regexp.MustCompile(`(\w+)\s*=\s*"([^"]*)"`)

// parseFenceInfo splits a fence info string into its first whitespace-
// delimited token and any trailing Markdig-style key="value" attributes.
func parseFenceInfo(info string) (string, map[string]string) {
	fields := strings.Fields(info)
	attrs := make(map[string]string)
	if len(fields) == 0 {
		return "", attrs
	}
	token := fields[0]
	rest := strings.TrimSpace(info[len(token):])
	for _, m := range fenceAttrRe.FindAllStringSubmatch(rest, -1) {
		attrs[m[1]] = m[2]
	}
	return token, attrs
}

// routeFromInfo builds a FenceRoute from a raw fence info string.
func routeFromInfo(info string) FenceRoute {
	token, attrs := parseFenceInfo(info)
	route := FenceRoute{Language: token, DataAttr: attrs["data"]}
	if idx := strings.Index(token, ":"); idx >= 0 {
		route.Language = token[:idx]
		for _, mod := range strings.Split(token[idx+1:], ",") {
			switch strings.TrimSpace(mod) {
			case "xmldocid":
				route.XMLDocID = true
			case "bodyonly":
				route.BodyOnly = true
			}
		}
	}
	return route
}

// fencedCodeExtender registers fencedCodeRenderer as the node renderer for
// fenced code blocks, overriding goldmark's default <pre><code> renderer so
// every block is dispatched through the fenced-code routing table.
type fencedCodeExtender struct {
	highlighter CodeHighlighter
}

func (e *fencedCodeExtender) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&fencedCodeRenderer{highlighter: e.highlighter}, 100),
	))
}

type fencedCodeRenderer struct {
	highlighter CodeHighlighter
}

func (r *fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *fencedCodeRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := n.(*ast.FencedCodeBlock)

	var info string
	if block.Info != nil {
		info = string(block.Info.Segment.Value(source))
	}
	route := routeFromInfo(info)

	var code bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		code.Write(lines.At(i).Value(source))
	}

	rendered, err := r.highlighter.Highlight(context.Background(), route, code.String())
	if err != nil {
		rendered = fmt.Sprintf(
			"<pre><code class=\"language-%s code\">%s</code></pre>",
			html.EscapeString(route.Language),
			html.EscapeString(code.String()),
		)
	}
	if _, err := w.WriteString(rendered); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
