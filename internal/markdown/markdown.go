package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Parser converts markdown source into rendered HTML, a heading outline,
// and a typed front matter value, driving the extension pipeline fixed by
// §4.4: pipeline tables, auto-links, task lists, footnotes, GFM alerts
// (folded into the container extension), the admonition/tab container
// extension, the code-highlight renderer, and a heading-outline collector.
type Parser struct {
	md goldmark.Markdown
}

// NewParser builds a Parser. highlighter backs the code-highlight renderer
// for every fenced code block and must not be nil.
func NewParser(highlighter CodeHighlighter) *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			&fencedCodeExtender{highlighter: highlighter},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Parser{md: md}
}

// Options configures optional hooks around a single Parse call.
type Options[F FrontMatter] struct {
	// PreProcess runs on the raw markdown body, after front matter has
	// been stripped, before AST parsing. Identity by default.
	PreProcess func(body string) string
	// PostProcess runs on the rendered (front matter, html) pair before
	// Parse returns its Result. Identity by default.
	PostProcess func(fm F, renderedHTML string) string
}

// Result is everything Parse produces for one source file.
type Result[F FrontMatter] struct {
	FrontMatter F
	HTML        string
	Outline     []*HeadingNode
}

// Parse runs the markdown-parser algorithm (§4.4) over raw source bytes:
// front matter extraction, the pre-process hook, the container/alert
// source transform, AST parsing and rendering (with fenced code routed
// through the configured highlighter), heading-outline extraction, and the
// post-process hook.
func Parse[F FrontMatter](p *Parser, raw []byte, newFrontMatter func() F, opts Options[F]) (Result[F], error) {
	fm, body, err := ParseFrontMatter(raw, newFrontMatter)
	if err != nil {
		return Result[F]{}, fmt.Errorf("markdown: parse front matter: %w", err)
	}

	bodyStr := string(body)
	if opts.PreProcess != nil {
		bodyStr = opts.PreProcess(bodyStr)
	}

	transformed := applyContainers([]byte(bodyStr))

	doc := p.md.Parser().Parse(text.NewReader(transformed))
	outline := buildOutline(doc, transformed)

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, transformed, doc); err != nil {
		return Result[F]{}, fmt.Errorf("markdown: render: %w", err)
	}

	rendered := buf.String()
	if opts.PostProcess != nil {
		rendered = opts.PostProcess(fm, rendered)
	}

	return Result[F]{FrontMatter: fm, HTML: rendered, Outline: outline}, nil
}
