package markdown

import (
	"context"
	"strings"
	"testing"
)

type testFrontMatter struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
	Draft bool     `yaml:"draft"`
}

func (f *testFrontMatter) IsDraft() bool          { return f.Draft }
func (f *testFrontMatter) FrontMatterTags() []string { return f.Tags }
func (f *testFrontMatter) ToMetadata() Metadata {
	return NewMetadata(f.Title, "")
}

func newTestFrontMatter() *testFrontMatter { return &testFrontMatter{} }

type stubHighlighter struct{}

func (stubHighlighter) Highlight(ctx context.Context, route FenceRoute, source string) (string, error) {
	return "<pre><code class=\"language-" + route.Language + " code\">" + source + "</code></pre>", nil
}

func TestParseFrontMatterYAML(t *testing.T) {
	raw := []byte("---\ntitle: Hello\ndate: 2025-01-15\ntags: [\"intro\", \"Intro\"]\n---\n# H1\n## H2\n")

	fm, body, err := ParseFrontMatter(raw, newTestFrontMatter)
	if err != nil {
		t.Fatalf("ParseFrontMatter() error: %v", err)
	}
	if fm.Title != "Hello" {
		t.Errorf("Title = %q, want %q", fm.Title, "Hello")
	}
	if len(fm.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", fm.Tags)
	}
	if !strings.Contains(string(body), "# H1") {
		t.Errorf("body = %q, want to contain %q", body, "# H1")
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	raw := []byte("# Just a heading\n")
	fm, body, err := ParseFrontMatter(raw, newTestFrontMatter)
	if err != nil {
		t.Fatalf("ParseFrontMatter() error: %v", err)
	}
	if fm.Title != "" {
		t.Errorf("Title = %q, want empty", fm.Title)
	}
	if string(body) != string(raw) {
		t.Errorf("body = %q, want unchanged input", body)
	}
}

func TestParseOutlineSingleH2(t *testing.T) {
	raw := []byte("---\ntitle: Hello\n---\n# H1\n## H2\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Outline) != 1 {
		t.Fatalf("Outline has %d nodes, want 1", len(result.Outline))
	}
	if result.Outline[0].Title != "H2" {
		t.Errorf("Outline[0].Title = %q, want %q", result.Outline[0].Title, "H2")
	}
	if result.Outline[0].ID != "h2" {
		t.Errorf("Outline[0].ID = %q, want %q", result.Outline[0].ID, "h2")
	}
}

func TestParseOutlineNesting(t *testing.T) {
	raw := []byte("# Title\n## A\n### A1\n### A2\n## B\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Outline) != 2 {
		t.Fatalf("Outline has %d top-level nodes, want 2", len(result.Outline))
	}
	if result.Outline[0].Title != "A" || len(result.Outline[0].Children) != 2 {
		t.Fatalf("Outline[0] = %+v, want A with 2 children", result.Outline[0])
	}
	if result.Outline[1].Title != "B" {
		t.Errorf("Outline[1].Title = %q, want %q", result.Outline[1].Title, "B")
	}
}

func TestParseAdmonition(t *testing.T) {
	raw := []byte("/// warning | Careful\nThis is risky.\n///\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !strings.Contains(result.HTML, `class="admonition warning"`) {
		t.Errorf("HTML missing admonition wrapper: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, "Careful") {
		t.Errorf("HTML missing title: %s", result.HTML)
	}
}

func TestParseUnrecognizedContainerNameLeftAsText(t *testing.T) {
	raw := []byte("/// foobar\nJust a paragraph with slashes above it.\n///\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if strings.Contains(result.HTML, "admonition") {
		t.Errorf("HTML should not open an admonition for an unrecognized name: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, "foobar") {
		t.Errorf("HTML should keep the fence line as literal text: %s", result.HTML)
	}
}

func TestParseAdjacentTabsGrouped(t *testing.T) {
	raw := []byte("/// tab | Go\n```go\nfmt.Println(\"hi\")\n```\n///\n/// tab | Python\n```python\nprint(\"hi\")\n```\n///\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !strings.Contains(result.HTML, `class="tabs-container"`) {
		t.Errorf("HTML missing tabs-container wrapper: %s", result.HTML)
	}
	if strings.Count(result.HTML, `class="tab"`) != 2 {
		t.Errorf("HTML should contain exactly 2 tab panels: %s", result.HTML)
	}
}

func TestParseGFMAlert(t *testing.T) {
	raw := []byte("> [!NOTE]\n> Something worth knowing.\n")
	p := NewParser(stubHighlighter{})

	result, err := Parse(p, raw, newTestFrontMatter, Options[*testFrontMatter]{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !strings.Contains(result.HTML, `class="admonition note"`) {
		t.Errorf("HTML missing note admonition from GFM alert: %s", result.HTML)
	}
}

func TestRouteFromInfo(t *testing.T) {
	tests := []struct {
		info string
		want FenceRoute
	}{
		{"csharp", FenceRoute{Language: "csharp"}},
		{"csharp:xmldocid", FenceRoute{Language: "csharp", XMLDocID: true}},
		{"csharp:xmldocid,bodyonly", FenceRoute{Language: "csharp", XMLDocID: true, BodyOnly: true}},
		{`gbnf:xmldocid data="gbnf"`, FenceRoute{Language: "gbnf", XMLDocID: true, DataAttr: "gbnf"}},
	}
	for _, tt := range tests {
		got := routeFromInfo(tt.info)
		if got != tt.want {
			t.Errorf("routeFromInfo(%q) = %+v, want %+v", tt.info, got, tt.want)
		}
	}
}
