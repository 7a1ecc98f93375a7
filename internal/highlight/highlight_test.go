package highlight

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brackenfield/quill/internal/markdown"
)

func newTestSubsystem(t *testing.T, cfg Config) *Subsystem {
	t.Helper()
	s, err := NewSubsystem(cfg)
	if err != nil {
		t.Fatalf("NewSubsystem() error: %v", err)
	}
	return s
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	s := newTestSubsystem(t, Config{})
	out, err := s.Highlight(context.Background(), markdown.FenceRoute{Language: "unknownlang"}, "code")
	if err != nil {
		t.Fatalf("Highlight() error: %v", err)
	}
	want := `<pre><code class="language-unknownlang code">code</code></pre>`
	if out != want {
		t.Errorf("Highlight() = %q, want %q", out, want)
	}
}

func TestHighlightTextLanguageIsRaw(t *testing.T) {
	s := newTestSubsystem(t, Config{})
	out, err := s.Highlight(context.Background(), markdown.FenceRoute{Language: "text"}, "plain")
	if err != nil {
		t.Fatalf("Highlight() error: %v", err)
	}
	if strings.Contains(out, "<span") {
		t.Errorf("Highlight() for text language should not contain spans: %q", out)
	}
}

func TestHighlightKnownLanguageProducesSpans(t *testing.T) {
	s := newTestSubsystem(t, Config{})
	out, err := s.Highlight(context.Background(), markdown.FenceRoute{Language: "go"}, "func main() {}\n")
	if err != nil {
		t.Fatalf("Highlight() error: %v", err)
	}
	if !strings.Contains(out, `class="pl-k"`) {
		t.Errorf("Highlight() for go should contain a keyword span: %q", out)
	}
}

func TestHighlightChromaCachesResult(t *testing.T) {
	s := newTestSubsystem(t, Config{})
	first := s.highlightChroma("go", "package main")
	second := s.highlightChroma("go", "package main")
	if first != second {
		t.Errorf("cached result differs: %q != %q", first, second)
	}
	if _, ok := s.cache.get(cacheKey("go", "package main")); !ok {
		t.Error("expected cache to contain entry after highlightChroma")
	}
}

func TestFragmentStoreResolveBodyOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragments.json")
	data, _ := json.Marshal(map[string]string{
		"M:Demo.Sample.Run": "public void Run()\n{\n    Console.WriteLine(\"hi\");\n}",
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	fs, err := LoadFragmentStore(path, "")
	if err != nil {
		t.Fatalf("LoadFragmentStore() error: %v", err)
	}

	full, ok := fs.Resolve("M:Demo.Sample.Run", false)
	if !ok {
		t.Fatal("Resolve() found = false, want true")
	}
	if !strings.Contains(full, "public void Run") {
		t.Errorf("full fragment missing signature: %q", full)
	}

	body, ok := fs.Resolve("M:Demo.Sample.Run", true)
	if !ok {
		t.Fatal("Resolve(bodyOnly) found = false, want true")
	}
	if strings.Contains(body, "public void Run") {
		t.Errorf("body-only fragment should not include the signature: %q", body)
	}
	if !strings.Contains(body, "Console.WriteLine") {
		t.Errorf("body-only fragment missing body: %q", body)
	}
}

func TestFragmentStoreMissingIDNotFound(t *testing.T) {
	fs, err := LoadFragmentStore("", "")
	if err != nil {
		t.Fatalf("LoadFragmentStore() error: %v", err)
	}
	if _, ok := fs.Resolve("M:Missing.Thing", false); ok {
		t.Error("Resolve() found = true, want false for empty store")
	}
}

func TestHighlightXMLDocIDExecutedGBNFUsesDedicatedTokenizer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragments.json")
	data, _ := json.Marshal(map[string]string{
		"G:Demo.Rule": `root ::= "hello"`,
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	s := newTestSubsystem(t, Config{
		FragmentsFile: path,
		ExecCommand:   `awk '{print "gbnf\t" $0}'`,
	})

	route := markdown.FenceRoute{Language: "gbnf", XMLDocID: true, DataAttr: "gbnf"}
	out, err := s.Highlight(context.Background(), route, "G:Demo.Rule")
	if err != nil {
		t.Fatalf("Highlight() error: %v", err)
	}
	if !strings.Contains(out, `<span class="pl-en">root</span>`) {
		t.Errorf("Highlight() = %q, want the GBNF tokenizer's rule-name span, not a chroma/raw fallback", out)
	}
	if strings.Contains(out, notFoundPlaceholder) {
		t.Errorf("Highlight() = %q, want the executed fragment, not a not-found placeholder", out)
	}
}

func TestHighlightXMLDocIDNotFoundUsesPlaceholder(t *testing.T) {
	s := newTestSubsystem(t, Config{})
	out, err := s.Highlight(context.Background(), markdown.FenceRoute{Language: "csharp", XMLDocID: true}, "M:Does.Not.Exist")
	if err != nil {
		t.Fatalf("Highlight() error: %v", err)
	}
	if !strings.Contains(out, notFoundPlaceholder) {
		t.Errorf("Highlight() = %q, want placeholder text present", out)
	}
}
