// Package highlight implements the syntax-highlighting subsystem (C6): a
// chroma-backed tokenizer keyed by the fenced-code routing table, a
// bounded content-addressed cache of rendered HTML, and source-fragment
// resolution for xmldocid fences against a pre-extracted fragment store.
package highlight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/brackenfield/quill/internal/markdown"
)

// DefaultLineTimeout bounds a single tokenization call (§5: "TextMate
// tokenization is bounded, default 5s, per line" — chroma tokenizes a
// whole snippet per call, so the timeout is applied per Highlight call).
const DefaultLineTimeout = 5 * time.Second

// InvalidationDebounce is the debounce interval used when wiring a file
// watcher to fragment-store reloads (§5: "highlighter uses 500ms").
const InvalidationDebounce = 500 * time.Millisecond

// DefaultCacheSize bounds the content-addressed rendered-HTML cache.
const DefaultCacheSize = 512

// Config configures a Subsystem.
type Config struct {
	// FragmentsFile is the path to a JSON sidecar of
	// documentation-id -> source-fragment pairs, the re-architected
	// stand-in for the source-solution loader (§4.6a). Empty disables
	// xmldocid resolution entirely.
	FragmentsFile string
	// ExecCommand, if set, is invoked (via "sh -c") with a fragment's
	// source on stdin to realize the executable xmldocid form; its
	// stdout is captured. Empty makes the executable form unsupported,
	// which is accepted as correct per the design notes.
	ExecCommand string
	// LineTimeout bounds a single tokenization call. Zero uses
	// DefaultLineTimeout.
	LineTimeout time.Duration
	// CacheSize bounds the rendered-HTML cache. Zero uses
	// DefaultCacheSize.
	CacheSize int
}

// Subsystem implements markdown.CodeHighlighter, dispatching fenced code
// blocks through the routing table in §4.5.
type Subsystem struct {
	cfg       Config
	fragments *FragmentStore
	cache     *contentCache
}

// NewSubsystem constructs a Subsystem. The fragment store is loaded
// eagerly from cfg.FragmentsFile; a missing file is not an error (it
// simply means no xmldocid fences will resolve).
func NewSubsystem(cfg Config) (*Subsystem, error) {
	fragments, err := LoadFragmentStore(cfg.FragmentsFile, cfg.ExecCommand)
	if err != nil {
		return nil, fmt.Errorf("highlight: load fragment store: %w", err)
	}
	return &Subsystem{
		cfg:       cfg,
		fragments: fragments,
		cache:     newContentCache(cfg.CacheSize),
	}, nil
}

// ReloadFragments re-reads the fragment store from disk. Intended to be
// called from a debounced watcher callback (§4.1, §5).
func (s *Subsystem) ReloadFragments() error {
	return s.fragments.Reload()
}

// Highlight renders source according to route, per the fenced-code
// routing table (§4.5).
func (s *Subsystem) Highlight(ctx context.Context, route markdown.FenceRoute, source string) (string, error) {
	lang := strings.ToLower(route.Language)

	if route.XMLDocID {
		return s.highlightXMLDocID(ctx, route, source), nil
	}

	return s.highlightByLang(lang, source), nil
}

// highlightByLang is the fenced-code routing table (§4.5): it dispatches a
// resolved language tag to its dedicated tokenizer, falling back to the
// generic chroma lexer. Both Highlight and highlightXMLDocID's re-dispatch
// of an executed/resolved fragment's output go through this one switch, so
// a language alias (gbnf, csharp, ...) is never routed differently
// depending on whether it arrived as a plain fence or an xmldocid fragment.
func (s *Subsystem) highlightByLang(lang, source string) string {
	switch lang {
	case "", "text":
		return rawCodeBlock(lang, source)
	case "csharp", "c#", "cs":
		return s.highlightChroma("csharp", source)
	case "vb", "vbnet":
		return s.highlightChroma("vb.net", source)
	case "gbnf":
		return highlightGBNF(source)
	case "bash", "shell":
		return s.highlightChroma("bash", source)
	default:
		return s.highlightChroma(lang, source)
	}
}

// highlightXMLDocID resolves source as a documentation ID against the
// fragment store (§4.6a), optionally executing it (§4.6, "executable
// form"), then re-dispatches the resolved text through the same routing
// table as a plain fence of the <lang> part of the xmldocid language tag.
func (s *Subsystem) highlightXMLDocID(ctx context.Context, route markdown.FenceRoute, docID string) string {
	docID = strings.TrimSpace(docID)
	fragment, ok := s.fragments.Resolve(docID, route.BodyOnly)
	if !ok {
		return rawCodeBlock(route.Language, notFoundPlaceholder)
	}

	if route.DataAttr != "" {
		executed, err := s.fragments.Execute(ctx, fragment, route.DataAttr)
		if err != nil {
			return rawCodeBlock(route.Language, notFoundPlaceholder)
		}
		fragment = executed
	}

	lang := strings.ToLower(route.Language)
	if idx := strings.Index(lang, ":"); idx >= 0 {
		lang = lang[:idx]
	}
	return s.highlightByLang(lang, fragment)
}

// notFoundPlaceholder is the literal placeholder text for an unresolved
// documentation ID (§7, HighlighterError).
const notFoundPlaceholder = "Code not found for specified documentation ID."

// highlightChroma tokenizes source with the named language's chroma
// lexer and renders it through the scope-to-CSS-class table, subject to a
// per-call timeout and a content-addressed cache. A missing lexer or a
// timed-out tokenization both fall back to an unhighlighted code block.
func (s *Subsystem) highlightChroma(lang, source string) string {
	key := cacheKey(lang, source)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	out := s.tokenizeAndRender(lang, source)
	s.cache.put(key, out)
	return out
}

func (s *Subsystem) tokenizeAndRender(lang, source string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Match("file." + lang)
	}
	if lexer == nil {
		return rawCodeBlock(lang, source)
	}
	lexer = chroma.Coalesce(lexer)

	timeout := s.cfg.LineTimeout
	if timeout <= 0 {
		timeout = DefaultLineTimeout
	}

	type result struct {
		tokens []chroma.Token
		err    error
	}
	done := make(chan result, 1)
	go func() {
		iterator, err := lexer.Tokenise(nil, source)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{tokens: iterator.Tokens()}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return rawCodeBlock(lang, source)
		}
		return renderTokens(lang, r.tokens)
	case <-time.After(timeout):
		return rawCodeBlock(lang, source)
	}
}

func renderTokens(lang string, tokens []chroma.Token) string {
	var sb strings.Builder
	sb.WriteString(`<pre class="chroma"><code class="language-`)
	sb.WriteString(html.EscapeString(lang))
	sb.WriteString(`">`)
	for _, tok := range tokens {
		escaped := html.EscapeString(tok.Value)
		class := cssClassFor(tok.Type)
		if class == "" {
			sb.WriteString(escaped)
			continue
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(class)
		sb.WriteString(`">`)
		sb.WriteString(escaped)
		sb.WriteString(`</span>`)
	}
	sb.WriteString("</code></pre>")
	return sb.String()
}

// rawCodeBlock emits an unhighlighted code block, e.g. for the "text"
// language and for languages with no matching lexer (§8 scenario 7).
func rawCodeBlock(lang, source string) string {
	class := "code"
	if lang != "" {
		class = "language-" + lang + " code"
	}
	return fmt.Sprintf("<pre><code class=%q>%s</code></pre>", class, html.EscapeString(source))
}

func cacheKey(lang, source string) string {
	h := sha256.Sum256([]byte(lang + "\x00" + source))
	return hex.EncodeToString(h[:])
}
