package highlight

import (
	"html"
	"regexp"
	"strings"
)

// gbnfRuleRe matches a rule name at the start of a line, just before its
// "::=" definition operator.
var gbnfRuleRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*::=`)

// gbnfTokenRe matches a comment or a quoted string literal, the two token
// kinds the dedicated GBNF tokenizer recognizes.
var gbnfTokenRe = regexp.MustCompile(`#.*|"(?:\\.|[^"\\])*"`)

// highlightGBNF is the dedicated token highlighter for GBNF grammar files
// (§4.5): it recognizes rule names, quoted literals, and comments, and
// leaves everything else (operators, references) unstyled but escaped.
func highlightGBNF(source string) string {
	var sb strings.Builder
	sb.WriteString(`<pre class="chroma"><code class="language-gbnf">`)
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		sb.WriteString(highlightGBNFLine(line))
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("</code></pre>")
	return sb.String()
}

func highlightGBNFLine(line string) string {
	rest := line
	var sb strings.Builder
	if m := gbnfRuleRe.FindStringSubmatch(line); m != nil {
		sb.WriteString(`<span class="pl-en">`)
		sb.WriteString(html.EscapeString(m[1]))
		sb.WriteString(`</span>`)
		rest = line[len(m[1]):]
	}

	last := 0
	for _, loc := range gbnfTokenRe.FindAllStringIndex(rest, -1) {
		sb.WriteString(html.EscapeString(rest[last:loc[0]]))
		tok := rest[loc[0]:loc[1]]
		class := "pl-s"
		if strings.HasPrefix(tok, "#") {
			class = "pl-c"
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(class)
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(tok))
		sb.WriteString(`</span>`)
		last = loc[1]
	}
	sb.WriteString(html.EscapeString(rest[last:]))
	return sb.String()
}
