package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// openFenceRe matches the opening fence of an admonition/tab container:
// three or more slashes, a kind word, and an optional "| title" suffix.
var openFenceRe = regexp.MustCompile(`^ {0,3}/{3,}\s*(\w+)(?:\s*\|\s*([^\r\n]+?))?\s*$`)

// closeFenceRe matches a bare closing fence.
var closeFenceRe = regexp.MustCompile(`^/{3,}\s*$`)

// alertOpenRe matches the opening line of a GFM alert blockquote.
var alertOpenRe = regexp.MustCompile(`^>\s*\[!(NOTE|TIP|WARNING|CAUTION|DANGER|IMPORTANT)\]\s*$`)

var admonitionShortcuts = map[string]bool{
	"note": true, "tip": true, "warning": true, "caution": true, "danger": true, "info": true,
}

// containerKind maps a fence's kind word to the block kind it opens,
// rejecting anything outside the recognized names (§4.4a): "tab",
// "admonition", and the shortcut admonitions in admonitionShortcuts. An
// unrecognized word leaves the fence line to fall through as plain text.
func containerKind(name string) (string, bool) {
	switch {
	case name == "tab":
		return "tab", true
	case name == "admonition", admonitionShortcuts[name]:
		return "admonition", true
	default:
		return "", false
	}
}

// containerBlock is one node of the tree produced by parsing admonition
// and tab container fences out of a page's markdown body.
type containerBlock struct {
	kind     string // "text", "admonition", or "tab"
	name     string // admonition kind (note/tip/.../admonition) when kind=="admonition"
	title    string
	lines    []string
	children []containerBlock
}

// applyContainers rewrites admonition/tab fences and GFM alert blockquotes
// into the HTML the container extension specifies (§4.4a), surrounding
// each wrapper tag with blank lines so goldmark's CommonMark HTML-block
// rule treats the tags as raw passthrough while leaving the markdown
// between them to be parsed normally. This realizes the container
// extension as a source-level transform ahead of AST parsing rather than
// a native block parser, reusing the renderer's existing raw-HTML
// passthrough (html.WithUnsafe) instead of a bespoke parser.BlockParser.
func applyContainers(source []byte) []byte {
	lines := convertAlerts(strings.Split(string(source), "\n"))
	blocks, _ := parseContainerBlocks(lines, 0)
	return []byte(renderContainerBlocks(blocks))
}

// convertAlerts rewrites GitHub-style alert blockquotes
// (`> [!NOTE]` ... `>`...) into the same fence syntax admonitions use, so
// both forms flow through one rendering path.
func convertAlerts(lines []string) []string {
	var out []string
	for i := 0; i < len(lines); {
		m := alertOpenRe.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			i++
			continue
		}
		out = append(out, "/// "+alertKind(m[1]))
		i++
		for i < len(lines) && strings.HasPrefix(lines[i], ">") {
			content := strings.TrimPrefix(strings.TrimPrefix(lines[i], ">"), " ")
			out = append(out, content)
			i++
		}
		out = append(out, "///")
	}
	return out
}

func alertKind(tag string) string {
	if tag == "IMPORTANT" {
		return "warning"
	}
	return strings.ToLower(tag)
}

// parseContainerBlocks recursively splits lines starting at pos into a
// sequence of text runs and container blocks, returning the position just
// past the fence that closed the current (possibly virtual) container.
func parseContainerBlocks(lines []string, pos int) ([]containerBlock, int) {
	var blocks []containerBlock
	var text []string

	flush := func() {
		if len(text) > 0 {
			blocks = append(blocks, containerBlock{kind: "text", lines: append([]string(nil), text...)})
			text = nil
		}
	}

	for pos < len(lines) {
		line := lines[pos]
		if closeFenceRe.MatchString(line) {
			flush()
			return blocks, pos + 1
		}
		if m := openFenceRe.FindStringSubmatch(line); m != nil {
			name := strings.ToLower(m[1])
			if kind, ok := containerKind(name); ok {
				flush()
				title := strings.TrimSpace(m[2])
				children, next := parseContainerBlocks(lines, pos+1)
				blocks = append(blocks, containerBlock{kind: kind, name: name, title: title, children: children})
				pos = next
				continue
			}
		}
		text = append(text, line)
		pos++
	}
	flush()
	return blocks, pos
}

// renderContainerBlocks turns a parsed block sequence back into markdown
// text, with admonition and tab blocks rewritten as raw HTML wrappers and
// runs of adjacent top-level tab blocks grouped into one tabs-container.
func renderContainerBlocks(blocks []containerBlock) string {
	var sb strings.Builder
	for i := 0; i < len(blocks); {
		b := blocks[i]
		switch b.kind {
		case "text":
			sb.WriteString(strings.Join(b.lines, "\n"))
			sb.WriteString("\n")
			i++
		case "tab":
			j := i
			var tabs []containerBlock
			for j < len(blocks) && blocks[j].kind == "tab" {
				tabs = append(tabs, blocks[j])
				j++
			}
			sb.WriteString(renderTabsContainer(tabs))
			i = j
		default:
			sb.WriteString(renderAdmonition(b))
			i++
		}
	}
	return sb.String()
}

func renderAdmonition(b containerBlock) string {
	title := b.title
	if title == "" {
		title = capitalize(b.name)
	}
	var sb strings.Builder
	sb.WriteString("\n<div class=\"admonition " + b.name + "\">\n\n")
	sb.WriteString("<p class=\"admonition-title\">" + html.EscapeString(title) + "</p>\n\n")
	sb.WriteString(renderContainerBlocks(b.children))
	sb.WriteString("\n</div>\n\n")
	return sb.String()
}

func renderTabsContainer(tabs []containerBlock) string {
	var sb strings.Builder
	sb.WriteString("\n<div class=\"tabs-container\">\n\n")
	sb.WriteString("<div class=\"tablist\" role=\"tablist\">\n\n")
	for i, tab := range tabs {
		title := tab.title
		if title == "" {
			title = capitalize(tab.name)
		}
		selected := ""
		if i == 0 {
			selected = " selected"
		}
		sb.WriteString("<button class=\"tab-button" + selected + "\" data-tab-index=\"" + strconv.Itoa(i) + "\">" + html.EscapeString(title) + "</button>\n\n")
	}
	sb.WriteString("</div>\n\n")
	for i, tab := range tabs {
		title := tab.title
		if title == "" {
			title = capitalize(tab.name)
		}
		hidden := ""
		if i != 0 {
			hidden = " hidden"
		}
		sb.WriteString("\n<div class=\"tab\" data-title=\"" + html.EscapeString(title) + "\" data-tab-index=\"" + strconv.Itoa(i) + "\"" + hidden + ">\n\n")
		sb.WriteString(renderContainerBlocks(tab.children))
		sb.WriteString("\n</div>\n\n")
	}
	sb.WriteString("\n</div>\n\n")
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

