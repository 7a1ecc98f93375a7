package markdown

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	yamlDelimiter = []byte("---")
	tomlDelimiter = []byte("+++")
)

// ParseFrontMatter detects a front matter block at the head of raw and
// decodes it into a new F. newFrontMatter must return a pointer to a zero
// value (F is expected to be a pointer type implementing FrontMatter). If
// raw has no recognizable front matter delimiter, the zero F is returned
// unchanged and the whole input is treated as body.
func ParseFrontMatter[F FrontMatter](raw []byte, newFrontMatter func() F) (F, []byte, error) {
	fm := newFrontMatter()

	trimmed := bytes.TrimLeft(raw, " \t\n\r")

	var delimiter []byte
	var format string
	switch {
	case bytes.HasPrefix(trimmed, yamlDelimiter):
		delimiter, format = yamlDelimiter, "yaml"
	case bytes.HasPrefix(trimmed, tomlDelimiter):
		delimiter, format = tomlDelimiter, "toml"
	default:
		return fm, raw, nil
	}

	rest := trimmed[len(delimiter):]
	nlIdx := bytes.IndexByte(rest, '\n')
	if nlIdx == -1 {
		// Only the opening delimiter line; nothing to parse.
		return fm, raw, nil
	}
	rest = rest[nlIdx+1:]

	before, after, ok := bytes.Cut(rest, delimiter)
	if !ok {
		return fm, nil, fmt.Errorf("markdown: closing front matter delimiter %q not found", string(delimiter))
	}

	block := before
	nlIdx = bytes.IndexByte(after, '\n')
	var body []byte
	if nlIdx == -1 {
		body = nil
	} else {
		body = after[nlIdx+1:]
	}

	if len(bytes.TrimSpace(block)) == 0 {
		return fm, body, nil
	}

	switch format {
	case "yaml":
		if err := yaml.Unmarshal(block, fm); err != nil {
			return fm, nil, fmt.Errorf("markdown: parse YAML front matter: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(block, fm); err != nil {
			return fm, nil, fmt.Errorf("markdown: parse TOML front matter: %w", err)
		}
	}

	return fm, body, nil
}
