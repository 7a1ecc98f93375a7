package engine

import (
	"time"

	"github.com/brackenfield/quill/internal/markdown"
)

// dateFormats mirrors the front matter date shapes a hand-authored YAML
// block is likely to use; the first one that parses wins.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339,
}

// PageFrontMatter is the front matter schema every collection registered
// through Engine shares. A consumer embedding this module with its own UI
// layer is free to define a different markdown.FrontMatter implementation
// per collection; the CLI entry point wires all collections to this one.
type PageFrontMatter struct {
	Title       string   `yaml:"title"       toml:"title"`
	Description string   `yaml:"description" toml:"description"`
	Date        string   `yaml:"date"        toml:"date"`
	Lastmod     string   `yaml:"lastmod"     toml:"lastmod"`
	Tags        []string `yaml:"tags"        toml:"tags"`
	Order       int      `yaml:"order"       toml:"order"`
	Draft       bool     `yaml:"draft"       toml:"draft"`
	RSSItem     *bool    `yaml:"rss_item"    toml:"rss_item"`
}

var _ markdown.FrontMatter = (*PageFrontMatter)(nil)
var _ markdown.Tagged = (*PageFrontMatter)(nil)

// IsDraft reports the draft flag verbatim.
func (f *PageFrontMatter) IsDraft() bool { return f.Draft }

// ToMetadata projects the front matter down to markdown.Metadata, parsing
// Date/Lastmod with the first matching layout in dateFormats and
// defaulting RSSItem to true when the front matter omits rss_item.
func (f *PageFrontMatter) ToMetadata() markdown.Metadata {
	m := markdown.NewMetadata(f.Title, f.Description)
	if f.Order != 0 {
		m.Order = f.Order
	}
	if lm := parseDate(f.Lastmod); !lm.IsZero() {
		m.LastModified = lm
	} else if d := parseDate(f.Date); !d.IsZero() {
		m.LastModified = d
	}
	if f.RSSItem != nil {
		m.RSSItem = *f.RSSItem
	}
	return m
}

// FrontMatterTags implements markdown.Tagged.
func (f *PageFrontMatter) FrontMatterTags() []string { return f.Tags }

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
