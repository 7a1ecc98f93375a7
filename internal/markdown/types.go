// Package markdown parses Markdown source files with typed front matter
// into rendered HTML plus a heading outline, running a fixed extension
// pipeline (tables, auto-links, task lists, footnotes, GFM alerts, a
// container extension for admonitions/tabs, and syntax-highlighted code).
package markdown

import "time"

const maxOrder = int(^uint(0) >> 1)

// FrontMatter is the capability every caller-supplied front matter type
// must provide. A content collection is parameterized by a concrete type
// implementing this interface.
type FrontMatter interface {
	// IsDraft reports whether the page should be excluded from all
	// downstream structures (pages, tags, TOC, feeds, output).
	IsDraft() bool
	// ToMetadata projects the front matter down to the fields every page
	// needs regardless of collection-specific shape.
	ToMetadata() Metadata
}

// Tagged is implemented by front matter types that carry tags. Collections
// whose F does not implement Tagged simply produce no tags.
type Tagged interface {
	FrontMatterTags() []string
}

// Metadata is the projection of a page's front matter used by every
// downstream component (TOC, feeds, output planning) regardless of the
// concrete front matter type.
type Metadata struct {
	Title        string
	Description  string
	LastModified time.Time
	// Order controls sibling ordering in the TOC; the zero value of an
	// unset Order is normalized to MaxOrder by NewMetadata so that pages
	// without an explicit order sort last.
	Order int
	// RSSItem reports whether the page should appear in the RSS feed.
	// Defaults to true.
	RSSItem bool
}

// MaxOrder is the sentinel order value meaning "unordered, sort last".
const MaxOrder = maxOrder

// NewMetadata builds a Metadata with defaults applied: Order defaults to
// MaxOrder and RSSItem defaults to true unless overridden by the caller
// after construction.
func NewMetadata(title, description string) Metadata {
	return Metadata{
		Title:       title,
		Description: description,
		Order:       MaxOrder,
		RSSItem:     true,
	}
}

// HeadingNode is one node of a page's heading outline. Only headings at
// level 2 and deeper are represented; level 1 is reserved for the page
// title and never appears here.
type HeadingNode struct {
	Title    string
	ID       string
	Level    int
	Children []*HeadingNode
}
