// Package content implements the per-collection content service (§4.7): it
// discovers source files under a content root, parses them into
// PageRecords, and exposes the neutral views (pages-to-generate,
// content-to-copy, tags, TOC pages, feed entries) that downstream
// components consume without needing to know a collection's concrete
// front-matter type.
package content

import (
	"context"
	"time"

	"github.com/brackenfield/quill/internal/markdown"
	"github.com/brackenfield/quill/internal/tags"
)

// SourceFile is an on-disk markdown file discovered under a content root.
type SourceFile struct {
	AbsPath string
	RelPath string
	ModTime time.Time
}

// PageRecord is the immutable result of parsing one SourceFile. A rebuild
// (triggered by the debounced cache after a change notification) replaces
// the whole record; nothing mutates a PageRecord in place.
type PageRecord[F markdown.FrontMatter] struct {
	FrontMatter     F
	URL             string
	NavigateURL     string
	MarkdownContent string
	Tags            []tags.Tag
	Outline         []*markdown.HeadingNode
	Metadata        markdown.Metadata

	SourcePath  string
	IsBundle    bool
	BundleFiles []string
}

// PageToGenerate is the output-planning unit produced by pages_to_generate
// (§4.7, §4.11): a URL to fetch and the output file path to write it to.
type PageToGenerate struct {
	URL        string
	OutputFile string
	Metadata   *markdown.Metadata
}

// ContentToCopy names a directory of non-markdown assets to mirror
// verbatim into the output tree under TargetPath.
type ContentToCopy struct {
	SourcePath string
	TargetPath string
}

// TOCPage is the neutral view of a page the table-of-contents builder (C9)
// consumes; it has no dependency on a collection's front-matter type.
type TOCPage struct {
	Title string
	URL   string
	Order int
}

// SitemapEntry is the neutral view of a page the sitemap builder (C10)
// consumes.
type SitemapEntry struct {
	URL             string
	LastModified    time.Time
	HasLastModified bool
}

// RSSEntry is the neutral view of a page the RSS builder (C10) consumes.
type RSSEntry struct {
	Title        string
	URL          string
	Description  string
	LastModified time.Time
}

// ContentCollection is the non-generic facade every ContentService[F]
// satisfies, letting the engine facade hold a single slice of collections
// regardless of their front-matter types.
type ContentCollection interface {
	Name() string
	PagesToGenerate(ctx context.Context) ([]PageToGenerate, error)
	ContentToCopy(ctx context.Context) ([]ContentToCopy, error)
	Refresh(ctx context.Context)
	AllTags(ctx context.Context) ([]tags.Tag, error)
	TOCPages(ctx context.Context) ([]TOCPage, error)
	SitemapEntries(ctx context.Context) ([]SitemapEntry, error)
	RSSEntries(ctx context.Context) ([]RSSEntry, error)
}
