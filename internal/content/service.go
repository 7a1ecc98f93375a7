package content

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brackenfield/quill/internal/cache"
	"github.com/brackenfield/quill/internal/markdown"
	"github.com/brackenfield/quill/internal/pathutil"
	"github.com/brackenfield/quill/internal/tags"
)

// Options configures one content collection (§4.7).
type Options[F markdown.FrontMatter] struct {
	// Name identifies the collection for logging and for the engine
	// facade's registration list; it is not part of any URL.
	Name string
	// ContentPath is the on-disk root this collection discovers files
	// under.
	ContentPath string
	// BasePageURL is the URL prefix every page in this collection is
	// published under.
	BasePageURL string
	// FilePattern is the glob matched against each file's base name.
	// Defaults to "*.md".
	FilePattern string
	// TagsPageURL is the URL prefix tag pages navigate under. Defaults to
	// BasePageURL joined with "tags".
	TagsPageURL string
	// ExcludedRoutes are URLs (already collection-relative, i.e. matching
	// PageRecord.URL) that pages_to_generate omits even though they were
	// discovered and parsed — e.g. a hand-authored page the UI layer
	// renders through a different route.
	ExcludedRoutes []string

	// NewFrontMatter constructs a zero-valued F for each parse; F is
	// expected to be a pointer type so the YAML/TOML decoder can write
	// into it directly.
	NewFrontMatter func() F
	// Parser renders markdown bodies to HTML and extracts heading
	// outlines; shared across every collection in a typical engine setup.
	Parser *markdown.Parser
	// ParserOptions carries the pre/post-process hooks (§4.7 options).
	ParserOptions markdown.Options[F]

	// Debounce is the lazy cache's debounce interval. Zero uses
	// cache.DefaultDebounce.
	Debounce time.Duration
}

// ContentService is one content collection: it discovers markdown files
// under ContentPath, parses them, and serves the resulting PageRecords
// through a debounced lazy cache (§4.1) so bursts of file-system change
// notifications collapse into a single recomputation.
type ContentService[F markdown.FrontMatter] struct {
	opts   Options[F]
	tagSvc *tags.Service

	pages    *cache.Lazy[[]*PageRecord[F]]
	tagIndex *cache.Populated[string, []*PageRecord[F]]
}

// NewContentService builds a ContentService from opts, applying defaults
// for FilePattern and TagsPageURL.
func NewContentService[F markdown.FrontMatter](opts Options[F]) *ContentService[F] {
	if opts.FilePattern == "" {
		opts.FilePattern = "*.md"
	}
	if opts.TagsPageURL == "" {
		opts.TagsPageURL = pathutil.JoinURL(opts.BasePageURL, "tags")
	}

	cs := &ContentService[F]{
		opts:   opts,
		tagSvc: tags.NewService(opts.TagsPageURL, nil),
	}
	cs.pages = cache.NewLazy(opts.Debounce, cs.discover)
	cs.tagIndex = cache.NewPopulated(cs.buildTagIndex)
	return cs
}

// Name identifies the collection.
func (cs *ContentService[F]) Name() string { return cs.opts.Name }

// Refresh schedules a debounced recomputation of this collection's pages
// (§4.1 refresh semantics); it is the hook the file watcher calls. The tag
// index is invalidated immediately so the next PostsByTag call rebuilds it
// from whatever pages.Value next returns.
func (cs *ContentService[F]) Refresh(ctx context.Context) {
	cs.pages.Refresh(ctx)
	cs.tagIndex.Invalidate()
}

// buildTagIndex groups every page by each of its tags' encoded names,
// populating cs.tagIndex (C4) in one pass so a burst of tag-page requests
// during output generation re-scans the collection once instead of once
// per tag.
func (cs *ContentService[F]) buildTagIndex(ctx context.Context) ([]cache.Entry[string, []*PageRecord[F]], error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*PageRecord[F])
	var order []string
	for _, p := range pages {
		for _, t := range p.Tags {
			if _, exists := grouped[t.EncodedName]; !exists {
				order = append(order, t.EncodedName)
			}
			grouped[t.EncodedName] = append(grouped[t.EncodedName], p)
		}
	}
	entries := make([]cache.Entry[string, []*PageRecord[F]], 0, len(order))
	for _, name := range order {
		entries = append(entries, cache.Entry[string, []*PageRecord[F]]{Key: name, Value: grouped[name]})
	}
	return entries, nil
}

// allPages returns the current set of non-draft PageRecords, computing
// them on first access.
func (cs *ContentService[F]) allPages(ctx context.Context) ([]*PageRecord[F], error) {
	return cs.pages.Value(ctx)
}

// Pages returns every non-draft PageRecord in this collection, in the
// order produced by discover: order field ascending, with ties kept in
// the sorted relative-path order of their source files.
// The engine facade paginates this slice for a collection's index page.
func (cs *ContentService[F]) Pages(ctx context.Context) ([]*PageRecord[F], error) {
	return cs.allPages(ctx)
}

// PageByURL returns the page whose NavigateURL equals url, or
// found=false. The engine facade's PageRenderer closure uses this to
// resolve the path a request hits to the data a UI layer needs to render
// it.
func (cs *ContentService[F]) PageByURL(ctx context.Context, url string) (*PageRecord[F], bool, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, p := range pages {
		if p.NavigateURL == url {
			return p, true, nil
		}
	}
	return nil, false, nil
}

// discover is the ContentService's lazy-cache factory: it implements
// §4.7's page-construction algorithm end to end.
func (cs *ContentService[F]) discover(ctx context.Context) ([]*PageRecord[F], error) {
	if _, err := os.Stat(cs.opts.ContentPath); err != nil {
		return nil, nil
	}

	files, bundleFiles, err := listSourceFiles(cs.opts.ContentPath, cs.opts.FilePattern)
	if err != nil {
		return nil, err
	}

	var pages []*PageRecord[F]
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, skip, err := cs.parseFile(f, bundleFiles)
		if err != nil {
			log.Printf("content: %s: skipping %s: %v", cs.opts.Name, f.RelPath, err)
			continue
		}
		if skip {
			continue
		}
		pages = append(pages, page)
	}

	sortByOrder(pages)
	return pages, nil
}

// parseFile parses a single source file into a PageRecord. skip reports a
// draft page (§3 invariant: excluded from all downstream structures), not
// an error.
func (cs *ContentService[F]) parseFile(f SourceFile, bundleFiles map[string][]string) (page *PageRecord[F], skip bool, err error) {
	raw, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, false, err
	}

	result, err := markdown.Parse(cs.opts.Parser, raw, cs.opts.NewFrontMatter, cs.opts.ParserOptions)
	if err != nil {
		return nil, false, err
	}
	if result.FrontMatter.IsDraft() {
		return nil, true, nil
	}

	_, inBundleDir := bundleFiles[filepath.Dir(f.AbsPath)]
	isBundle := inBundleDir && filepath.Base(f.RelPath) == "index.md"
	url := slugFromRelPath(f.RelPath, isBundle)

	metadata := result.FrontMatter.ToMetadata()
	if metadata.Order == 0 {
		metadata.Order = markdown.MaxOrder
	}

	var pageTags []tags.Tag
	if tagged, ok := any(result.FrontMatter).(markdown.Tagged); ok {
		pageTags = cs.tagSvc.ExtractFromFrontMatter(tagged.FrontMatterTags())
	}

	rec := &PageRecord[F]{
		FrontMatter:     result.FrontMatter,
		URL:             url,
		NavigateURL:     pathutil.JoinURL(cs.opts.BasePageURL, url),
		MarkdownContent: result.HTML,
		Tags:            pageTags,
		Outline:         result.Outline,
		Metadata:        metadata,
		SourcePath:      f.RelPath,
		IsBundle:        isBundle,
	}
	if isBundle {
		rec.BundleFiles = bundleFiles[filepath.Dir(f.AbsPath)]
	}
	return rec, false, nil
}

// PagesToGenerate returns every non-draft page plus one page per unique
// tag (§4.7).
func (cs *ContentService[F]) PagesToGenerate(ctx context.Context) ([]PageToGenerate, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(cs.opts.ExcludedRoutes))
	for _, r := range cs.opts.ExcludedRoutes {
		excluded[r] = true
	}

	var out []PageToGenerate
	var tagLists [][]tags.Tag
	for _, p := range pages {
		tagLists = append(tagLists, p.Tags)
		if excluded[p.URL] {
			continue
		}
		metadata := p.Metadata
		out = append(out, PageToGenerate{
			URL:        p.NavigateURL,
			OutputFile: outputFileFor(p.NavigateURL),
			Metadata:   &metadata,
		})
	}

	for _, t := range tags.UniqueTagsAcross(tagLists) {
		out = append(out, PageToGenerate{
			URL:        t.NavigateURL,
			OutputFile: outputFileFor(t.NavigateURL),
		})
	}
	return out, nil
}

// outputFileFor derives the on-disk output path for a navigable URL: the
// URL becomes a directory and the page is written as its index.html,
// matching §6's output layout.
func outputFileFor(navigateURL string) string {
	trimmed := strings.Trim(navigateURL, "/")
	if trimmed == "" {
		return "index.html"
	}
	return trimmed + "/index.html"
}

// ContentToCopy returns a single entry mirroring ContentPath's non-markdown
// assets under BasePageURL, or none if ContentPath doesn't exist (§4.7).
func (cs *ContentService[F]) ContentToCopy(ctx context.Context) ([]ContentToCopy, error) {
	if _, err := os.Stat(cs.opts.ContentPath); err != nil {
		return nil, nil
	}
	return []ContentToCopy{{
		SourcePath: cs.opts.ContentPath,
		TargetPath: cs.opts.BasePageURL,
	}}, nil
}

// AllTags returns every unique tag across this collection's pages (§4.8).
func (cs *ContentService[F]) AllTags(ctx context.Context) ([]tags.Tag, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}
	var lists [][]tags.Tag
	for _, p := range pages {
		lists = append(lists, p.Tags)
	}
	return tags.UniqueTagsAcross(lists), nil
}

// PostsByTag returns this collection's pages carrying encodedName, served
// from the populated tag index (C4) rather than rescanning every page.
func (cs *ContentService[F]) PostsByTag(ctx context.Context, encodedName string) ([]*PageRecord[F], error) {
	posts, _, err := cs.tagIndex.Get(ctx, encodedName)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// TOCPages projects this collection's pages to the neutral shape the
// table-of-contents builder (C9) consumes.
func (cs *ContentService[F]) TOCPages(ctx context.Context) ([]TOCPage, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}
	var out []TOCPage
	for _, p := range pages {
		if p.Metadata.Title == "" {
			continue
		}
		out = append(out, TOCPage{Title: p.Metadata.Title, URL: p.NavigateURL, Order: p.Metadata.Order})
	}
	return out, nil
}

// SitemapEntries projects this collection's pages to the neutral shape the
// sitemap builder (C10) consumes.
func (cs *ContentService[F]) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}
	var out []SitemapEntry
	for _, p := range pages {
		out = append(out, SitemapEntry{
			URL:             p.NavigateURL,
			LastModified:    p.Metadata.LastModified,
			HasLastModified: !p.Metadata.LastModified.IsZero(),
		})
	}
	return out, nil
}

// RSSEntries projects this collection's pages carrying rss_item=true and a
// non-empty title to the neutral shape the RSS builder (C10) consumes.
func (cs *ContentService[F]) RSSEntries(ctx context.Context) ([]RSSEntry, error) {
	pages, err := cs.allPages(ctx)
	if err != nil {
		return nil, err
	}
	var out []RSSEntry
	for _, p := range pages {
		if !p.Metadata.RSSItem || p.Metadata.Title == "" {
			continue
		}
		out = append(out, RSSEntry{
			Title:        p.Metadata.Title,
			URL:          p.NavigateURL,
			Description:  p.Metadata.Description,
			LastModified: p.Metadata.LastModified,
		})
	}
	return out, nil
}
