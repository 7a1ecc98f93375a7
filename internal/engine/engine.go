// Package engine is the facade (C12): it registers content collections,
// wires the file watcher to invalidate their caches, and exposes
// RunOrBuild, which either starts the dev server and hot-reload loop or
// runs the static-output generator once against a throwaway server.
package engine

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brackenfield/quill/internal/config"
	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/devserver"
	"github.com/brackenfield/quill/internal/feed"
	"github.com/brackenfield/quill/internal/highlight"
	"github.com/brackenfield/quill/internal/markdown"
	"github.com/brackenfield/quill/internal/output"
	"github.com/brackenfield/quill/internal/pathutil"
	"github.com/brackenfield/quill/internal/toc"
	"github.com/brackenfield/quill/internal/watch"
)

// boundCollection pairs a CollectionConfig with the typed ContentService it
// produced. The Engine keeps this typed view alongside the type-erased
// content.ContentCollection slice because the default renderer needs
// PageRecord[*PageFrontMatter] access that ContentCollection deliberately
// does not expose.
type boundCollection struct {
	cfg         config.CollectionConfig
	tagsPageURL string
	svc         *content.ContentService[*PageFrontMatter]
}

// Engine is the running instance of a Quill site: its content collections,
// the watcher keeping them fresh, the syntax highlighter they share, and
// the dev server used both for live preview and as the fetch target for
// static-output generation.
type Engine struct {
	cfg         *config.SiteConfig
	highlighter *highlight.Subsystem
	collections []*boundCollection
	erased      []content.ContentCollection
	watcher     *watch.Watcher
	server      *devserver.Server
}

// New constructs an Engine from cfg: it builds the shared markdown parser
// and highlighter, registers one ContentService per configured collection,
// and wires the file watcher to each collection's Refresh plus the
// highlighter's fragment-store reload.
func New(cfg *config.SiteConfig) (*Engine, error) {
	hl, err := highlight.NewSubsystem(highlight.Config{
		FragmentsFile: cfg.Highlight.FragmentsFile,
		ExecCommand:   cfg.Highlight.ExecCommand,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: building highlighter: %w", err)
	}
	parser := markdown.NewParser(hl)

	watcher, err := watch.New()
	if err != nil {
		return nil, fmt.Errorf("engine: building file watcher: %w", err)
	}

	e := &Engine{cfg: cfg, highlighter: hl, watcher: watcher}

	for _, cc := range cfg.Collections {
		tagsPageURL := cc.TagsPageURL
		if tagsPageURL == "" {
			tagsPageURL = pathutil.JoinURL(cc.BasePageURL, "tags")
		}

		svc := content.NewContentService(content.Options[*PageFrontMatter]{
			Name:           cc.Name,
			ContentPath:    cc.ContentPath,
			BasePageURL:    cc.BasePageURL,
			FilePattern:    cc.FilePattern,
			TagsPageURL:    tagsPageURL,
			NewFrontMatter: func() *PageFrontMatter { return &PageFrontMatter{} },
			Parser:         parser,
		})

		bc := &boundCollection{cfg: cc, tagsPageURL: tagsPageURL, svc: svc}
		e.collections = append(e.collections, bc)
		e.erased = append(e.erased, svc)
	}

	if len(e.collections) > 0 {
		roots := make([]string, 0, len(e.collections))
		for _, bc := range e.collections {
			roots = append(roots, bc.cfg.ContentPath)
		}
		watcher.AggregateWatch(roots, 0, func() {
			for _, bc := range e.collections {
				bc.svc.Refresh(context.Background())
			}
		})
	}

	if cfg.Highlight.FragmentsFile != "" {
		watcher.Watch(cfg.Highlight.FragmentsFile, "", highlight.InvalidationDebounce, func(string) {
			if err := hl.ReloadFragments(); err != nil {
				log.Printf("engine: reloading fragments: %v", err)
			}
		})
	}

	e.server = devserver.New(devserver.Options{
		Bind:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		LiveReload: cfg.Server.LiveReload,
		Render:     e.renderRequest,
		Feeds:      e,
	})

	return e, nil
}

// RunOrBuild realizes spec §4.12/§6's dispatch contract: args[0] ==
// "build" (case-insensitive) runs the static-output flow once and
// returns; otherwise it starts the dev server and blocks until ctx is
// cancelled.
func (e *Engine) RunOrBuild(ctx context.Context, args []string) error {
	go func() {
		if err := e.watcher.Start(); err != nil {
			log.Printf("engine: watcher stopped: %v", err)
		}
	}()
	defer e.watcher.Stop()

	if len(args) > 0 && strings.EqualFold(args[0], "build") {
		return e.build(ctx)
	}
	return e.serve(ctx)
}

// serve starts the dev server and blocks until ctx is cancelled.
func (e *Engine) serve(ctx context.Context) error {
	return e.server.Start(ctx)
}

// build starts the dev server on a loopback port, runs the output
// generator against it once, then shuts it down (§4.11's "base URL of the
// running server (development loopback during build)").
func (e *Engine) build(ctx context.Context) error {
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- e.server.Start(serveCtx) }()

	// Give the listener a moment to bind before the generator starts
	// fetching against it.
	time.Sleep(100 * time.Millisecond)

	baseURL := fmt.Sprintf("http://%s:%d", loopbackHost(e.cfg.Server.Host), e.cfg.Server.Port)

	result, err := output.Generate(ctx, output.Options{
		ServerBaseURL: baseURL,
		OutputDir:     e.cfg.Build.OutputDir,
		Collections:   e.erased,
		IgnorePaths:   e.cfg.Build.IgnorePaths,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	})
	cancel()
	<-errCh

	if err != nil {
		return fmt.Errorf("engine: generating output: %w", err)
	}
	log.Printf("engine: wrote %d pages (%d skipped), copied %d files",
		result.PagesWritten, result.PagesSkipped, result.FilesCopied)
	return nil
}

func loopbackHost(host string) string {
	if host == "" || host == "0.0.0.0" {
		return "localhost"
	}
	return host
}

// renderRequest is the devserver.PageRenderer the Engine wires in: it
// resolves path against every registered collection's pages first, then
// its tag index pages, rendering through the fallback templates in
// render.go.
func (e *Engine) renderRequest(ctx context.Context, path string) ([]byte, bool, error) {
	for _, bc := range e.collections {
		rec, found, err := bc.svc.PageByURL(ctx, path)
		if err != nil {
			return nil, false, err
		}
		if found {
			nav, err := e.buildNav(ctx, path)
			if err != nil {
				return nil, false, err
			}
			html, err := renderPage(rec, nav)
			return html, err == nil, err
		}
	}

	for _, bc := range e.collections {
		if !strings.HasPrefix(path, bc.tagsPageURL+"/") {
			continue
		}
		encoded := strings.TrimPrefix(path, bc.tagsPageURL+"/")
		posts, err := bc.svc.PostsByTag(ctx, encoded)
		if err != nil {
			return nil, false, err
		}
		if len(posts) == 0 {
			continue
		}
		html, err := renderTagPage(encoded, posts)
		return html, err == nil, err
	}

	for _, bc := range e.collections {
		html, found, err := e.renderListRequest(ctx, bc, path)
		if err != nil || found {
			return html, found, err
		}
	}

	return nil, false, nil
}

// renderListRequest serves a collection's paginated index (the
// supplemented pagination feature, content.Paginate) at its BasePageURL
// and at BasePageURL/page/N/.
func (e *Engine) renderListRequest(ctx context.Context, bc *boundCollection, path string) ([]byte, bool, error) {
	base := strings.TrimSuffix(bc.cfg.BasePageURL, "/")
	if base == "" {
		base = "/"
	}

	pageNum := 1
	switch {
	case path == base, base != "/" && path == base+"/":
	case strings.HasPrefix(path, base+"/page/"):
		rest := strings.TrimSuffix(strings.TrimPrefix(path, base+"/page/"), "/")
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return nil, false, nil
		}
		pageNum = n
	default:
		return nil, false, nil
	}

	pages, err := bc.svc.Pages(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(pages) == 0 {
		return nil, false, nil
	}

	baseURL := base + "/"
	if base == "/" {
		baseURL = "/"
	}
	pagers := content.Paginate(pages, e.cfg.Pagination.PageSize, baseURL)
	if pageNum > len(pagers) {
		return nil, false, nil
	}

	nav, err := e.buildNav(ctx, path)
	if err != nil {
		return nil, false, err
	}
	html, err := renderListPage(bc.cfg.Name, nav, pagers[pageNum-1])
	return html, err == nil, err
}

// buildNav aggregates TOCPages across every collection and synthesizes the
// site-wide nav tree (C9), marking currentURL as selected.
func (e *Engine) buildNav(ctx context.Context, currentURL string) ([]*toc.Entry, error) {
	var all []content.TOCPage
	for _, bc := range e.collections {
		pages, err := bc.svc.TOCPages(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, pages...)
	}
	return toc.Build(all, "", currentURL), nil
}

// Sitemap implements devserver.FeedSource, aggregating sitemap entries
// across every registered collection (§4.10).
func (e *Engine) Sitemap(ctx context.Context) ([]byte, error) {
	if !e.cfg.Feeds.Sitemap {
		return nil, devserver.ErrFeedDisabled
	}
	var entries []content.SitemapEntry
	for _, c := range e.erased {
		es, err := c.SitemapEntries(ctx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return feed.GenerateSitemap(feed.SitemapEntriesFrom(e.cfg.BaseURL, entries))
}

// RSS implements devserver.FeedSource, aggregating RSS entries across
// every registered collection (§4.10).
func (e *Engine) RSS(ctx context.Context) ([]byte, error) {
	if !e.cfg.Feeds.RSS {
		return nil, devserver.ErrFeedDisabled
	}
	var entries []content.RSSEntry
	for _, c := range e.erased {
		es, err := c.RSSEntries(ctx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	items := feed.RSSItemsFrom(e.cfg.BaseURL, entries, e.buildTime())
	return feed.GenerateRSS(items, feed.FeedOptions{
		Title:       e.cfg.Title,
		Description: e.cfg.Description,
		Link:        e.cfg.BaseURL,
		FeedLink:    e.cfg.Feeds.FeedLink,
		Language:    e.cfg.Language,
		MaxItems:    e.cfg.Feeds.Limit,
	})
}

// buildTime is the fallback PubDate for RSS entries with no last-modified
// date. The engine facade is the one place allowed to call time.Now;
// everywhere downstream takes it as a parameter instead.
func (e *Engine) buildTime() time.Time { return time.Now() }
