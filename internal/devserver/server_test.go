package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubFeeds struct {
	sitemap []byte
	rss     []byte
	err     error
}

func (f stubFeeds) Sitemap(ctx context.Context) ([]byte, error) { return f.sitemap, f.err }
func (f stubFeeds) RSS(ctx context.Context) ([]byte, error)     { return f.rss, f.err }

func TestHandlePageServesRenderedHTML(t *testing.T) {
	s := New(Options{
		Render: func(ctx context.Context, path string) ([]byte, bool, error) {
			if path == "/blog/hello" {
				return []byte("<html><body>hi</body></html>"), true, nil
			}
			return nil, false, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/blog/hello", nil)
	rr := httptest.NewRecorder()
	s.handlePage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "<html><body>hi</body></html>" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestHandlePageNotFound(t *testing.T) {
	s := New(Options{
		Render: func(ctx context.Context, path string) ([]byte, bool, error) {
			return nil, false, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rr := httptest.NewRecorder()
	s.handlePage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestHandlePageInjectsLiveReloadScript(t *testing.T) {
	s := New(Options{
		LiveReload: true,
		Render: func(ctx context.Context, path string) ([]byte, bool, error) {
			return []byte("<html><body>hi</body></html>"), true, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	s.handlePage(rr, req)

	if !strings.Contains(rr.Body.String(), "__quill/ws") {
		t.Errorf("expected live-reload script in body: %s", rr.Body.String())
	}
}

func TestHandleFeedServesSitemapAndErrors(t *testing.T) {
	ok := New(Options{Feeds: stubFeeds{sitemap: []byte("<urlset></urlset>")}})
	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rr := httptest.NewRecorder()
	ok.handleFeed(func(ctx context.Context) ([]byte, error) { return ok.opts.Feeds.Sitemap(ctx) }, "application/xml")(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "<urlset></urlset>" {
		t.Fatalf("got status=%d body=%q", rr.Code, rr.Body.String())
	}

	failing := New(Options{Feeds: stubFeeds{err: errors.New("boom")}})
	rr2 := httptest.NewRecorder()
	failing.handleFeed(func(ctx context.Context) ([]byte, error) { return failing.opts.Feeds.Sitemap(ctx) }, "application/xml")(rr2, req)
	if rr2.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr2.Code)
	}
}

func TestHandleFeedDisabledReturnsNotFound(t *testing.T) {
	s := New(Options{Feeds: stubFeeds{err: ErrFeedDisabled}})
	req := httptest.NewRequest(http.MethodGet, "/rss.xml", nil)
	rr := httptest.NewRecorder()
	s.handleFeed(func(ctx context.Context) ([]byte, error) { return s.opts.Feeds.RSS(ctx) }, "application/rss+xml")(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestInjectLiveReloadInsertsBeforeClosingBody(t *testing.T) {
	html := []byte("<html><body><p>Hello</p></body></html>")
	result := injectLiveReload(html)

	bodyIdx := strings.Index(string(result), "</body>")
	scriptIdx := strings.Index(string(result), "<script>")
	if scriptIdx == -1 || bodyIdx == -1 || scriptIdx >= bodyIdx {
		t.Fatalf("expected script injected before </body>: %s", result)
	}
}

func TestInjectLiveReloadAppendsWhenNoBodyTag(t *testing.T) {
	html := []byte("<p>no body tag</p>")
	result := injectLiveReload(html)
	if !strings.Contains(string(result), "<script>") {
		t.Errorf("expected script appended: %s", result)
	}
}
