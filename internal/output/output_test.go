package output

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/tags"
)

type fakeCollection struct {
	name    string
	pages   []content.PageToGenerate
	toCopy  []content.ContentToCopy
	refresh int
}

func (f *fakeCollection) Name() string { return f.name }
func (f *fakeCollection) PagesToGenerate(ctx context.Context) ([]content.PageToGenerate, error) {
	return f.pages, nil
}
func (f *fakeCollection) ContentToCopy(ctx context.Context) ([]content.ContentToCopy, error) {
	return f.toCopy, nil
}
func (f *fakeCollection) Refresh(ctx context.Context)                        { f.refresh++ }
func (f *fakeCollection) AllTags(ctx context.Context) ([]tags.Tag, error)    { return nil, nil }
func (f *fakeCollection) TOCPages(ctx context.Context) ([]content.TOCPage, error) {
	return nil, nil
}
func (f *fakeCollection) SitemapEntries(ctx context.Context) ([]content.SitemapEntry, error) {
	return nil, nil
}
func (f *fakeCollection) RSSEntries(ctx context.Context) ([]content.RSSEntry, error) {
	return nil, nil
}

func TestGenerateFetchesAndWritesPlannedPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>" + r.URL.Path + "</html>"))
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	col := &fakeCollection{
		name: "blog",
		pages: []content.PageToGenerate{
			{URL: "/blog/hello", OutputFile: "blog/hello/index.html"},
		},
	}

	result, err := Generate(context.Background(), Options{
		ServerBaseURL: srv.URL,
		OutputDir:     outputDir,
		Collections:   []content.ContentCollection{col},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.PagesWritten != 1 {
		t.Fatalf("PagesWritten = %d, want 1", result.PagesWritten)
	}
	if col.refresh != 1 {
		t.Errorf("collection Refresh() called %d times, want 1", col.refresh)
	}

	body, err := os.ReadFile(filepath.Join(outputDir, "blog/hello/index.html"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(body) != "<html>/blog/hello</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestGenerateSkipsFailedFetchesAndContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	col := &fakeCollection{
		name: "blog",
		pages: []content.PageToGenerate{
			{URL: "/broken", OutputFile: "broken/index.html"},
			{URL: "/fine", OutputFile: "fine/index.html"},
		},
	}

	result, err := Generate(context.Background(), Options{
		ServerBaseURL: srv.URL,
		OutputDir:     outputDir,
		Collections:   []content.ContentCollection{col},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.PagesWritten != 1 || result.PagesSkipped != 1 {
		t.Fatalf("result = %+v, want 1 written, 1 skipped", result)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "broken/index.html")); !os.IsNotExist(err) {
		t.Errorf("broken/index.html should not have been written")
	}
}

func TestGenerateCopiesContentSkippingIgnoredPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "keep.png"), []byte("img"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "drop.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	outputDir := t.TempDir()
	col := &fakeCollection{
		name:   "blog",
		toCopy: []content.ContentToCopy{{SourcePath: srcDir, TargetPath: "/blog"}},
	}

	result, err := Generate(context.Background(), Options{
		ServerBaseURL: srv.URL,
		OutputDir:     outputDir,
		Collections:   []content.ContentCollection{col},
		IgnorePaths:   []string{"/blog/drop.txt"},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.FilesCopied != 1 {
		t.Fatalf("FilesCopied = %d, want 1", result.FilesCopied)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "blog", "keep.png")); err != nil {
		t.Errorf("expected blog/keep.png to be copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "blog", "drop.txt")); !os.IsNotExist(err) {
		t.Errorf("blog/drop.txt should have been ignored")
	}
}

func TestGenerateRunsPriorityBucketsInOrder(t *testing.T) {
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.URL.Path)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	result, err := Generate(context.Background(), Options{
		ServerBaseURL: srv.URL,
		OutputDir:     outputDir,
		ExplicitPages: []PlannedPage{
			{PageToGenerate: content.PageToGenerate{URL: "/last", OutputFile: "last/index.html"}, Priority: MustBeLast},
			{PageToGenerate: content.PageToGenerate{URL: "/first", OutputFile: "first/index.html"}, Priority: MustBeFirst},
		},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.PagesWritten != 2 {
		t.Fatalf("PagesWritten = %d, want 2", result.PagesWritten)
	}
	if len(order) != 2 || order[0] != "/first" || order[1] != "/last" {
		t.Fatalf("fetch order = %v, want [/first /last]", order)
	}
}
