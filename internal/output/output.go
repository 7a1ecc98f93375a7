// Package output implements the static-output generator (§4.11): it plans
// the artifacts a build must produce, fetches each planned page's rendered
// HTML from a running server over HTTP, and writes the results to an
// output tree alongside copied content assets.
package output

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/brackenfield/quill/internal/content"
)

// Priority buckets a planned page into a generation phase. Buckets run
// sequentially; pages within a bucket generate in parallel. MustBeLast
// exists so dynamically generated stylesheet routes render after
// everything that may feed their class-scanning.
type Priority int

const (
	MustBeFirst Priority = iota
	Normal
	MustBeLast
)

// PlannedPage is one page queued for generation, with the bucket it
// belongs to.
type PlannedPage struct {
	content.PageToGenerate
	Priority Priority
}

// Options configures one Generate run.
type Options struct {
	// ServerBaseURL is the base URL of the running server pages are
	// fetched from, e.g. "http://127.0.0.1:3000".
	ServerBaseURL string
	// OutputDir is cleared and recreated before generation.
	OutputDir string
	// Collections supply pages to generate, content to copy, and are
	// refreshed before planning.
	Collections []content.ContentCollection
	// ExplicitPages are queued alongside each collection's own pages,
	// e.g. routes the UI layer registers outside any content collection.
	ExplicitPages []PlannedPage
	// ExtraContentToCopy supplements each collection's own content roots,
	// e.g. a theme's static asset directory.
	ExtraContentToCopy []content.ContentToCopy
	// IgnorePaths are output-relative paths skipped when copying content
	// (§4.11 step 3).
	IgnorePaths []string
	// Workers bounds fetch concurrency within a priority bucket. Zero
	// uses runtime.NumCPU().
	Workers int
	// HTTPClient performs the page fetches. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Result summarizes a completed generation run.
type Result struct {
	PagesWritten int
	PagesSkipped int
	FilesCopied  int
}

// Generate runs the full output-generation pipeline (§4.11 steps 1-5).
func Generate(ctx context.Context, opts Options) (*Result, error) {
	for _, c := range opts.Collections {
		c.Refresh(ctx)
	}

	planned, err := planPages(ctx, opts)
	if err != nil {
		return nil, err
	}

	toCopy, err := aggregateContentToCopy(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := CleanDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("output: cleaning %s: %w", opts.OutputDir, err)
	}

	result := &Result{}
	ignored := make(map[string]bool, len(opts.IgnorePaths))
	for _, p := range opts.IgnorePaths {
		ignored[filepath.Clean(p)] = true
	}
	for _, c := range toCopy {
		copied, err := copyEntry(c, opts.OutputDir, ignored)
		if err != nil {
			return nil, fmt.Errorf("output: copying %s: %w", c.SourcePath, err)
		}
		result.FilesCopied += copied
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	buckets := bucketize(planned)
	for _, bucket := range buckets {
		written, skipped := fetchAndWriteParallel(ctx, client, opts.ServerBaseURL, opts.OutputDir, bucket, workers)
		result.PagesWritten += written
		result.PagesSkipped += skipped
	}

	return result, nil
}

// planPages aggregates pages to generate across every collection (as
// Normal priority) plus the caller's explicit pages (§4.11 step 1).
func planPages(ctx context.Context, opts Options) ([]PlannedPage, error) {
	var planned []PlannedPage
	for _, c := range opts.Collections {
		pages, err := c.PagesToGenerate(ctx)
		if err != nil {
			return nil, fmt.Errorf("output: planning pages for %s: %w", c.Name(), err)
		}
		for _, p := range pages {
			planned = append(planned, PlannedPage{PageToGenerate: p, Priority: Normal})
		}
	}
	planned = append(planned, opts.ExplicitPages...)
	return planned, nil
}

// aggregateContentToCopy aggregates content-to-copy entries across every
// collection plus any caller-supplied extra roots (§4.11 step 2).
func aggregateContentToCopy(ctx context.Context, opts Options) ([]content.ContentToCopy, error) {
	var out []content.ContentToCopy
	for _, c := range opts.Collections {
		entries, err := c.ContentToCopy(ctx)
		if err != nil {
			return nil, fmt.Errorf("output: aggregating content to copy for %s: %w", c.Name(), err)
		}
		out = append(out, entries...)
	}
	out = append(out, opts.ExtraContentToCopy...)
	return out, nil
}

// bucketize groups planned pages by priority, preserving MustBeFirst,
// Normal, MustBeLast execution order (§4.11 step 4).
func bucketize(planned []PlannedPage) [3][]PlannedPage {
	var buckets [3][]PlannedPage
	for _, p := range planned {
		buckets[p.Priority] = append(buckets[p.Priority], p)
	}
	return buckets
}

// fetchAndWriteParallel fetches and writes every page in bucket concurrently
// using a bounded worker pool, returning counts of pages written and
// skipped. A fetch failure is logged and only that page is skipped;
// generation continues (§4.11 step 5).
func fetchAndWriteParallel(ctx context.Context, client *http.Client, serverBaseURL, outputDir string, bucket []PlannedPage, workers int) (written, skipped int) {
	if len(bucket) == 0 {
		return 0, 0
	}
	if workers > len(bucket) {
		workers = len(bucket)
	}

	jobs := make(chan PlannedPage, len(bucket))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				ok := fetchAndWrite(ctx, client, serverBaseURL, outputDir, page)
				mu.Lock()
				if ok {
					written++
				} else {
					skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, p := range bucket {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return written, skipped
}

// fetchAndWrite fetches one planned page's rendered HTML and writes it to
// its output path, reporting false (and logging) on any network or write
// failure without aborting the overall run.
func fetchAndWrite(ctx context.Context, client *http.Client, serverBaseURL, outputDir string, page PlannedPage) bool {
	url := strings.TrimRight(serverBaseURL, "/") + "/" + strings.TrimLeft(page.URL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logSkip(page.URL, err)
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		logSkip(page.URL, err)
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logSkip(page.URL, err)
		return false
	}
	if resp.StatusCode >= 400 {
		logSkip(page.URL, fmt.Errorf("server returned status %d", resp.StatusCode))
		return false
	}

	dst := filepath.Join(outputDir, page.OutputFile)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		logSkip(page.URL, err)
		return false
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		logSkip(page.URL, err)
		return false
	}
	return true
}

func logSkip(url string, err error) {
	fmt.Printf("output: skipping %s: %v\n", url, err)
}

// copyEntry copies one content-to-copy entry's tree into outputDir under
// TargetPath, skipping markdown (".md") files and any path matching
// ignored (§4.11 step 3).
func copyEntry(c content.ContentToCopy, outputDir string, ignored map[string]bool) (int, error) {
	info, err := os.Stat(c.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	dstRoot := filepath.Join(outputDir, strings.TrimPrefix(c.TargetPath, "/"))
	if !info.IsDir() {
		if ignored[filepath.Clean(c.TargetPath)] {
			return 0, nil
		}
		if err := CopyFile(c.SourcePath, dstRoot); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(c.SourcePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(c.SourcePath, path)
		if err != nil {
			return err
		}
		targetRel := filepath.Join(strings.TrimPrefix(c.TargetPath, "/"), rel)
		if ignored[filepath.Clean("/"+targetRel)] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dstPath := filepath.Join(outputDir, targetRel)
		if d.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}
		if filepath.Ext(path) == ".md" {
			return nil
		}
		if err := CopyFile(path, dstPath); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
