package toc

import (
	"testing"

	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/markdown"
)

func findByName(entries []*Entry, name string) *Entry {
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// TestFolderIndexAbsorption covers spec scenario 3.
func TestFolderIndexAbsorption(t *testing.T) {
	pages := []content.TOCPage{
		{Title: "Documentation", URL: "/docs/index", Order: 10},
		{Title: "Getting Started", URL: "/docs/getting-started", Order: 11},
		{Title: "Configuration", URL: "/docs/config/index", Order: 20},
		{Title: "Basic", URL: "/docs/config/basic", Order: 21},
		{Title: "Advanced", URL: "/docs/config/advanced", Order: 22},
	}

	entries := Build(pages, "", "/none")
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1: %+v", len(entries), entries)
	}
	doc := entries[0]
	if doc.Name != "Documentation" {
		t.Fatalf("top entry Name = %q, want %q", doc.Name, "Documentation")
	}
	if len(doc.Items) != 2 {
		t.Fatalf("len(doc.Items) = %d, want 2: %+v", len(doc.Items), doc.Items)
	}
	if doc.Items[0].Name != "Getting Started" || doc.Items[1].Name != "Configuration" {
		t.Fatalf("doc.Items = %+v", doc.Items)
	}
	cfg := doc.Items[1]
	if len(cfg.Items) != 2 || cfg.Items[0].Name != "Basic" || cfg.Items[1].Name != "Advanced" {
		t.Fatalf("cfg.Items = %+v", cfg.Items)
	}
}

// TestFolderTitleCasing covers spec scenario 4.
func TestFolderTitleCasing(t *testing.T) {
	pages := []content.TOCPage{
		{Title: "Getting Started", URL: "/getting-started/page1", Order: 1},
		{Title: "API Reference", URL: "/api--reference/page2", Order: 2},
	}

	entries := Build(pages, "", "/none")
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2: %+v", len(entries), entries)
	}
	if findByName(entries, "Getting Started") == nil {
		t.Errorf("missing folder %q in %+v", "Getting Started", entries)
	}
	if findByName(entries, "Api-Reference") == nil {
		t.Errorf("missing folder %q in %+v", "Api-Reference", entries)
	}
}

// TestOrderTieBreakMaxInt covers spec scenario 5.
func TestOrderTieBreakMaxInt(t *testing.T) {
	pages := []content.TOCPage{
		{Title: "First", URL: "/first", Order: 1},
		{Title: "Unordered", URL: "/second", Order: markdown.MaxOrder},
	}

	entries := Build(pages, "", "/none")
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "First" || entries[1].Name != "Unordered" {
		t.Fatalf("entries = %+v, want First before Unordered", entries)
	}
}

func TestSelectionMarksCurrentPage(t *testing.T) {
	pages := []content.TOCPage{
		{Title: "Docs", URL: "/docs/intro", Order: 1},
	}
	entries := Build(pages, "", "/docs/intro")
	if !entries[0].IsSelected {
		t.Errorf("entries[0].IsSelected = false, want true")
	}

	entries = Build(pages, "", "/unrelated")
	if entries[0].IsSelected {
		t.Errorf("unrelated current URL should not select: %+v", entries)
	}
}
