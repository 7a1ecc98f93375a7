package content

import (
	"sort"
	"strings"

	"github.com/brackenfield/quill/internal/markdown"
)

// sortByOrder sorts page records by Metadata.Order ascending, with
// markdown.MaxOrder (the "no explicit order" sentinel) sorting last.
func sortByOrder[F markdown.FrontMatter](pages []*PageRecord[F]) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Metadata.Order < pages[j].Metadata.Order
	})
}

// sortByTitle sorts page records alphabetically by title, case-insensitive.
func sortByTitle[F markdown.FrontMatter](pages []*PageRecord[F]) {
	sort.SliceStable(pages, func(i, j int) bool {
		return strings.ToLower(pages[i].Metadata.Title) < strings.ToLower(pages[j].Metadata.Title)
	})
}
