// Package pathutil normalizes file-system paths into URL paths and slugs,
// and title-cases folder segments for table-of-contents labels.
package pathutil

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nonSlugRe matches characters that are not alphanumeric or hyphens.
var nonSlugRe = regexp.MustCompile(`[^a-z0-9\-]`)

// multiHyphenRe collapses runs of hyphens into one.
var multiHyphenRe = regexp.MustCompile(`-{2,}`)

var titleCaser = cases.Title(language.English)

// Slugify converts an arbitrary string into a URL-safe lower-case token of
// ASCII letters, digits, and hyphens. It is pure and total: it never panics
// and never returns an error, and is idempotent on already-slugified input.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	s = multiHyphenRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugifyPath slugifies each "/"-separated segment of a relative path
// independently, preserving the segment boundaries and dropping any file
// extension from the final segment.
func SlugifyPath(relPath string) string {
	relPath = strings.TrimSuffix(relPath, path.Ext(relPath))
	segments := strings.Split(path.ToSlash(relPath), "/")
	for i, seg := range segments {
		segments[i] = Slugify(seg)
	}
	return strings.Join(segments, "/")
}

// JoinURL joins a base page URL and a relative page URL with exactly one
// slash between them, normalizing duplicate slashes. An empty base yields
// the relative URL unchanged (aside from a leading slash).
func JoinURL(base, rel string) string {
	base = strings.TrimSuffix(base, "/")
	rel = strings.TrimPrefix(rel, "/")
	if base == "" {
		return "/" + rel
	}
	if rel == "" {
		return base
	}
	return base + "/" + rel
}

// FolderTitle converts a folder's URL segment into a display title: single
// hyphens become spaces and every word is capitalized, minor words such as
// "of" or "the" included, while a double hyphen is preserved as a literal
// hyphen in the resulting title.
//
// "getting-started" -> "Getting Started"
// "api--reference"  -> "Api-Reference"
func FolderTitle(segment string) string {
	const sentinel = "\x00"
	withSentinel := strings.ReplaceAll(segment, "--", sentinel)
	withSentinel = strings.ReplaceAll(withSentinel, "-", " ")
	titled := titleCaser.String(withSentinel)
	return strings.ReplaceAll(titled, sentinel, "-")
}

// NormalizeForCompare prepares a URL for case-insensitive, trailing-slash
// insensitive comparison (used by the TOC builder to determine selection):
// a missing leading slash is added, a trailing slash or an empty path
// becomes "/index", and the result is lower-cased.
func NormalizeForCompare(url string) string {
	if url == "" {
		url = "/"
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	if url == "/" {
		url = "/index"
	} else if strings.HasSuffix(url, "/") {
		url = url + "index"
	}
	return strings.ToLower(url)
}
