// Package tags implements the tag service (§4.8): encoding a display name
// into a stable URL-safe token, building the navigable Tag value attached to
// a page, and grouping pages by tag across a content collection.
package tags

import (
	"strings"

	"github.com/brackenfield/quill/internal/pathutil"
)

// Tag is the navigable representation of a front-matter tag string.
type Tag struct {
	DisplayName string
	EncodedName string
	NavigateURL string
}

// EncodeFunc turns a raw tag string into its URL-safe token. The default,
// pathutil.Slugify, is idempotent, so re-encoding an already-encoded tag is
// a no-op (§9 Open Question: tag encoding must be idempotent because pages
// may already carry pre-slugified tags in front matter).
type EncodeFunc func(raw string) string

// Service builds Tag values rooted at a fixed tags index page.
type Service struct {
	tagsPageURL string
	encode      EncodeFunc
}

// NewService returns a Service whose tags navigate under tagsPageURL. A nil
// encode defaults to pathutil.Slugify.
func NewService(tagsPageURL string, encode EncodeFunc) *Service {
	if encode == nil {
		encode = pathutil.Slugify
	}
	return &Service{tagsPageURL: tagsPageURL, encode: encode}
}

// Encode applies the service's encoding function.
func (s *Service) Encode(raw string) string {
	return s.encode(raw)
}

// NewTag builds the Tag for a single display name.
func (s *Service) NewTag(displayName string) Tag {
	encoded := s.Encode(displayName)
	return Tag{
		DisplayName: displayName,
		EncodedName: encoded,
		NavigateURL: pathutil.JoinURL(s.tagsPageURL, encoded),
	}
}

// ExtractFromFrontMatter converts a page's raw front-matter tag strings into
// Tags, dropping blank entries and preserving front-matter order.
func (s *Service) ExtractFromFrontMatter(raw []string) []Tag {
	var out []Tag
	for _, r := range raw {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" {
			continue
		}
		out = append(out, s.NewTag(trimmed))
	}
	return out
}

// UniqueTagsAcross de-duplicates tags (by encoded name) across the tag
// lists of every page in a collection, keeping the first display name seen
// for each encoded name and preserving first-seen order.
func UniqueTagsAcross(tagLists [][]Tag) []Tag {
	seen := make(map[string]bool)
	var out []Tag
	for _, list := range tagLists {
		for _, t := range list {
			if seen[t.EncodedName] {
				continue
			}
			seen[t.EncodedName] = true
			out = append(out, t)
		}
	}
	return out
}

// PostsByTag filters pages to those carrying a tag whose encoded name
// matches encodedName. tagsOf extracts a page's tags, letting this work
// across any page representation without importing the content package.
func PostsByTag[P any](pages []P, encodedName string, tagsOf func(P) []Tag) []P {
	var out []P
	for _, p := range pages {
		for _, t := range tagsOf(p) {
			if t.EncodedName == encodedName {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
