package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/pathutil"
)

// SitemapEntry is one <url> in the generated sitemap.
type SitemapEntry struct {
	URL     string
	Lastmod time.Time
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod,omitempty"`
}

// GenerateSitemap produces an XML sitemap per the sitemaps.org protocol: a
// <urlset> root, one <url> per entry with <loc> and, when the entry carries
// a non-zero Lastmod, a date-only <lastmod> (§4.10).
func GenerateSitemap(entries []SitemapEntry) ([]byte, error) {
	urlset := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(entries)),
	}

	for _, e := range entries {
		u := sitemapURL{Loc: e.URL}
		if !e.Lastmod.IsZero() {
			u.Lastmod = e.Lastmod.Format("2006-01-02")
		}
		urlset.URLs = append(urlset.URLs, u)
	}

	output, err := xml.MarshalIndent(urlset, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: marshaling sitemap: %w", err)
	}

	result := []byte(xml.Header)
	result = append(result, output...)
	result = append(result, '\n')
	return result, nil
}

// SitemapEntriesFrom flattens neutral sitemap entries (from any number of
// collections), joining each page's site-relative URL under baseURL (§4.10:
// "<loc>=base_url+'/'+url-trimmed").
func SitemapEntriesFrom(baseURL string, entries []content.SitemapEntry) []SitemapEntry {
	out := make([]SitemapEntry, 0, len(entries))
	for _, e := range entries {
		se := SitemapEntry{URL: pathutil.JoinURL(baseURL, e.URL)}
		if e.HasLastModified {
			se.Lastmod = e.LastModified
		}
		out = append(out, se)
	}
	return out
}

// RSSItemsFrom converts one collection's RSS-eligible pages (already
// filtered to rss_item=true with a non-empty title by
// ContentCollection.RSSEntries) into FeedItem values, joining each page's
// URL under baseURL and defaulting PubDate to now when the page carries no
// last-modified date (§4.10).
func RSSItemsFrom(baseURL string, entries []content.RSSEntry, now time.Time) []FeedItem {
	out := make([]FeedItem, 0, len(entries))
	for _, e := range entries {
		pubDate := now
		if !e.LastModified.IsZero() {
			pubDate = e.LastModified
		}
		link := pathutil.JoinURL(baseURL, e.URL)
		out = append(out, FeedItem{
			Title:       e.Title,
			Link:        link,
			Description: e.Description,
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	return out
}
