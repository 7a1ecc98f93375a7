// Package toc builds the table-of-contents tree (§4.9) from the neutral
// page views every content collection exposes, independent of any
// collection's front-matter type.
package toc

import (
	"sort"
	"strings"

	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/markdown"
	"github.com/brackenfield/quill/internal/pathutil"
)

// Entry is one node of the synthesized TOC tree.
type Entry struct {
	Name       string
	Href       string
	HasHref    bool
	Items      []*Entry
	Order      int
	IsSelected bool
}

// trieNode is the intermediate structure built while inserting every
// page's URL segments before the bottom-up Entry synthesis pass.
type trieNode struct {
	segment  string
	title    string
	hasTitle bool
	order    int
	href     string
	isIndex  bool
	children map[string]*trieNode
	keys     []string // insertion order of children, for determinism before sort
}

func newTrieNode(segment string) *trieNode {
	return &trieNode{segment: segment, children: make(map[string]*trieNode)}
}

func (n *trieNode) child(key string) *trieNode {
	if c, ok := n.children[key]; ok {
		return c
	}
	c := newTrieNode(key)
	n.children[key] = c
	n.keys = append(n.keys, key)
	return c
}

// partition splits node's children into a direct is_index child (if any,
// §4.9 step 4's folder-index absorption) and the keys of every other
// child.
func (n *trieNode) partition() (indexChild *trieNode, otherKeys []string) {
	for _, key := range n.keys {
		c := n.children[key]
		if c.hasTitle && c.isIndex && indexChild == nil {
			indexChild = c
			continue
		}
		otherKeys = append(otherKeys, key)
	}
	return indexChild, otherKeys
}

// Build synthesizes the TOC tree across every page in pages, marking as
// selected the node(s) whose href matches currentURL (§4.9).
func Build(pages []content.TOCPage, baseURL, currentURL string) []*Entry {
	root := newTrieNode("")

	for _, p := range pages {
		if p.Title == "" {
			continue
		}
		trimmed := strings.Trim(p.URL, "/")
		var segments []string
		if trimmed != "" {
			segments = strings.Split(trimmed, "/")
		}

		node := root
		for _, seg := range segments {
			node = node.child(strings.ToLower(seg))
		}
		node.title = p.Title
		node.hasTitle = true
		node.order = p.Order
		node.href = baseURL + "/" + trimmed
		node.isIndex = len(segments) > 0 && segments[len(segments)-1] == "index"
	}

	b := &builder{normalizedCurrent: pathutil.NormalizeForCompare(currentURL)}
	entries := b.items(root)
	sortEntries(entries)
	return entries
}

type builder struct {
	normalizedCurrent string
}

// items resolves node's children into the Items list that appears on
// node's own Entry (or, when node is itself an is_index child being
// absorbed, the Items list merged into its parent's Entry): each
// non-index child becomes its own Entry, and a direct is_index child's
// own children are folded in alongside them.
func (b *builder) items(node *trieNode) []*Entry {
	indexChild, otherKeys := node.partition()

	var entries []*Entry
	for _, key := range otherKeys {
		entries = append(entries, b.entryFor(node.children[key]))
	}
	if indexChild != nil {
		entries = append(entries, b.items(indexChild)...)
	}
	sortEntries(entries)
	return entries
}

// entryFor builds the single Entry representing node, applying folder
// index-absorption (§4.9 step 4, third bullet) when node has a direct
// is_index child.
func (b *builder) entryFor(node *trieNode) *Entry {
	indexChild, _ := node.partition()
	nodeItems := b.items(node)
	selectedBelow := anySelected(nodeItems)

	switch {
	case indexChild != nil:
		return &Entry{
			Name:       indexChild.title,
			Href:       indexChild.href,
			HasHref:    true,
			Items:      nodeItems,
			Order:      indexChild.order,
			IsSelected: b.matches(indexChild.href) || selectedBelow,
		}
	case node.hasTitle:
		return &Entry{
			Name:       node.title,
			Href:       node.href,
			HasHref:    true,
			Items:      nodeItems,
			Order:      node.order,
			IsSelected: b.matches(node.href) || selectedBelow,
		}
	default:
		order := markdown.MaxOrder
		for _, e := range nodeItems {
			if e.Order < order {
				order = e.Order
			}
		}
		return &Entry{
			Name:       pathutil.FolderTitle(node.segment),
			HasHref:    false,
			Items:      nodeItems,
			Order:      order,
			IsSelected: selectedBelow,
		}
	}
}

func (b *builder) matches(href string) bool {
	return pathutil.NormalizeForCompare(href) == b.normalizedCurrent
}

func anySelected(entries []*Entry) bool {
	for _, e := range entries {
		if e.IsSelected {
			return true
		}
	}
	return false
}

// sortEntries sorts siblings ascending by Order, recursing into children.
// Ties are not observably stable across runs (§5); sort.Slice (not
// SliceStable) is used deliberately so tests never depend on tie order.
func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	for _, e := range entries {
		sortEntries(e.Items)
	}
}
