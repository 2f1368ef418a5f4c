// Package bktree implements a Burkhard-Keller tree for approximate
// string matching. Entries are organized by pairwise edit distance,
// which lets a search skip every subtree that the triangle inequality
// proves cannot hold a match.
package bktree

import (
	"sort"

	"github.com/kvasirlabs/grokipedia-go/pkg/distance"
)

type node struct {
	slug       string
	normalized string
	children   map[int]*node
}

// Result is a single search hit: the stored slug and its edit distance
// from the query.
type Result struct {
	Slug     string
	Distance int
}

// Tree is a BK-tree over (slug, normalized) pairs. It is built once and
// read-only afterwards; searches need no locking.
type Tree struct {
	root *node
	size int
	dist distance.Func
}

// New returns an empty tree using the given distance function, or the
// package default when fn is nil.
func New(fn distance.Func) *Tree {
	if fn == nil {
		fn = distance.Default
	}
	return &Tree{dist: fn}
}

// Add inserts a slug keyed by its normalized form. Insertion order
// affects tree shape but not search results.
func (t *Tree) Add(slug, normalized string) {
	if t.root == nil {
		t.root = &node{slug: slug, normalized: normalized}
		t.size = 1
		return
	}

	current := t.root
	for {
		d := t.dist(normalized, current.normalized)
		if current.children == nil {
			current.children = make(map[int]*node)
		}
		child, ok := current.children[d]
		if !ok {
			current.children[d] = &node{slug: slug, normalized: normalized}
			t.size++
			return
		}
		current = child
	}
}

// Search returns up to limit slugs whose normalized form is within
// maxDistance edits of query, closest first (ties broken by slug).
func (t *Tree) Search(query string, maxDistance, limit int) []Result {
	if t.root == nil || limit <= 0 || maxDistance < 0 {
		return nil
	}

	var results []Result
	t.search(t.root, query, maxDistance, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Slug < results[j].Slug
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (t *Tree) search(n *node, query string, maxDistance int, results *[]Result) {
	d := t.dist(query, n.normalized)
	if d <= maxDistance {
		*results = append(*results, Result{Slug: n.slug, Distance: d})
	}

	// Only children at an edge distance within maxDistance of d can
	// contain a match; everything else is pruned by the triangle
	// inequality. The edge distance bounds a child's own distance but
	// not its descendants', so this window is the only safe pruning.
	lo := d - maxDistance
	if lo < 0 {
		lo = 0
	}
	hi := d + maxDistance

	for edge := lo; edge <= hi; edge++ {
		if child, ok := n.children[edge]; ok {
			t.search(child, query, maxDistance, results)
		}
	}
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int {
	return t.size
}

// Empty reports whether the tree holds no entries.
func (t *Tree) Empty() bool {
	return t.root == nil
}
