package slugindex

import (
	"container/heap"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scylladb/go-set/strset"
)

// Substring match priorities, best first. A query found at a token
// boundary is a far stronger signal than one buried mid-token.
const (
	priorityExact = iota
	priorityBothBoundaries
	priorityOneBoundary
	priorityMidToken
)

type subMatch struct {
	idx      int
	priority int
	pos      int
}

// substringMatches runs the first search stage: scan every normalized
// key for the query as a substring, rank by boundary priority then by
// occurrence position, and return up to limit slugs plus the set of
// slugs already claimed.
func (i *Index) substringMatches(queryNorm string, limit int) ([]string, *strset.Set) {
	var found []subMatch
	for idx, e := range i.entries {
		priority, pos, ok := scoreSubstring(e.normalized, queryNorm)
		if !ok {
			continue
		}
		found = append(found, subMatch{idx: idx, priority: priority, pos: pos})
	}

	// Stable sort keeps the sorted-slug iteration order as the final
	// tiebreak, so results are deterministic.
	sort.SliceStable(found, func(a, b int) bool {
		if found[a].priority != found[b].priority {
			return found[a].priority < found[b].priority
		}
		return found[a].pos < found[b].pos
	})

	seen := strset.New()
	matches := make([]string, 0, limit)
	for _, m := range found {
		if len(matches) >= limit {
			break
		}
		slug := i.entries[m.idx].slug
		matches = append(matches, slug)
		seen.Add(slug)
	}
	return matches, seen
}

// scoreSubstring classifies how the query occurs inside the key.
// Returns ok=false when the query is not a substring at all.
func scoreSubstring(key, query string) (priority, pos int, ok bool) {
	pos = strings.Index(key, query)
	if pos < 0 {
		return 0, 0, false
	}

	if key == query {
		return priorityExact, pos, true
	}

	end := pos + len(query)
	leftBoundary := pos == 0 || !isWordRune(lastRune(key[:pos]))
	rightBoundary := end == len(key) || !isWordRune(firstRune(key[end:]))

	switch {
	case leftBoundary && rightBoundary:
		return priorityBothBoundaries, pos, true
	case leftBoundary || rightBoundary:
		return priorityOneBoundary, pos, true
	default:
		return priorityMidToken, pos, true
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

type fuzzyCandidate struct {
	slug       string
	similarity int
	distance   int
}

// fuzzyMatches runs the second search stage: approximate matches for
// the remaining result slots, excluding slugs the substring stage
// already returned.
func (i *Index) fuzzyMatches(queryNorm string, remaining int, minSimilarity float64, seen *strset.Set) []string {
	maxDist := int(float64(utf8.RuneCountInString(queryNorm)) * (1 - minSimilarity))
	if maxDist < 0 {
		maxDist = 0
	}
	threshold := minSimilarity * 100

	var candidates []fuzzyCandidate
	if i.tree != nil && !i.tree.Empty() {
		// Collect everything within the distance budget: similarity
		// ordering is not identical to raw distance ordering, so
		// truncating here could drop a higher-similarity candidate
		// sitting at a larger edit distance.
		for _, r := range i.tree.Search(queryNorm, maxDist, i.tree.Len()) {
			if seen.Has(r.Slug) {
				continue
			}
			sim := i.similarity(queryNorm, Normalize(r.Slug))
			if float64(sim) < threshold {
				continue
			}
			candidates = append(candidates, fuzzyCandidate{
				slug:       r.Slug,
				similarity: sim,
				distance:   r.Distance,
			})
		}
	} else {
		candidates = i.scanFuzzyCandidates(queryNorm, remaining, maxDist, threshold, seen)
	}

	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.similarity != cb.similarity {
			return ca.similarity > cb.similarity
		}
		if ca.distance != cb.distance {
			return ca.distance < cb.distance
		}
		return ca.slug < cb.slug
	})

	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}

	matches := make([]string, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, c.slug)
	}
	return matches
}

// scanFuzzyCandidates is the no-tree fallback: a single pass over all
// entries keeping only the best `remaining` candidates in a bounded
// heap, rather than scoring and sorting the whole index.
func (i *Index) scanFuzzyCandidates(queryNorm string, remaining, maxDist int, threshold float64, seen *strset.Set) []fuzzyCandidate {
	queryLen := utf8.RuneCountInString(queryNorm)

	h := &candidateHeap{}
	heap.Init(h)

	for _, e := range i.entries {
		if seen.Has(e.slug) {
			continue
		}

		// A length gap larger than the edit budget cannot meet the
		// threshold; skip the distance computation entirely.
		lenDiff := utf8.RuneCountInString(e.normalized) - queryLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > maxDist {
			continue
		}

		d := i.dist(queryNorm, e.normalized)
		if d > maxDist {
			continue
		}

		sim := i.similarity(queryNorm, e.normalized)
		if float64(sim) < threshold {
			continue
		}

		heap.Push(h, fuzzyCandidate{slug: e.slug, similarity: sim, distance: d})
		if h.Len() > remaining {
			heap.Pop(h)
		}
	}

	candidates := make([]fuzzyCandidate, h.Len())
	for idx := len(candidates) - 1; idx >= 0; idx-- {
		candidates[idx] = heap.Pop(h).(fuzzyCandidate)
	}
	return candidates
}

// similarity scores two normalized strings on a 0-100 scale. Multi-word
// inputs are compared with their tokens sorted, so word order does not
// penalize otherwise identical names.
func (i *Index) similarity(a, b string) int {
	if a == b {
		return 100
	}

	if strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ') {
		a = sortedTokens(a)
		b = sortedTokens(b)
		if a == b {
			return 100
		}
	}

	return i.ratio(a, b)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ratio converts edit distance into a 0-100 similarity over the longer
// of the two strings.
func (i *Index) ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}

	d := i.dist(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(longest))))
}

// candidateHeap is a min-heap ordered worst-candidate-first, so the
// root is always the next to evict once the heap is over capacity.
type candidateHeap []fuzzyCandidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(a, b int) bool {
	if h[a].similarity != h[b].similarity {
		return h[a].similarity < h[b].similarity
	}
	if h[a].distance != h[b].distance {
		return h[a].distance > h[b].distance
	}
	return h[a].slug > h[b].slug
}

func (h candidateHeap) Swap(a, b int) { h[a], h[b] = h[b], h[a] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(fuzzyCandidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
