// Package slugindex maintains an in-memory index of article slugs
// loaded from flat sitemap exports, answering substring, fuzzy, prefix
// and random-sample queries over it.
package slugindex

import (
	"bufio"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/kvasirlabs/grokipedia-go/pkg/bktree"
	"github.com/kvasirlabs/grokipedia-go/pkg/distance"
	"github.com/kvasirlabs/grokipedia-go/pkg/logger"
)

// Options configures an Index.
type Options struct {
	// LinksDir is the directory holding sitemap exports. Each
	// sitemap-* subdirectory contributes one names.txt file with one
	// slug per line.
	LinksDir string

	// Fuzzy controls whether a BK-tree is built during Load to back
	// approximate matching. Without it, fuzzy queries fall back to a
	// bounded linear scan.
	Fuzzy bool

	// Distance overrides the edit-distance function. Nil selects the
	// package default.
	Distance distance.Func
}

// LoadError records a source file that could not be read. Individual
// source failures never abort the load.
type LoadError struct {
	Path string
	Err  error
}

type entry struct {
	slug       string
	normalized string
}

// Index is a two-phase slug index: construct with New, populate with
// Load, then query freely. All state is immutable once Load returns,
// so queries need no locking.
type Index struct {
	opts Options
	log  *logrus.Entry
	dist distance.Func

	loadOnce sync.Once

	lookup   map[string]string
	entries  []entry
	slugs    []string
	tree     *bktree.Tree
	loadErrs []LoadError
}

// New returns an unloaded index over the given source directory.
func New(opts Options) *Index {
	dist := opts.Distance
	if dist == nil {
		dist = distance.Default
	}

	return &Index{
		opts:   opts,
		log:    logger.GetLogger("slugindex"),
		dist:   dist,
		lookup: make(map[string]string),
	}
}

// Normalize converts a slug to its lookup form: lower case with
// underscores replaced by spaces.
func Normalize(slug string) string {
	return strings.ToLower(strings.ReplaceAll(slug, "_", " "))
}

// Load reads every source file and builds the lookup structures. It is
// idempotent and safe to call from concurrent goroutines; only the
// first call does work, later calls return immediately with the state
// the first call produced.
func (i *Index) Load() error {
	i.loadOnce.Do(i.load)
	return nil
}

func (i *Index) load() {
	sources := i.discoverSources()

	unique := strset.New()
	for _, path := range sources {
		if err := i.loadSource(path, unique); err != nil {
			i.log.WithError(err).Warnf("Skipping unreadable source: %s", path)
			i.loadErrs = append(i.loadErrs, LoadError{Path: path, Err: err})
		}
	}

	i.slugs = unique.List()
	sort.Strings(i.slugs)

	i.entries = make([]entry, 0, len(i.slugs))
	for _, slug := range i.slugs {
		i.entries = append(i.entries, entry{slug: slug, normalized: Normalize(slug)})
	}

	if i.opts.Fuzzy {
		tree := bktree.New(i.dist)
		for _, e := range i.entries {
			tree.Add(e.slug, e.normalized)
		}
		i.tree = tree
	}

	i.log.Debugf("Loaded %d slugs from %d sources (%d failed)",
		len(i.slugs), len(sources), len(i.loadErrs))
}

// discoverSources walks the links directory for sitemap-*/names.txt
// files, returned in sorted order so load results are reproducible.
func (i *Index) discoverSources() []string {
	if i.opts.LinksDir == "" {
		return nil
	}
	if _, err := os.Stat(i.opts.LinksDir); err != nil {
		return nil
	}

	var (
		mu      sync.Mutex
		sources []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, i.opts.LinksDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != "names.txt" {
			return nil
		}
		if !strings.HasPrefix(filepath.Base(filepath.Dir(path)), "sitemap-") {
			return nil
		}

		mu.Lock()
		sources = append(sources, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		i.log.WithError(err).Warnf("Failed walking links directory: %s", i.opts.LinksDir)
	}

	sort.Strings(sources)
	return sources
}

func (i *Index) loadSource(path string, unique *strset.Set) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		slug := strings.TrimSpace(scanner.Text())
		if slug == "" {
			continue
		}

		unique.Add(slug)
		// Last write wins for slugs sharing a normalized form.
		i.lookup[Normalize(slug)] = slug
		i.lookup[strings.ToLower(slug)] = slug
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return nil
}

// LoadErrors returns the per-source failures recorded during Load.
func (i *Index) LoadErrors() []LoadError {
	return i.loadErrs
}

// Search resolves a loose query into up to limit slugs, best match
// first. Substring matches are ranked by the boundary scoring rules;
// when fuzzy is enabled, remaining slots are filled with approximate
// matches at or above minSimilarity (0.0-1.0).
func (i *Index) Search(query string, limit int, fuzzy bool, minSimilarity float64) []string {
	i.Load()

	if limit <= 0 {
		return nil
	}

	queryNorm := Normalize(strings.TrimSpace(query))
	if queryNorm == "" {
		if limit > len(i.slugs) {
			limit = len(i.slugs)
		}
		return append([]string(nil), i.slugs[:limit]...)
	}

	matches, seen := i.substringMatches(queryNorm, limit)
	if !fuzzy || len(matches) >= limit {
		return matches
	}

	return append(matches, i.fuzzyMatches(queryNorm, limit-len(matches), minSimilarity, seen)...)
}

// FindBestMatch returns the single best slug for the query, or false
// when nothing clears the similarity threshold.
func (i *Index) FindBestMatch(query string, minSimilarity float64) (string, bool) {
	results := i.Search(query, 1, true, minSimilarity)
	if len(results) == 0 {
		return "", false
	}
	return results[0], true
}

// Exists reports whether the slug, its lowered form, or its normalized
// form is known to the index.
func (i *Index) Exists(slug string) bool {
	i.Load()

	if _, ok := i.lookup[strings.ToLower(slug)]; ok {
		return true
	}
	if _, ok := i.lookup[Normalize(slug)]; ok {
		return true
	}

	pos := sort.SearchStrings(i.slugs, slug)
	return pos < len(i.slugs) && i.slugs[pos] == slug
}

// ListByPrefix returns up to limit slugs whose lowered form starts
// with the lowered prefix, in sorted slug order.
func (i *Index) ListByPrefix(prefix string, limit int) []string {
	i.Load()

	if limit <= 0 {
		return nil
	}

	prefixLower := strings.ToLower(prefix)
	var matches []string
	for _, slug := range i.slugs {
		if strings.HasPrefix(strings.ToLower(slug), prefixLower) {
			matches = append(matches, slug)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// TotalCount returns the number of unique slugs in the index.
func (i *Index) TotalCount() int {
	i.Load()
	return len(i.slugs)
}

// RandomSlugs returns a uniform sample of min(count, total) slugs
// without replacement.
func (i *Index) RandomSlugs(count int) []string {
	i.Load()

	if count <= 0 || len(i.slugs) == 0 {
		return nil
	}
	if count > len(i.slugs) {
		count = len(i.slugs)
	}

	sample := make([]string, 0, count)
	for _, idx := range rand.Perm(len(i.slugs))[:count] {
		sample = append(sample, i.slugs[idx])
	}
	return sample
}
