package slugindex

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLinksDir(t *testing.T, slugs ...string) string {
	t.Helper()

	dir := t.TempDir()
	sitemapDir := filepath.Join(dir, "sitemap-00000")
	require.NoError(t, os.MkdirAll(sitemapDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(sitemapDir, "names.txt"),
		[]byte(strings.Join(slugs, "\n")+"\n"),
		0o644,
	))
	return dir
}

func newLoadedIndex(t *testing.T, fuzzy bool, slugs ...string) *Index {
	t.Helper()

	idx := New(Options{LinksDir: writeLinksDir(t, slugs...), Fuzzy: fuzzy})
	require.NoError(t, idx.Load())
	return idx
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "joe biden", Normalize("Joe_Biden"))
	assert.Equal(t, "llm", Normalize("LLM"))
	assert.Equal(t, "", Normalize(""))
}

func TestIndex_LoadDeduplicatesAndSorts(t *testing.T) {
	idx := newLoadedIndex(t, false,
		"Joe_Biden", "Barack_Obama", "Joe_Biden", "", "  ", "Artificial_Intelligence")

	assert.Equal(t, 3, idx.TotalCount())
	assert.Equal(t, []string{"Artificial_Intelligence", "Barack_Obama", "Joe_Biden"},
		idx.ListByPrefix("", 100))
}

func TestIndex_MissingLinksDirIsEmpty(t *testing.T) {
	idx := New(Options{LinksDir: filepath.Join(t.TempDir(), "does-not-exist")})
	require.NoError(t, idx.Load())

	assert.Zero(t, idx.TotalCount())
	assert.Empty(t, idx.Search("anything", 10, true, 0.6))
}

func TestIndex_UnreadableSourceRecordedNotFatal(t *testing.T) {
	dir := writeLinksDir(t, "Joe_Biden")

	brokenDir := filepath.Join(dir, "sitemap-00001")
	require.NoError(t, os.MkdirAll(brokenDir, 0o755))
	require.NoError(t, os.Symlink(
		filepath.Join(dir, "missing-target.txt"),
		filepath.Join(brokenDir, "names.txt"),
	))

	idx := New(Options{LinksDir: dir})
	require.NoError(t, idx.Load())

	assert.Equal(t, 1, idx.TotalCount())
	require.Len(t, idx.LoadErrors(), 1)
	assert.Contains(t, idx.LoadErrors()[0].Path, "sitemap-00001")
}

func TestIndex_LoadIsIdempotent(t *testing.T) {
	dir := writeLinksDir(t, "Joe_Biden")
	idx := New(Options{LinksDir: dir})
	require.NoError(t, idx.Load())
	require.Equal(t, 1, idx.TotalCount())

	// New sources after the first load must not change loaded state.
	extraDir := filepath.Join(dir, "sitemap-00002")
	require.NoError(t, os.MkdirAll(extraDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(extraDir, "names.txt"), []byte("Barack_Obama\n"), 0o644))

	require.NoError(t, idx.Load())
	assert.Equal(t, 1, idx.TotalCount())
}

func TestIndex_SearchExact(t *testing.T) {
	idx := newLoadedIndex(t, false, "Joe_Biden")
	assert.Equal(t, []string{"Joe_Biden"}, idx.Search("Joe_Biden", 1, false, 0.6))
}

func TestIndex_SearchSubstringPriorities(t *testing.T) {
	idx := newLoadedIndex(t, false,
		"Art",        // exact match
		"Art_Museum", // boundary on both sides
		"Artistic",   // boundary on the left only
		"Cartoon",    // mid-token
	)

	results := idx.Search("art", 10, false, 0.6)
	assert.Equal(t, []string{"Art", "Art_Museum", "Artistic", "Cartoon"}, results)
}

func TestIndex_SearchEarlierOccurrenceWins(t *testing.T) {
	idx := newLoadedIndex(t, false, "Modern_Art", "Art_History")

	results := idx.Search("art", 10, false, 0.6)
	assert.Equal(t, []string{"Art_History", "Modern_Art"}, results)
}

func TestIndex_SearchFuzzyTypo(t *testing.T) {
	for _, fuzzyTree := range []bool{true, false} {
		idx := newLoadedIndex(t, fuzzyTree, "Joe_Biden", "Donald_Trump", "Barack_Obama")

		results := idx.Search("joe bidan", 5, true, 0.6)
		assert.Contains(t, results, "Joe_Biden", "tree=%v", fuzzyTree)
	}
}

func TestIndex_SearchFuzzyDisabled(t *testing.T) {
	idx := newLoadedIndex(t, true, "Joe_Biden")
	assert.Empty(t, idx.Search("joe bidan", 5, false, 0.6))
}

func TestIndex_SearchRespectsLimit(t *testing.T) {
	idx := newLoadedIndex(t, true,
		"Article_One", "Article_Two", "Article_Three", "Article_Four", "Article_Five")

	results := idx.Search("article", 3, true, 0.6)
	assert.Len(t, results, 3)

	results = idx.Search("article", 100, true, 0.6)
	assert.LessOrEqual(t, len(results), 5)
}

func TestIndex_SearchInvalidLimit(t *testing.T) {
	idx := newLoadedIndex(t, true, "Joe_Biden")
	assert.Empty(t, idx.Search("joe", 0, true, 0.6))
	assert.Empty(t, idx.Search("joe", -3, true, 0.6))
}

func TestIndex_SearchEmptyQueryReturnsHead(t *testing.T) {
	idx := newLoadedIndex(t, false, "Charlie", "Alpha", "Bravo")

	assert.Equal(t, []string{"Alpha", "Bravo"}, idx.Search("", 2, true, 0.6))
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, idx.Search("   ", 10, true, 0.6))
}

func TestIndex_SearchFuzzyExcludesSubstringMatches(t *testing.T) {
	idx := newLoadedIndex(t, true, "Joe_Biden", "Joe_Biden_Jr")

	results := idx.Search("joe biden", 10, true, 0.4)
	counts := map[string]int{}
	for _, r := range results {
		counts[r]++
	}
	for slug, n := range counts {
		assert.Equal(t, 1, n, "slug %s returned more than once", slug)
	}
}

func TestIndex_FindBestMatch(t *testing.T) {
	idx := newLoadedIndex(t, true, "Elon_Musk", "Joe_Biden")

	slug, ok := idx.FindBestMatch("elon musk", 0.6)
	require.True(t, ok)
	assert.Equal(t, "Elon_Musk", slug)

	_, ok = idx.FindBestMatch("zzzzzzzzzz", 0.9)
	assert.False(t, ok)
}

func TestIndex_Exists(t *testing.T) {
	idx := newLoadedIndex(t, false, "Joe_Biden")

	assert.True(t, idx.Exists("Joe_Biden"))
	assert.True(t, idx.Exists("joe_biden"))
	assert.True(t, idx.Exists("joe biden"))
	assert.False(t, idx.Exists("Barack_Obama"))
}

func TestIndex_ListByPrefix(t *testing.T) {
	idx := newLoadedIndex(t, false,
		"Artificial_Intelligence", "Artificial_Neural_Network", "article", "Biology")

	results := idx.ListByPrefix("Art", 1000)
	assert.Equal(t, []string{"Artificial_Intelligence", "Artificial_Neural_Network", "article"}, results)

	for _, slug := range results {
		assert.True(t, strings.HasPrefix(strings.ToLower(slug), "art"))
	}

	assert.Len(t, idx.ListByPrefix("Art", 2), 2)
	assert.Empty(t, idx.ListByPrefix("Art", 0))
}

func TestIndex_RandomSlugs(t *testing.T) {
	idx := newLoadedIndex(t, false, "A", "B", "C", "D", "E")

	sample := idx.RandomSlugs(3)
	assert.Len(t, sample, 3)

	seen := map[string]bool{}
	for _, s := range sample {
		assert.False(t, seen[s], "sample contains duplicate %s", s)
		seen[s] = true
		assert.True(t, idx.Exists(s))
	}

	assert.Len(t, idx.RandomSlugs(50), 5)
	assert.Empty(t, idx.RandomSlugs(0))
}

// The tree-backed fuzzy path and the linear scan must rank candidates
// identically, including at small limits where a dropped candidate
// would change the head of the result list.
func TestIndex_FuzzyTreeMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	alphabet := "abcdef_"

	seen := map[string]bool{}
	var slugs []string
	for len(slugs) < 150 {
		n := 2 + rng.Intn(8)
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		s := string(buf)
		if !seen[s] {
			seen[s] = true
			slugs = append(slugs, s)
		}
	}

	treeIdx := newLoadedIndex(t, true, slugs...)
	scanIdx := newLoadedIndex(t, false, slugs...)

	queries := []string{"abc", "fed_ab", "cab", "abcdef", "bee"}
	for _, query := range queries {
		for _, limit := range []int{1, 2, 5} {
			assert.Equal(t,
				scanIdx.Search(query, limit, true, 0.4),
				treeIdx.Search(query, limit, true, 0.4),
				"query=%q limit=%d", query, limit)
		}
	}
}

func TestIndex_MultipleSitemapSources(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"sitemap-00000": "Joe_Biden\n",
		"sitemap-00001": "Barack_Obama\nJoe_Biden\n",
	} {
		sub := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "names.txt"), []byte(content), 0o644))
	}

	idx := New(Options{LinksDir: dir})
	require.NoError(t, idx.Load())
	assert.Equal(t, 2, idx.TotalCount())
}
