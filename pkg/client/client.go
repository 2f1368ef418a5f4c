// Package client fetches and parses articles from the origin, with a
// bounded LRU cache, shared rate limiting, and classified retries.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobesa/go-domain-util/domainutil"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kvasirlabs/grokipedia-go/pkg/cache"
	"github.com/kvasirlabs/grokipedia-go/pkg/config"
	"github.com/kvasirlabs/grokipedia-go/pkg/httputils"
	"github.com/kvasirlabs/grokipedia-go/pkg/limiter"
	"github.com/kvasirlabs/grokipedia-go/pkg/logger"
	"github.com/kvasirlabs/grokipedia-go/pkg/models"
	"github.com/kvasirlabs/grokipedia-go/pkg/parser"
	"github.com/kvasirlabs/grokipedia-go/pkg/runtime"
	"github.com/kvasirlabs/grokipedia-go/pkg/slugindex"
)

// DefaultMinSimilarity is the fuzzy-match threshold used by the
// convenience search methods.
const DefaultMinSimilarity = 0.6

// summaryTOCLimit truncates the table of contents on summary fetches.
const summaryTOCLimit = 10

// Client is the article fetch client. A single instance is safe for
// concurrent use; all goroutines share one cache and one rate limiter.
type Client struct {
	baseURL     string
	userAgent   string
	http        *http.Client
	cache       *cache.ArticleCache
	index       *slugindex.Index
	log         *logrus.Entry
	backoffBase time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithSlugIndex substitutes the slug index, e.g. one loading from a
// non-default location.
func WithSlugIndex(idx *slugindex.Index) Option {
	return func(c *Client) {
		c.index = idx
	}
}

// withBackoffBase shrinks the retry backoff unit so tests do not
// sleep for real seconds.
func withBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = d
	}
}

// New builds a Client from cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	defaults := config.Default()

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaults.BaseURL
	}

	cacheSize := cfg.CacheSize
	if cacheSize < 1 {
		cacheSize = cache.DefaultCapacity
	}
	articleCache, err := cache.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("grokipedia-go/%s (+https://github.com/kvasirlabs/grokipedia-go)", runtime.Version)
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		pair, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{pair}
	}

	c := &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		cache:     articleCache,
		index: slugindex.New(slugindex.Options{
			LinksDir: cfg.LinksDir,
			Fuzzy:    cfg.Fuzzy,
		}),
		log:         logger.GetLogger("client"),
		backoffBase: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http = httputils.NewRetryableHTTPClient(httputils.Options{
		Timeout:     timeout,
		MaxRetries:  maxRetries,
		BackoffBase: c.backoffBase,
		RateLimiter: limiter.New(cfg.RateLimit),
		TLSConfig:   tlsConfig,
		Log:         c.log,
	})

	return c, nil
}

// GetArticle fetches a complete article by slug. Articles are cached
// after the first fetch; concurrent misses for the same slug both get
// a usable article with the first writer's copy kept.
func (c *Client) GetArticle(ctx context.Context, slug string) (*models.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, newError(KindInvalidInput, slug, 0, errors.New("slug is empty"))
	}

	if article, ok := c.cache.Get(slug); ok {
		c.log.Tracef("Cache hit: %s", slug)
		return article, nil
	}

	pageURL := c.pageURL(slug)
	rawHTML, err := c.fetchHTML(ctx, pageURL, slug)
	if err != nil {
		return nil, err
	}

	article, err := c.buildArticle(slug, pageURL, rawHTML)
	if err != nil {
		return nil, newError(KindUnexpected, slug, 0, err)
	}

	return c.cache.PutIfAbsent(slug, article), nil
}

// GetSummary fetches just the intro and a short table of contents.
// Summaries are not cached.
func (c *Client) GetSummary(ctx context.Context, slug string) (*models.ArticleSummary, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, newError(KindInvalidInput, slug, 0, errors.New("slug is empty"))
	}

	pageURL := c.pageURL(slug)
	rawHTML, err := c.fetchHTML(ctx, pageURL, slug)
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(rawHTML)
	if err != nil {
		return nil, newError(KindUnexpected, slug, 0, err)
	}

	_, toc := doc.Sections()
	if len(toc) > summaryTOCLimit {
		toc = toc[:summaryTOCLimit]
	}

	return &models.ArticleSummary{
		Title:           doc.Title(strings.ReplaceAll(slug, "_", " ")),
		Slug:            slug,
		URL:             pageURL,
		Summary:         doc.Summary(),
		TableOfContents: toc,
		ScrapedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// GetSection fetches the article and returns the first section whose
// title contains sectionTitle (case-insensitive), or nil when no
// section matches.
func (c *Client) GetSection(ctx context.Context, slug, sectionTitle string) (*models.Section, error) {
	article, err := c.GetArticle(ctx, slug)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.ReplaceAll(sectionTitle, "_", " "))
	for idx := range article.Sections {
		if strings.Contains(strings.ToLower(article.Sections[idx].Title), want) {
			return &article.Sections[idx], nil
		}
	}
	return nil, nil
}

// GetArticles fetches several slugs concurrently, at most concurrency
// in flight at once. Results align with slugs; the first failure
// cancels the remaining fetches.
func (c *Client) GetArticles(ctx context.Context, slugs []string, concurrency int) ([]*models.Article, error) {
	if concurrency < 1 {
		concurrency = 4
	}

	results := make([]*models.Article, len(slugs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for idx, slug := range slugs {
		g.Go(func() error {
			article, err := c.GetArticle(ctx, slug)
			if err != nil {
				return err
			}
			results[idx] = article
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchSlug resolves a loose query against the local index. No
// network requests are made.
func (c *Client) SearchSlug(query string, limit int, fuzzy bool) []string {
	return c.index.Search(query, limit, fuzzy, DefaultMinSimilarity)
}

// FindSlug returns the single best matching slug for the query.
func (c *Client) FindSlug(query string) (string, bool) {
	return c.index.FindBestMatch(query, DefaultMinSimilarity)
}

// SlugExists reports whether the slug is in the local index.
func (c *Client) SlugExists(slug string) bool {
	return c.index.Exists(slug)
}

// ListAvailableArticles lists indexed slugs, optionally filtered by a
// case-insensitive prefix.
func (c *Client) ListAvailableArticles(prefix string, limit int) []string {
	return c.index.ListByPrefix(prefix, limit)
}

// TotalArticleCount returns the number of slugs in the local index.
func (c *Client) TotalArticleCount() int {
	return c.index.TotalCount()
}

// RandomArticles returns a random sample of indexed slugs.
func (c *Client) RandomArticles(count int) []string {
	return c.index.RandomSlugs(count)
}

// LoadIndex eagerly loads the slug index instead of on first query.
func (c *Client) LoadIndex() error {
	return c.index.Load()
}

// Index exposes the underlying slug index for callers needing the
// full search surface (custom similarity thresholds, load errors).
func (c *Client) Index() *slugindex.Index {
	return c.index
}

func (c *Client) pageURL(slug string) string {
	// PathEscape keeps identifier characters like underscore and
	// hyphen literal while encoding everything unsafe.
	return c.baseURL + "/page/" + url.PathEscape(slug)
}

func (c *Client) fetchHTML(ctx context.Context, pageURL, slug string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", newError(KindUnexpected, slug, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.classifyTransportError(slug, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindTransient, slug, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return string(body), nil
	case resp.StatusCode == http.StatusNotFound:
		return "", newError(KindNotFound, slug, resp.StatusCode, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", newError(KindTransient, slug, resp.StatusCode, errors.New("rate limited by origin"))
	case resp.StatusCode >= 500:
		return "", newError(KindTransient, slug, resp.StatusCode, errors.New("server error"))
	case resp.StatusCode >= 400:
		return "", newError(KindClientError, slug, resp.StatusCode, nil)
	default:
		return "", newError(KindUnexpected, slug, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// classifyTransportError maps request errors onto the error taxonomy:
// timeouts and connection failures are transient (the retry budget is
// already spent by the time they surface here), certificate problems
// and cancellations are not worth retrying.
func (c *Client) classifyTransportError(slug string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTransient, slug, 0, err)
	}

	if errors.Is(err, context.Canceled) {
		return newError(KindUnexpected, slug, 0, err)
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return newError(KindUnexpected, slug, 0, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return newError(KindTransient, slug, 0, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return newError(KindTransient, slug, 0, err)
	}

	return newError(KindUnexpected, slug, 0, err)
}

func (c *Client) buildArticle(slug, pageURL, rawHTML string) (*models.Article, error) {
	doc, err := parser.Parse(rawHTML)
	if err != nil {
		return nil, err
	}

	sections, toc := doc.Sections()
	fullContent := doc.FullText()

	return &models.Article{
		Title:           doc.Title(strings.ReplaceAll(slug, "_", " ")),
		Slug:            slug,
		URL:             pageURL,
		Summary:         doc.Summary(),
		FullContent:     fullContent,
		Sections:        sections,
		TableOfContents: toc,
		References:      doc.References(domainutil.Domain(c.baseURL)),
		Metadata: models.ArticleMetadata{
			FactChecked: doc.FactCheck(),
			WordCount:   parser.WordCount(fullContent),
		},
		ScrapedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
