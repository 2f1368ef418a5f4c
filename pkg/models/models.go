// Package models defines the article data structures returned by the
// client.
package models

// Section is one titled block of article content with its heading
// level (2 for h2, 3 for h3, and so on).
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// ArticleMetadata carries ancillary article facts.
type ArticleMetadata struct {
	// FactChecked names the fact-check attribution when the page
	// declares one, e.g. "Grok".
	FactChecked string `json:"fact_checked,omitempty"`
	WordCount   int    `json:"word_count"`
}

// Article is a fully fetched and parsed article.
type Article struct {
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	URL             string          `json:"url"`
	Summary         string          `json:"summary"`
	FullContent     string          `json:"full_content"`
	Sections        []Section       `json:"sections"`
	TableOfContents []string        `json:"table_of_contents"`
	References      []string        `json:"references"`
	Metadata        ArticleMetadata `json:"metadata"`
	ScrapedAt       string          `json:"scraped_at"`
}

// ArticleSummary is the lightweight form returned by summary fetches:
// intro text and a truncated table of contents, without section bodies
// or references.
type ArticleSummary struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	URL             string   `json:"url"`
	Summary         string   `json:"summary"`
	TableOfContents []string `json:"table_of_contents"`
	ScrapedAt       string   `json:"scraped_at"`
}
