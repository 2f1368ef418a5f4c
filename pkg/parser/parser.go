// Package parser extracts structured article content from raw HTML
// pages. It is pure and stateless: every method derives its answer
// from the parsed document alone.
package parser

import (
	"fmt"
	"strings"

	"github.com/bobesa/go-domain-util/domainutil"
	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kvasirlabs/grokipedia-go/pkg/models"
)

var factCheckPattern = regexp2.MustCompile(`Fact-checked by\s+(.+?)(?:\.|$)`, regexp2.IgnoreCase)

// Document is a parsed HTML article page.
type Document struct {
	root *html.Node
}

// Parse parses raw HTML into a Document.
func Parse(rawHTML string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Title returns the first h1 heading, or fallback when the page has
// none.
func (d *Document) Title(fallback string) string {
	if h1 := findFirst(d.root, atom.H1); h1 != nil {
		if title := textContent(h1); title != "" {
			return title
		}
	}
	return fallback
}

// Summary returns the article intro: the og:description (or plain
// description) meta tag when present, otherwise the first substantial
// paragraph.
func (d *Document) Summary() string {
	if content := metaContent(d.root, "og:description"); content != "" {
		return content
	}
	if content := metaContent(d.root, "description"); content != "" {
		return content
	}

	var summary string
	visit(d.root, func(n *html.Node) bool {
		if summary != "" {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			text := textContent(n)
			if len(text) > 200 && !strings.HasPrefix(text, "Jump to") && !strings.HasPrefix(text, "From ") {
				summary = text
				return false
			}
		}
		return true
	})
	return summary
}

// Sections returns the article's sections in document order along
// with the table of contents (the ordered section titles). The page
// title (h1) is not a section.
func (d *Document) Sections() ([]models.Section, []string) {
	var (
		sections []models.Section
		toc      []string
	)

	visit(d.root, func(n *html.Node) bool {
		level := headingLevel(n)
		if level < 2 {
			return true
		}

		title := textContent(n)
		if title == "" {
			return true
		}
		toc = append(toc, title)

		var parts []string
		for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if headingLevel(sibling) > 0 {
				break
			}
			if text := textContent(sibling); text != "" {
				parts = append(parts, text)
			}
		}

		sections = append(sections, models.Section{
			Title:   title,
			Content: strings.Join(parts, " "),
			Level:   level,
		})
		return true
	})

	return sections, toc
}

// References returns the deduplicated external reference URLs in
// document order. Links under a References heading win; when no such
// heading exists, every external link is collected except those
// pointing back at excludeDomain.
func (d *Document) References(excludeDomain string) []string {
	var refs []string

	if heading := d.findReferencesHeading(); heading != nil {
		for sibling := heading.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if lvl := headingLevel(sibling); lvl == 1 || lvl == 2 {
				break
			}
			if sibling.Type != html.ElementNode {
				continue
			}
			switch sibling.DataAtom {
			case atom.Ol, atom.Ul, atom.P, atom.Div:
				refs = append(refs, externalLinks(sibling, "")...)
			}
		}
	}

	if len(refs) == 0 {
		refs = externalLinks(d.root, excludeDomain)
	}

	seen := make(map[string]bool, len(refs))
	unique := refs[:0]
	for _, ref := range refs {
		if !seen[ref] {
			seen[ref] = true
			unique = append(unique, ref)
		}
	}
	return unique
}

// FactCheck returns the fact-check attribution declared by the page,
// or "" when there is none.
func (d *Document) FactCheck() string {
	if content := metaContent(d.root, "og:description"); strings.Contains(content, "Fact-checked") {
		if who := matchFactCheck(content); who != "" {
			return who
		}
	}

	var found string
	visit(d.root, func(n *html.Node) bool {
		if found != "" {
			return false
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, "Fact-checked by") {
			if who := matchFactCheck(strings.TrimSpace(n.Data)); who != "" {
				found = who
				return false
			}
		}
		return true
	})
	return found
}

// FullText returns the readable page text with chrome elements
// (scripts, styles, navigation, header, footer, buttons) removed.
func (d *Document) FullText() string {
	var parts []string
	visit(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Nav, atom.Header, atom.Footer, atom.Button:
				return false
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// WordCount counts the whitespace-separated words of s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func (d *Document) findReferencesHeading() *html.Node {
	var heading *html.Node
	visit(d.root, func(n *html.Node) bool {
		if heading != nil {
			return false
		}
		if n.Type != html.ElementNode {
			return true
		}

		if attrValue(n, "id") == "references" || attrValue(n, "id") == "References" {
			heading = n
			return false
		}

		if n.DataAtom == atom.H2 || n.DataAtom == atom.H3 {
			title := strings.ToLower(textContent(n))
			if title == "references" || title == "reference" {
				heading = n
				return false
			}
		}
		return true
	})
	return heading
}

func matchFactCheck(s string) string {
	m, err := factCheckPattern.FindStringMatch(s)
	if err != nil || m == nil {
		return ""
	}
	return strings.TrimSpace(m.GroupByNumber(1).String())
}

// externalLinks collects http(s) hrefs under n, skipping those within
// excludeDomain when set.
func externalLinks(n *html.Node, excludeDomain string) []string {
	var links []string
	visit(n, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.DataAtom == atom.A {
			href := attrValue(node, "href")
			if strings.HasPrefix(href, "http") {
				if excludeDomain == "" || domainutil.Domain(href) != excludeDomain {
					links = append(links, href)
				}
			}
		}
		return true
	})
	return links
}

// visit walks the tree depth-first; fn returning false prunes the
// node's subtree.
func visit(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child, fn)
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	visit(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && node.DataAtom == a {
			found = node
			return false
		}
		return true
	})
	return found
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func metaContent(root *html.Node, nameOrProperty string) string {
	var content string
	visit(root, func(n *html.Node) bool {
		if content != "" {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			if attrValue(n, "property") == nameOrProperty || attrValue(n, "name") == nameOrProperty {
				content = strings.TrimSpace(attrValue(n, "content"))
				return false
			}
		}
		return true
	})
	return content
}

func textContent(n *html.Node) string {
	var parts []string
	visit(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				parts = append(parts, text)
			}
		}
		return true
	})
	return strings.Join(parts, " ")
}
