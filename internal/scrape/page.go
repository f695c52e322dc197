package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"gatebank/internal/domain"
	"golang.org/x/net/html"
)

// Listing is one parsed page of a tag listing.
type Listing struct {
	Questions []domain.RawQuestion
	HasNext   bool
}

// TagCandidates returns the tag spellings the forum has used for one
// exam sitting, most common first. Probing stops at the first tag that
// yields questions.
func TagCandidates(year, set int) []string {
	if set > 0 {
		return []string{
			fmt.Sprintf("gatecse-%d-set%d", year, set),
			fmt.Sprintf("gatecse-%d-set-%d", year, set),
			fmt.Sprintf("gate%d-set%d", year, set),
		}
	}
	return []string{
		fmt.Sprintf("gatecse-%d", year),
		fmt.Sprintf("gate%d", year),
		fmt.Sprintf("gateit-%d", year),
	}
}

// ListingURL builds the URL for one page of a tag listing.
func ListingURL(base, tag string, page int) string {
	base = strings.TrimRight(base, "/")
	if page <= 1 {
		return fmt.Sprintf("%s/tag/%s", base, tag)
	}
	return fmt.Sprintf("%s/tag/%s?start=%d", base, tag, (page-1)*20)
}

// ParseListing extracts the questions from one listing page. The year
// tag is appended by the caller, not derived here.
func ParseListing(data []byte) (Listing, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Listing{}, fmt.Errorf("parse listing: %w", err)
	}

	var listing Listing
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "qa-q-list-item"):
				if q, ok := parseItem(n); ok {
					listing.Questions = append(listing.Questions, q)
				}
				return
			case n.Data == "a" && hasClass(n, "qa-page-next"):
				listing.HasNext = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return listing, nil
}

func parseItem(item *html.Node) (domain.RawQuestion, bool) {
	var q domain.RawQuestion

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "qa-q-item-title"):
				if a := findAnchor(n); a != nil {
					q.Title = strings.TrimSpace(textContent(a))
					q.Link = attr(a, "href")
				}
			case hasClass(n, "qa-q-item-content"):
				q.Question = strings.TrimSpace(innerHTML(n))
			case n.Data == "a" && hasClass(n, "qa-tag-link"):
				if tag := strings.TrimSpace(textContent(n)); tag != "" {
					q.Tags = append(q.Tags, tag)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(item)

	if q.Title == "" || q.Link == "" {
		return domain.RawQuestion{}, false
	}
	return q, true
}

func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func findAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := findAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func innerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
