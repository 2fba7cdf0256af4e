// Package scrape extracts structural metadata straight from a tool's landing
// page: meta description, support email, auxiliary links, social profiles.
// It complements LLM enrichment with facts the page states directly.
package scrape

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/ai-navigator/ingest-cli/internal/fetch"
)

// PageData holds everything scraped from a single landing page. Any field
// may be empty; scraping is best-effort.
type PageData struct {
	MetaDescription  string
	SupportEmail     string
	PricingURL       string
	ContactURL       string
	PrivacyPolicyURL string
	DocumentationURL string
	CommunityURL     string
	SocialLinks      map[string]string
}

// Scanner fetches and scans landing pages.
type Scanner struct {
	fetcher fetch.Client
}

// NewScanner creates a Scanner backed by the given fetcher.
func NewScanner(f fetch.Client) *Scanner {
	return &Scanner{fetcher: f}
}

// Scan fetches the page and extracts structural metadata. A fetch or parse
// failure returns an error; callers treat that as an empty result.
func (s *Scanner) Scan(ctx context.Context, pageURL string) (*PageData, error) {
	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch page")
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("scrape: status %d for %s", resp.StatusCode, pageURL)
	}
	return ParsePage(pageURL, resp.Body)
}

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// supportMailboxes mark an address as a support contact.
var supportMailboxes = []string{"support", "help", "contact", "info"}

// socialHosts maps recognized platforms to the substring identifying them in
// an outbound link.
var socialHosts = map[string]string{
	"twitter":  "twitter.com/",
	"x":        "x.com/",
	"linkedin": "linkedin.com/company/",
	"github":   "github.com/",
	"youtube":  "youtube.com/",
	"facebook": "facebook.com/",
	"discord":  "discord.gg/",
}

// ParsePage extracts structural metadata from raw HTML.
func ParsePage(pageURL string, body []byte) (*PageData, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	data := &PageData{}
	var textParts []string

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			textParts = append(textParts, n.Data)
		case html.ElementNode:
			switch n.Data {
			case "meta":
				if strings.EqualFold(attrVal(n, "name"), "description") && data.MetaDescription == "" {
					data.MetaDescription = strings.TrimSpace(attrVal(n, "content"))
				}
			case "a":
				classifyLink(pageURL, n, data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	// Support email: first address with a support-like mailbox.
	for _, email := range emailRe.FindAllString(strings.Join(textParts, " "), -1) {
		lower := strings.ToLower(email)
		for _, word := range supportMailboxes {
			if strings.Contains(lower, word) {
				data.SupportEmail = email
				break
			}
		}
		if data.SupportEmail != "" {
			break
		}
	}

	return data, nil
}

// classifyLink routes one anchor into the auxiliary-link or social-link
// slots. First hit wins for each slot.
func classifyLink(pageURL string, n *html.Node, data *PageData) {
	href := strings.TrimSpace(attrVal(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return
	}

	lowerHref := strings.ToLower(href)
	text := strings.ToLower(nodeText(n))

	for platform, marker := range socialHosts {
		if strings.Contains(lowerHref, marker) {
			if data.SocialLinks == nil {
				data.SocialLinks = make(map[string]string)
			}
			if _, seen := data.SocialLinks[platform]; !seen {
				data.SocialLinks[platform] = href
			}
			return
		}
	}

	abs := func() string { return absolutize(pageURL, href) }
	switch {
	case data.PricingURL == "" && (strings.Contains(lowerHref, "pricing") || strings.Contains(text, "pricing")):
		data.PricingURL = abs()
	case data.PrivacyPolicyURL == "" && (strings.Contains(lowerHref, "privacy") || strings.Contains(text, "privacy")):
		data.PrivacyPolicyURL = abs()
	case data.DocumentationURL == "" && (strings.Contains(lowerHref, "docs") || strings.Contains(lowerHref, "documentation")):
		data.DocumentationURL = abs()
	case data.CommunityURL == "" && (strings.Contains(lowerHref, "community") || strings.Contains(lowerHref, "discord") || strings.Contains(lowerHref, "slack")):
		data.CommunityURL = abs()
	case data.ContactURL == "" && (strings.Contains(lowerHref, "contact") || strings.Contains(text, "contact")):
		data.ContactURL = abs()
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func absolutize(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
