package urlx

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ai-navigator/ingest-cli/internal/fetch"
	"github.com/ai-navigator/ingest-cli/internal/model"
)

// Resolver canonicalizes URLs, following redirect chains for known
// indirection hosts. Resolution is best-effort: any network or parse failure
// falls back to the cleaned original URL.
type Resolver struct {
	fetcher fetch.Client
}

// NewResolver creates a Resolver backed by the given fetcher.
func NewResolver(f fetch.Client) *Resolver {
	return &Resolver{fetcher: f}
}

// Canonicalize cleans a URL and, when it points at a shortener, resolves the
// redirect chain to the real destination. It never returns an error.
func (r *Resolver) Canonicalize(ctx context.Context, raw string) model.ResolvedURL {
	cleaned := Clean(raw)
	resolved := model.ResolvedURL{
		Original:  raw,
		Canonical: cleaned,
	}

	if !IsIndirection(cleaned) {
		return resolved
	}

	final, ok := r.followRedirects(ctx, cleaned)
	if !ok {
		return resolved
	}

	finalClean := Clean(final)
	if finalClean != "" && finalClean != cleaned && strings.HasPrefix(finalClean, "http") {
		zap.L().Debug("urlx: resolved indirection",
			zap.String("from", cleaned),
			zap.String("to", finalClean),
		)
		resolved.Canonical = finalClean
		resolved.WasRedirected = true
	}

	return resolved
}

// followRedirects fetches the URL letting the transport follow HTTP
// redirects, then scans the landing page for meta-refresh or script-level
// redirects when the chain dead-ends on another indirection page.
func (r *Resolver) followRedirects(ctx context.Context, target string) (string, bool) {
	resp, err := r.fetcher.Get(ctx, target)
	if err != nil {
		zap.L().Debug("urlx: redirect fetch failed", zap.String("url", target), zap.Error(err))
		return "", false
	}

	final := resp.FinalURL
	if final == "" {
		final = target
	}

	// Still parked on a shortener: the real target is in the document.
	if IsIndirection(final) && len(resp.Body) > 0 {
		if doc := extractDocumentRedirect(resp.Body); doc != "" {
			final = doc
		}
	}

	return final, true
}

var jsLocationRe = regexp.MustCompile(`window\.location[^"']*["'](https?://[^"']+)["']`)

// extractDocumentRedirect finds a meta-refresh target or a script-level
// location assignment in an HTML document. Returns "" when neither exists.
func extractDocumentRedirect(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var metaTarget, scriptTarget string

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if metaTarget == "" && strings.EqualFold(attr(n, "http-equiv"), "refresh") {
					metaTarget = parseRefreshContent(attr(n, "content"))
				}
			case "script":
				if scriptTarget == "" && n.FirstChild != nil {
					if m := jsLocationRe.FindStringSubmatch(n.FirstChild.Data); m != nil {
						scriptTarget = m[1]
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	if metaTarget != "" {
		return metaTarget
	}
	return scriptTarget
}

// parseRefreshContent extracts the url= part of a meta-refresh content
// attribute, e.g. "0; url=https://example.com".
func parseRefreshContent(content string) string {
	idx := strings.Index(strings.ToLower(content), "url=")
	if idx < 0 {
		return ""
	}
	target := strings.TrimSpace(content[idx+len("url="):])
	target = strings.Trim(target, `'"`)
	if !strings.HasPrefix(target, "http") {
		return ""
	}
	return target
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
