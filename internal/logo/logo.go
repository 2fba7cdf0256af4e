// Package logo resolves a non-null logo URL for any entity. Six strategies
// are tried in order; the final initials-placeholder strategy cannot fail, so
// Resolve always returns a usable image URL.
package logo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/fetch"
)

// target carries everything a strategy may need. The landing page is fetched
// at most once and shared across strategies.
type target struct {
	pageURL     string
	host        string
	displayName string
	body        []byte
	bodyLoaded  bool
}

// strategy is one step in the fallback cascade. It returns a candidate URL
// or an error; candidates are validated by the resolver before acceptance.
type strategy struct {
	name string
	fn   func(ctx context.Context, r *Resolver, t *target) (string, error)
}

// Resolver runs the logo cascade.
type Resolver struct {
	fetcher    fetch.Client
	strategies []strategy
}

// NewResolver creates a Resolver with the full strategy cascade.
func NewResolver(f fetch.Client) *Resolver {
	return &Resolver{
		fetcher: f,
		strategies: []strategy{
			{name: "page_markup", fn: scrapePageMarkup},
			{name: "common_paths", fn: probeCommonPaths},
			{name: "social_avatar", fn: socialAvatar},
			{name: "domain_lookup", fn: domainLookup},
			{name: "favicon_service", fn: faviconServices},
			{name: "placeholder", fn: initialsPlaceholder},
		},
	}
}

// Resolve returns a logo URL for the entity. Never returns "".
func (r *Resolver) Resolve(ctx context.Context, canonicalURL, displayName string) string {
	t := &target{
		pageURL:     canonicalURL,
		host:        hostOf(canonicalURL),
		displayName: displayName,
	}

	for _, s := range r.strategies {
		candidate, err := s.fn(ctx, r, t)
		if err != nil || candidate == "" {
			if err != nil {
				zap.L().Debug("logo: strategy failed, trying next",
					zap.String("strategy", s.name),
					zap.String("url", canonicalURL),
					zap.Error(err),
				)
			}
			continue
		}
		zap.L().Debug("logo: resolved",
			zap.String("strategy", s.name),
			zap.String("logo_url", candidate),
		)
		return candidate
	}

	// Unreachable: the placeholder strategy never fails. Kept as a guard
	// so the contract holds even if the strategy list is reconfigured.
	return placeholderURL(displayName)
}

// page fetches and caches the landing page body for markup-based strategies.
func (t *target) page(ctx context.Context, f fetch.Client) []byte {
	if t.bodyLoaded {
		return t.body
	}
	t.bodyLoaded = true
	resp, err := f.Get(ctx, t.pageURL)
	if err != nil || resp.StatusCode >= 400 {
		return nil
	}
	t.body = resp.Body
	return t.body
}

// validate checks that a candidate URL is reachable and image-like.
// Well-known favicon/logo services are trusted without a proper
// content-type, since some do not set one on HEAD.
func (r *Resolver) validate(ctx context.Context, candidate string) bool {
	resp, err := r.fetcher.Head(ctx, candidate)
	if err != nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
	default:
		return false
	}

	ct := strings.ToLower(resp.ContentType)
	for _, imgType := range []string{"image/", "png", "jpg", "jpeg", "svg", "gif", "webp"} {
		if strings.Contains(ct, imgType) {
			return true
		}
	}

	lower := strings.ToLower(candidate)
	return strings.Contains(lower, "favicon") || strings.Contains(lower, "logo")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
