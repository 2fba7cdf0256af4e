// Package urlx canonicalizes lead URLs: tracking parameters are stripped and
// shortener/indirection links are resolved to the real destination. The
// canonical form is the dedup key for the whole pipeline.
package urlx

import (
	"net/url"
	"strings"
)

// trackingParams are query keys dropped outright.
var trackingParams = map[string]struct{}{
	"ref": {}, "utm_source": {}, "utm_medium": {}, "utm_campaign": {},
	"utm_term": {}, "utm_content": {}, "source": {}, "campaign": {},
	"medium": {}, "referrer": {}, "affiliate": {}, "partner": {},
	"fbclid": {}, "gclid": {}, "msclkid": {}, "twclid": {},
	"_ga": {}, "_gl": {}, "mc_eid": {},
	"futuretools": {}, "producthunt": {}, "betalist": {}, "indiehackers": {},
}

// trackingSubstrings catch tracking keys not in the fixed set, e.g.
// "utm_id" or "ref_src".
var trackingSubstrings = []string{"utm_", "ref", "source", "campaign"}

func isTrackingKey(key string) bool {
	k := strings.ToLower(key)
	if _, ok := trackingParams[k]; ok {
		return true
	}
	for _, sub := range trackingSubstrings {
		if strings.Contains(k, sub) {
			return true
		}
	}
	return false
}

// Clean strips tracking query parameters and the fragment, and trims a single
// trailing slash. Clean is idempotent and never fails: unparsable input is
// returned as-is.
func Clean(raw string) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingKey(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""

	cleaned := u.String()

	// Trim one trailing slash, keeping the scheme's own slashes intact.
	if strings.HasSuffix(cleaned, "/") && len(cleaned) > len(u.Scheme)+3 {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}

	return cleaned
}

// indirectionHosts are known shortener/redirect services whose links must be
// followed to find the real destination.
var indirectionHosts = []string{
	"futuretools.link",
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"rb.gy",
}

// IsIndirection reports whether a URL points at a known shortener or carries
// an explicit redirect marker.
func IsIndirection(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range indirectionHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(raw), "redirect")
}
