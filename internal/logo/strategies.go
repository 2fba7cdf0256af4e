package logo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// logoAttrHints mark an img element as logo-like when found in its alt,
// class, id, or src attributes.
var logoAttrHints = []string{"logo", "brand"}

// iconSelectors list link-icon rel/size pairs in preference order, larger
// declared sizes first.
var iconSelectors = []struct {
	rel  string
	size string
}{
	{"apple-touch-icon", "180"},
	{"apple-touch-icon", "152"},
	{"apple-touch-icon", "144"},
	{"apple-touch-icon", "120"},
	{"apple-touch-icon-precomposed", "180"},
	{"apple-touch-icon-precomposed", "152"},
	{"icon", "192"},
	{"icon", "180"},
	{"icon", "96"},
	{"mask-icon", ""},
}

// scrapePageMarkup scans the landing page for logo-like img elements and
// high-resolution icon links.
func scrapePageMarkup(ctx context.Context, r *Resolver, t *target) (string, error) {
	body := t.page(ctx, r.fetcher)
	if body == nil {
		return "", eris.New("logo: page unavailable")
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "logo: parse page")
	}

	var imgCandidates, headerImgs []string
	var icons = make(map[string]string) // rel+size -> href

	var inHeader int
	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "header", "nav":
				inHeader++
				defer func() { inHeader-- }()
			case "img":
				src := attrVal(n, "src")
				if src == "" {
					break
				}
				if isLogoLike(n) {
					imgCandidates = append(imgCandidates, src)
				} else if inHeader > 0 {
					headerImgs = append(headerImgs, src)
				}
			case "link":
				rel := strings.ToLower(attrVal(n, "rel"))
				sizes := attrVal(n, "sizes")
				href := attrVal(n, "href")
				if href != "" {
					icons[rel+"|"+sizes] = href
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	// Logo-like imgs first, then icon links by declared size, then any
	// header/nav img as a last markup resort.
	for _, src := range imgCandidates {
		if abs := absolutize(t.pageURL, src); abs != "" && r.validate(ctx, abs) {
			return abs, nil
		}
	}
	for _, sel := range iconSelectors {
		for key, href := range icons {
			parts := strings.SplitN(key, "|", 2)
			if parts[0] != sel.rel {
				continue
			}
			if sel.size != "" && !strings.Contains(parts[1], sel.size) {
				continue
			}
			if abs := absolutize(t.pageURL, href); abs != "" && r.validate(ctx, abs) {
				return abs, nil
			}
		}
	}
	for _, src := range headerImgs {
		if abs := absolutize(t.pageURL, src); abs != "" && r.validate(ctx, abs) {
			return abs, nil
		}
	}

	return "", eris.New("logo: no markup candidate validated")
}

func isLogoLike(n *html.Node) bool {
	for _, key := range []string{"alt", "class", "id", "src"} {
		v := strings.ToLower(attrVal(n, key))
		for _, hint := range logoAttrHints {
			if strings.Contains(v, hint) {
				return true
			}
		}
	}
	return false
}

// commonLogoPaths are conventional logo locations probed on the target host.
var commonLogoPaths = []string{
	"/logo.png", "/logo.svg", "/logo.jpg", "/logo.webp",
	"/assets/logo.png", "/assets/logo.svg",
	"/assets/images/logo.png", "/assets/images/logo.svg",
	"/static/logo.png", "/static/logo.svg",
	"/static/images/logo.png",
	"/images/logo.png", "/images/logo.svg",
	"/img/logo.png", "/img/logo.svg",
	"/media/logo.png", "/media/logo.svg",
	"/public/logo.png", "/public/logo.svg",
	"/brand.png", "/brand.svg",
	"/logo-192.png", "/logo-180.png", "/logo@2x.png",
}

// probeCommonPaths checks conventional logo file paths on the same host.
func probeCommonPaths(ctx context.Context, r *Resolver, t *target) (string, error) {
	if t.host == "" {
		return "", eris.New("logo: no host")
	}
	base := "https://" + t.host

	paths := commonLogoPaths
	// Company-name variants, e.g. /acme.png for acme.ai.
	if name, _, ok := strings.Cut(t.host, "."); ok && name != "" && name != "www" {
		paths = append(paths, "/"+name+".png", "/"+name+".svg", "/assets/"+name+".png")
	}

	for _, p := range paths {
		candidate := base + p
		if r.validate(ctx, candidate) {
			return candidate, nil
		}
	}
	return "", eris.New("logo: no common path validated")
}

var githubOrgRe = regexp.MustCompile(`github\.com/([A-Za-z0-9_.-]+)`)

// socialAvatar inspects outbound social links on the page and derives an
// avatar URL for recognized platforms (currently the GitHub org avatar
// convention).
func socialAvatar(ctx context.Context, r *Resolver, t *target) (string, error) {
	body := t.page(ctx, r.fetcher)
	if body == nil {
		return "", eris.New("logo: page unavailable")
	}

	m := githubOrgRe.FindSubmatch(body)
	if m == nil {
		return "", eris.New("logo: no social profile links")
	}
	org := string(m[1])

	candidate := fmt.Sprintf("https://github.com/%s.png?size=200", org)
	if r.validate(ctx, candidate) {
		return candidate, nil
	}
	return "", eris.New("logo: social avatar not validated")
}

// domainLookup queries the logo-by-domain lookup service, trying www
// variants of the host.
func domainLookup(ctx context.Context, r *Resolver, t *target) (string, error) {
	if t.host == "" {
		return "", eris.New("logo: no host")
	}

	variants := []string{t.host}
	if alt, found := strings.CutPrefix(t.host, "www."); found {
		variants = append(variants, alt)
	} else {
		variants = append(variants, "www."+t.host)
	}

	for _, domain := range variants {
		candidate := "https://logo.clearbit.com/" + domain
		if r.validate(ctx, candidate) {
			return candidate, nil
		}
	}
	return "", eris.New("logo: domain lookup not validated")
}

// faviconServices queries favicon-by-domain services, larger requested
// pixel sizes first.
func faviconServices(ctx context.Context, r *Resolver, t *target) (string, error) {
	if t.host == "" {
		return "", eris.New("logo: no host")
	}

	services := []string{
		fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=256", t.host),
		fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", t.host),
		fmt.Sprintf("https://icons.duckduckgo.com/ip2/%s.ico", t.host),
		fmt.Sprintf("https://favicon.yandex.net/favicon/%s", t.host),
	}
	for _, candidate := range services {
		if r.validate(ctx, candidate) {
			return candidate, nil
		}
	}
	return "", eris.New("logo: no favicon service validated")
}

// initialsPlaceholder terminates the cascade with a deterministic generated
// avatar. It never fails.
func initialsPlaceholder(_ context.Context, _ *Resolver, t *target) (string, error) {
	return placeholderURL(t.displayName), nil
}

var wordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// placeholderURL builds an initials-based avatar URL from the first letters
// of up to two significant words in the display name.
func placeholderURL(displayName string) string {
	var initials string
	for _, w := range wordRe.FindAllString(displayName, -1) {
		initials += strings.ToUpper(w[:1])
		if len(initials) == 2 {
			break
		}
	}
	if initials == "" {
		initials = "AI"
	}
	return fmt.Sprintf(
		"https://ui-avatars.com/api/?name=%s&size=128&background=6366f1&color=ffffff&bold=true&format=png",
		url.QueryEscape(initials),
	)
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// absolutize resolves a possibly-relative src against the page URL.
func absolutize(pageURL, src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
