package crawler

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"sjsage522/refundscraper/helpers"
)

// DefaultKeywords mark a link as a game rules, winners or refund page
var DefaultKeywords = []string{"reglement", "gagnants", "remboursement", "jeux"}

// genericLinkPatterns follow any source-specific patterns. The first targets
// the path shapes broadcasters use for game pages, the second is every anchor.
var genericLinkPatterns = []string{
	`(?i)<a\s[^>]*?href\s*=\s*["']([^"'#][^"']*/(?:jeux|jeux-concours|jeu|reglements?|gagnants)(?:[/?\-][^"']*)?)["']`,
	`(?i)<a\s[^>]*?href\s*=\s*["']([^"']+)["']`,
}

// LinkDiscovery finds candidate detail pages on a listing page
type LinkDiscovery struct {
	origin   *url.URL
	patterns []*regexp.Regexp
	keywords []string
	seeds    []string
}

// NewLinkDiscovery compiles the source patterns followed by the generic ones
func NewLinkDiscovery(origin string, patterns, keywords, seeds []string) (*LinkDiscovery, error) {
	base, err := url.Parse(origin)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid origin %q", origin)
	}

	d := &LinkDiscovery{
		origin:   base,
		keywords: keywords,
		seeds:    seeds,
	}
	if len(d.keywords) == 0 {
		d.keywords = DefaultKeywords
	}

	for _, p := range append(append([]string{}, patterns...), genericLinkPatterns...) {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile link pattern %q: %w", p, err)
		}
		d.patterns = append(d.patterns, re)
	}
	return d, nil
}

// Discover returns absolute, relevant, de-duplicated links in first-seen
// order. Every pattern contributes; when nothing relevant remains the seed
// list is returned instead.
func (d *LinkDiscovery) Discover(markup string) []string {
	var candidates []string
	for _, re := range d.patterns {
		for _, m := range re.FindAllStringSubmatch(markup, -1) {
			if abs, ok := d.resolve(m[1]); ok {
				candidates = append(candidates, abs)
			}
		}
	}

	seen := make(map[string]bool)
	var links []string
	for _, link := range candidates {
		if seen[link] || !d.relevant(link) {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	if len(links) == 0 {
		return append([]string(nil), d.seeds...)
	}
	return links
}

func (d *LinkDiscovery) resolve(href string) (string, bool) {
	href = strings.TrimSpace(html.UnescapeString(href))
	lower := strings.ToLower(href)
	if href == "" ||
		strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := d.origin.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

func (d *LinkDiscovery) relevant(link string) bool {
	if unescaped, err := url.PathUnescape(link); err == nil {
		link = unescaped
	}
	folded := helpers.FoldAccents(link)
	for _, kw := range d.keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
