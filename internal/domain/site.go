package domain

import (
	"net/url"
	"strings"
)

// SiteFromURL extracts the site domain from a URL, lowercased and with a
// leading "www." stripped. Returns "unknown" for unparseable input.
func SiteFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
