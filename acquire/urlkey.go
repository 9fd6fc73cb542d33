package acquire

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/idna"
)

// NormalizeURL canonicalizes u per the cache-key invariant: lowercase the
// host, force the scheme to http, and strip a leading "www.", so that
// "https://www.x/" and "http://x/" share the same cache key.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}

	host := lowercaseHost(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	parsed.Scheme = "http"
	parsed.Host = host

	return parsed.String()
}

// lowercaseHost lowercases host using idna's ASCII-safe transform,
// falling back to a plain strings.ToLower for hosts idna rejects (IP
// literals, hosts carrying a port).
func lowercaseHost(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return strings.ToLower(host)
	}
	return ascii
}

// HashNormalizedURL produces the stable, non-negative decimal integer
// the cache filename embeds as "s{hash}", fixing the Open Question left
// unspecified beyond "produces an integer".
func HashNormalizedURL(rawURL string) string {
	h := xxhash.Sum64String(NormalizeURL(rawURL))
	signed := int64(h)
	if signed < 0 {
		signed = -signed
	}
	return strconv.FormatInt(signed, 10)
}
