package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by any pattern. Patterns
// are exact origins, "*", or a scheme with a wildcard subdomain such as
// "https://*.example.com", which does not match the bare domain.
func matchCORSOrigin(origin string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "*", p == origin:
			return true
		case strings.Contains(p, "://*."):
			if matchWildcardOrigin(origin, p) {
				return true
			}
		}
	}
	return false
}

func matchWildcardOrigin(origin, pattern string) bool {
	pu, err := url.Parse(strings.Replace(pattern, "*.", "", 1))
	if err != nil || pu.Host == "" {
		return false
	}
	ou, err := url.Parse(origin)
	if err != nil || ou.Host == "" {
		return false
	}
	return ou.Scheme == pu.Scheme && strings.HasSuffix(ou.Host, "."+pu.Host)
}
