// Package pathutil maps request paths onto a fixed set of route templates
// so they can be used as metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// OtherRoute is the label for any path the router does not serve.
const OtherRoute = "/other"

// staticRoutes are served as-is.
var staticRoutes = map[string]struct{}{
	"/":                     {},
	"/health":               {},
	"/health/channels":      {},
	"/metrics":              {},
	"/api/sentiment/today":  {},
	"/api/sentiment/report": {},
	"/api/vectors/stats":    {},
}

type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

var pathPatterns = []pathPattern{
	{pattern: regexp.MustCompile(`^/api/sentiment/top/[A-Za-z]+$`), template: "/api/sentiment/top/:label"},
}

// NormalizePath strips the query string and a trailing slash, then
// returns the matching route template. Unknown paths collapse to
// OtherRoute so scanners cannot grow the label set.
//
//	NormalizePath("/api/sentiment/top/positive") // "/api/sentiment/top/:label"
//	NormalizePath("/health?verbose=1")           // "/health"
//	NormalizePath("/wp-login.php")               // "/other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if _, ok := staticRoutes[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return OtherRoute
}

// ExpectedCardinality returns the number of distinct labels NormalizePath
// can produce.
func ExpectedCardinality() int {
	return len(staticRoutes) + len(pathPatterns) + 1
}
