package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var pkgNameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and collapses runs of hyphens, underscores and dots
// to a single hyphen, following PEP 503 normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return pkgNameSeparators.ReplaceAllString(s, "-")
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
