package pypi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
	"github.com/tkoester/pinset/pkg/integrations"
)

// DefaultBaseURL is the production PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

var (
	depRE    = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)`)
	markerRE = regexp.MustCompile(`;\s*(.+)`)
	skipRE   = regexp.MustCompile(`extra|dev|test`)
)

// PackageInfo holds latest-release metadata for a Python package from PyPI.
//
// Package names are normalized following PEP 503 (lowercase, underscores to
// hyphens). Dependencies list only runtime dependencies; extras, dev, and
// test deps are excluded.
type PackageInfo struct {
	Name         string   // Normalized package name (e.g., "flask")
	Version      string   // Latest release version (e.g., "1.0.2")
	Dependencies []string // Direct runtime dependencies, normalized names
	Summary      string   // Short package description (may be empty)
	License      string   // License name or expression (may be empty)
	Author       string   // Author name (may be empty)
	HomePage     string   // Homepage URL (may be empty)
}

// ReleaseInfo holds metadata for one exact pinned release.
type ReleaseInfo struct {
	Name         string   // Normalized package name
	Version      string   // The requested exact version
	Dependencies []string // Direct runtime dependencies of this release
	Yanked       bool     // Whether the release was yanked from PyPI
	YankedReason string   // Maintainer-supplied reason, if any
	Summary      string
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
// Pass cache.NewNullCache() to disable caching. An empty baseURL selects
// [DefaultBaseURL]; tests point it at an httptest server.
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "pypi", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackage retrieves latest-release metadata for a package.
//
// The pkg parameter is normalized automatically. If refresh is true, the
// cache is bypassed and a fresh API call is made.
//
// Returns [integrations.ErrNotFound] if the package doesn't exist and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetchPackage(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchRelease retrieves metadata for one exact version of a package.
//
// Returns [integrations.ErrNotFound] if the package or the specific
// release doesn't exist.
func (c *Client) FetchRelease(ctx context.Context, pkg, version string, refresh bool) (*ReleaseInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	key := pkg + "==" + version

	var info ReleaseInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetchRelease(ctx, pkg, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetchPackage(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:         integrations.NormalizePkgName(data.Info.Name),
		Version:      data.Info.Version,
		Dependencies: extractDeps(data.Info.RequiresDist),
		Summary:      data.Info.Summary,
		License:      extractLicenseType(data.Info.License, data.Info.Classifiers),
		Author:       data.Info.Author,
		HomePage:     data.Info.HomePage,
	}
	return nil
}

func (c *Client) fetchRelease(ctx context.Context, pkg, version string, info *ReleaseInfo) error {
	var data apiResponse
	url := fmt.Sprintf("%s/%s/%s/json", c.baseURL, pkg, integrations.URLEncode(version))
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi release %s==%s", err, pkg, version)
		}
		return err
	}

	*info = ReleaseInfo{
		Name:         integrations.NormalizePkgName(data.Info.Name),
		Version:      version,
		Dependencies: extractDeps(data.Info.RequiresDist),
		Yanked:       data.Info.Yanked,
		YankedReason: data.Info.YankedReason,
		Summary:      data.Info.Summary,
	}
	return nil
}

// extractDeps pulls runtime dependency names out of requires_dist entries,
// skipping environment markers that gate extras, dev and test installs.
func extractDeps(requires []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requires {
		if m := markerRE.FindStringSubmatch(req); len(m) > 1 && skipRE.MatchString(m[1]) {
			continue
		}
		if m := depRE.FindStringSubmatch(req); len(m) > 1 {
			dep := integrations.NormalizePkgName(m[1])
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Summary      string   `json:"summary"`
	License      string   `json:"license"`
	Classifiers  []string `json:"classifiers"`
	RequiresDist []string `json:"requires_dist"`
	HomePage     string   `json:"home_page"`
	Author       string   `json:"author"`
	Yanked       bool     `json:"yanked"`
	YankedReason string   `json:"yanked_reason"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
