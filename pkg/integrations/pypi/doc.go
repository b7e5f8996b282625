// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// This package fetches package metadata from PyPI (https://pypi.org), the
// official repository for Python packages. Two lookups are supported:
//
//   - [Client.FetchPackage]: latest-release metadata for a package
//   - [Client.FetchRelease]: metadata for one exact pinned version,
//     including its yanked status
//
// # Caching
//
// Responses are cached to reduce load on PyPI and speed up repeated requests.
// The cache TTL is set when creating the client. Pass refresh=true to the
// fetch methods to bypass the cache.
//
// # Dependency Filtering
//
// Dependencies are extracted from requires_dist, filtering out:
//
//   - Optional extras (extra markers)
//   - Development dependencies (dev markers)
//   - Test dependencies (test markers)
//
// Package names are normalized following PEP 503.
package pypi
