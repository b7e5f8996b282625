// Package osv provides an HTTP client for the OSV.dev vulnerability API.
//
// # Overview
//
// OSV (https://osv.dev) aggregates vulnerability advisories across
// ecosystems. [Client.Query] looks up known vulnerabilities for one exact
// package version in the PyPI ecosystem, which is exactly the question a
// pinned manifest raises: is this pin still exposed?
//
// Each returned vulnerability carries its OSV id (e.g. PYSEC-2021-140)
// plus aliases (CVE and GHSA ids), so findings can be matched against
// advisory identifiers cited in manifest comments.
//
// # Caching
//
// Query responses are cached per (package, version) pair with the TTL set
// at client construction. Pass refresh=true to bypass the cache.
package osv
