package osv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
)

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Package.Name != "flask" || req.Package.Ecosystem != "PyPI" || req.Version != "0.12.2" {
			t.Errorf("unexpected query %+v", req)
		}

		fmt.Fprint(w, `{
			"vulns": [
				{
					"id": "PYSEC-2019-179",
					"aliases": ["CVE-2019-1010083", "GHSA-5wv5-4vpf-pj6m"],
					"summary": "Unexpected memory usage in Flask"
				}
			]
		}`)
	}))
	defer srv.Close()

	client := NewClient(cache.NewNullCache(), srv.URL, time.Hour)

	vulns, err := client.Query(context.Background(), "Flask", "0.12.2", false)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(vulns) != 1 {
		t.Fatalf("got %d vulns, want 1", len(vulns))
	}
	if vulns[0].ID != "PYSEC-2019-179" {
		t.Errorf("ID = %q", vulns[0].ID)
	}
}

func TestQueryNoVulns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(cache.NewNullCache(), srv.URL, time.Hour)

	vulns, err := client.Query(context.Background(), "flask", "3.1.0", false)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(vulns) != 0 {
		t.Errorf("got %d vulns, want 0", len(vulns))
	}
}

func TestQueryUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(backend, srv.URL, time.Hour)

	for range 2 {
		if _, err := client.Query(context.Background(), "flask", "1.0.2", false); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1", calls)
	}
}

func TestVulnerabilityMatches(t *testing.T) {
	v := Vulnerability{
		ID:      "PYSEC-2019-179",
		Aliases: []string{"CVE-2019-1010083"},
	}

	if !v.Matches("PYSEC-2019-179") {
		t.Error("should match own id")
	}
	if !v.Matches("cve-2019-1010083") {
		t.Error("should match alias case-insensitively")
	}
	if v.Matches("CVE-2018-1000656") {
		t.Error("should not match unrelated id")
	}

	ids := v.IDs()
	if len(ids) != 2 {
		t.Errorf("IDs() = %v", ids)
	}
}
