package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
	"github.com/tkoester/pinset/pkg/integrations"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(cache.NewNullCache(), srv.URL, time.Hour)
}

func TestFetchPackage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flask/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"info": {
				"name": "Flask",
				"version": "3.1.0",
				"summary": "A simple framework for building complex web applications.",
				"classifiers": ["License :: OSI Approved :: BSD License"],
				"requires_dist": [
					"Werkzeug>=3.1",
					"Jinja2>=3.1.2",
					"itsdangerous>=2.2",
					"click>=8.1.3",
					"pytest; extra == 'test'"
				]
			}
		}`)
	})

	pkg, err := client.FetchPackage(context.Background(), "Flask", false)
	if err != nil {
		t.Fatalf("FetchPackage: %v", err)
	}

	if pkg.Name != "flask" {
		t.Errorf("Name = %q, want %q", pkg.Name, "flask")
	}
	if pkg.Version != "3.1.0" {
		t.Errorf("Version = %q", pkg.Version)
	}
	if pkg.License != "BSD License" {
		t.Errorf("License = %q", pkg.License)
	}

	wantDeps := []string{"werkzeug", "jinja2", "itsdangerous", "click"}
	if len(pkg.Dependencies) != len(wantDeps) {
		t.Fatalf("Dependencies = %v, want %v", pkg.Dependencies, wantDeps)
	}
	for i, d := range wantDeps {
		if pkg.Dependencies[i] != d {
			t.Errorf("Dependencies[%d] = %q, want %q", i, pkg.Dependencies[i], d)
		}
	}
}

func TestFetchPackageNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchPackage(context.Background(), "no-such-package", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchRelease(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flask/1.0.2/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"info": {
				"name": "Flask",
				"version": "1.0.2",
				"yanked": false,
				"requires_dist": ["Werkzeug>=0.14", "Jinja2>=2.10", "itsdangerous>=0.24", "click>=5.1"]
			}
		}`)
	})

	rel, err := client.FetchRelease(context.Background(), "Flask", "1.0.2", false)
	if err != nil {
		t.Fatalf("FetchRelease: %v", err)
	}
	if rel.Name != "flask" || rel.Version != "1.0.2" {
		t.Errorf("got %s==%s", rel.Name, rel.Version)
	}
	if rel.Yanked {
		t.Error("Yanked = true, want false")
	}
	if len(rel.Dependencies) != 4 {
		t.Errorf("Dependencies = %v", rel.Dependencies)
	}
}

func TestFetchReleaseYanked(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"info": {
				"name": "broken",
				"version": "0.1.0",
				"yanked": true,
				"yanked_reason": "accidental release"
			}
		}`)
	})

	rel, err := client.FetchRelease(context.Background(), "broken", "0.1.0", false)
	if err != nil {
		t.Fatal(err)
	}
	if !rel.Yanked {
		t.Error("Yanked = false, want true")
	}
	if rel.YankedReason != "accidental release" {
		t.Errorf("YankedReason = %q", rel.YankedReason)
	}
}

func TestFetchReleaseNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchRelease(context.Background(), "flask", "99.0.0", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExtractDeps(t *testing.T) {
	requires := []string{
		"Werkzeug>=0.15",
		"Jinja2 (>=2.10.1)",
		"pytest; extra == 'test'",
		"sphinx; extra == 'docs'",
		"tox; extra == 'dev'",
		"Werkzeug>=0.15", // duplicate
	}

	deps := extractDeps(requires)
	want := []string{"werkzeug", "jinja2"}
	if len(deps) != len(want) {
		t.Fatalf("extractDeps = %v, want %v", deps, want)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("deps[%d] = %q, want %q", i, deps[i], want[i])
		}
	}
}

func TestExtractLicenseType(t *testing.T) {
	tests := []struct {
		name        string
		license     string
		classifiers []string
		want        string
	}{
		{"from classifier", "long text...", []string{"License :: OSI Approved :: MIT License"}, "MIT License"},
		{"short field", "BSD-3-Clause", nil, "BSD-3-Clause"},
		{"empty", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLicenseType(tt.license, tt.classifiers); got != tt.want {
				t.Errorf("extractLicenseType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchPackageUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"info": {"name": "flask", "version": "3.1.0"}}`)
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(backend, srv.URL, time.Hour)

	for range 3 {
		if _, err := client.FetchPackage(context.Background(), "flask", false); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1", calls)
	}
}
