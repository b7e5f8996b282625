package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"io"

	"github.com/charmbracelet/log"

	"github.com/tkoester/pinset/pkg/audit"
	"github.com/tkoester/pinset/pkg/integrations/osv"
	"github.com/tkoester/pinset/pkg/store"
)

type fakeQuerier struct {
	vulns map[string][]osv.Vulnerability
	err   error
}

func (f *fakeQuerier) Query(ctx context.Context, pkg, version string, refresh bool) ([]osv.Vulnerability, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vulns[strings.ToLower(pkg)+"=="+version], nil
}

func newTestServer(t *testing.T, querier *fakeQuerier) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := New(Config{
		Auditor: audit.New(querier),
		Store:   st,
		Logger:  log.New(io.Discard),
	})
	return srv, st
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLintEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{})

	body := strings.NewReader("Flask==1.0.2\nflask==2.0.1\nbroken line\n")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/lint", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var report struct {
		Findings []struct {
			Rule string `json:"rule"`
		} `json:"findings"`
		Errors int `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Errors != 2 {
		t.Errorf("errors = %d, want 2 (duplicate pin + malformed line)", report.Errors)
	}
}

func TestLintEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/lint", strings.NewReader("  \n")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuditEndpointStoresReport(t *testing.T) {
	querier := &fakeQuerier{vulns: map[string][]osv.Vulnerability{
		"flask==0.12.2": {{ID: "PYSEC-2018-66"}},
	}}
	srv, st := newTestServer(t, querier)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/audit", strings.NewReader("Flask==0.12.2\n")))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var report audit.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.ID == "" || report.Errors != 1 {
		t.Errorf("report = %+v", report)
	}

	stored, err := st.Get(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("report not stored: %v", err)
	}
	if stored.Errors != 1 {
		t.Errorf("stored report = %+v", stored)
	}
}

func TestAuditEndpointUpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{err: errors.New("osv down")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/audit", strings.NewReader("Flask==1.0.2\n")))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	srv, st := newTestServer(t, &fakeQuerier{})
	_ = st.Save(context.Background(), &audit.Report{ID: "abc", Pins: 3})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report audit.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Pins != 3 {
		t.Errorf("report = %+v", report)
	}
}

func TestGetReportNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "REPORT_NOT_FOUND" {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestListReports(t *testing.T) {
	srv, st := newTestServer(t, &fakeQuerier{})
	_ = st.Save(context.Background(), &audit.Report{ID: "a"})
	_ = st.Save(context.Background(), &audit.Report{ID: "b"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Reports []audit.Report `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reports) != 2 {
		t.Errorf("reports = %d, want 2", len(resp.Reports))
	}
}

func TestListReportsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuerier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?limit=x", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
