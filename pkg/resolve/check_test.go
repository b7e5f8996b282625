package resolve

import (
	"context"
	"reflect"
	"testing"
)

const listedManifest = `Flask==1.0.2
    click==7.0
    itsdangerous==1.1.0
    Jinja2==2.10
        MarkupSafe==1.1.1
    Werkzeug==0.14.1
requests==2.20.0
    certifi==2018.11.29
    idna==2.7
    urllib3==1.24.1
`

func TestCheckMatch(t *testing.T) {
	m := mustParse(t, listedManifest)
	g, err := NewResolver(flaskFetcher()).Resolve(context.Background(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	report := Check(m, g)
	if !report.Ok() {
		t.Errorf("report not ok: %+v", report.Entries)
	}
	if len(report.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(report.Entries))
	}
}

func TestCheckUndocumented(t *testing.T) {
	// The manifest does not list markupsafe under Flask.
	m := mustParse(t, `Flask==1.0.2
    click==7.0
    itsdangerous==1.1.0
    Jinja2==2.10
    Werkzeug==0.14.1
`)
	g, err := NewResolver(flaskFetcher()).Resolve(context.Background(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	report := Check(m, g)
	if report.Ok() {
		t.Fatal("report unexpectedly ok")
	}
	e := report.Entries[0]
	if !reflect.DeepEqual(e.Undocumented, []string{"markupsafe"}) {
		t.Errorf("Undocumented = %v", e.Undocumented)
	}
	if len(e.Stale) != 0 {
		t.Errorf("Stale = %v", e.Stale)
	}
}

func TestCheckStale(t *testing.T) {
	// simplejson was dropped from requests long ago but is still listed.
	m := mustParse(t, `requests==2.20.0
    certifi==2018.11.29
    idna==2.7
    simplejson==3.16.0
    urllib3==1.24.1
`)
	g, err := NewResolver(flaskFetcher()).Resolve(context.Background(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	report := Check(m, g)
	e := report.Entries[0]
	if !reflect.DeepEqual(e.Stale, []string{"simplejson"}) {
		t.Errorf("Stale = %v", e.Stale)
	}
}

func TestCheckPinnedDependencyNotExpected(t *testing.T) {
	// click is promoted to its own pin; it should not be flagged as
	// undocumented under Flask.
	m := mustParse(t, `Flask==1.0.2
    itsdangerous==1.1.0
    Jinja2==2.10
        MarkupSafe==1.1.1
    Werkzeug==0.14.1
click==7.0
`)
	g, err := NewResolver(flaskFetcher()).Resolve(context.Background(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	report := Check(m, g)
	if !report.Ok() {
		t.Errorf("report not ok: %+v", report.Entries)
	}
}
