package pep440

import (
	"sort"
	"testing"
)

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.0.2", "1.0.2"},
		{"2.20.0", "2.20.0"},
		{"18.1", "18.1"},
		{"40.4.3", "40.4.3"},
		{"0.32.2", "0.32.2"},
		{"1.0", "1.0"},
		{"v1.0", "1.0"},
		{" 1.0 ", "1.0"},
		{"1!2.0", "1!2.0"},
		{"1.0a1", "1.0a1"},
		{"1.0alpha1", "1.0a1"},
		{"1.0.beta2", "1.0b2"},
		{"1.0rc1", "1.0rc1"},
		{"1.0c1", "1.0rc1"},
		{"1.0pre", "1.0rc0"},
		{"1.0.post1", "1.0.post1"},
		{"1.0post1", "1.0.post1"},
		{"1.0-1", "1.0.post1"},
		{"1.0.post", "1.0.post0"},
		{"1.0.dev3", "1.0.dev3"},
		{"1.0.dev", "1.0.dev0"},
		{"1.0RC1", "1.0rc1"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got := v.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"abc",
		"1.0.x",
		"1..0",
		">=1.0",
		"1.0,2.0",
		"1.0+local", // local labels not used in pins
		"1.0 2.0",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
		if Valid(in) {
			t.Errorf("Valid(%q) = true", in)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.2", "1.0.2", 0},
		{"1.0.2", "1.0.10", -1},
		{"1.0", "1.0.0", 0},
		{"0.16", "0.16.0", 0},
		{"1!1.0", "2.0", 1},
		{"1.0a1", "1.0", -1},
		{"1.0a1", "1.0b1", -1},
		{"1.0b1", "1.0rc1", -1},
		{"1.0rc1", "1.0", -1},
		{"1.0", "1.0.post1", -1},
		{"1.0.dev1", "1.0a1", -1},
		{"1.0.dev1", "1.0", -1},
		{"1.0a1", "1.0a2", -1},
		{"2.20.0", "2.19.1", 1},
	}
	for _, tt := range tests {
		a, b := MustParse(tt.a), MustParse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := b.Compare(a); got != -tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestSortOrder(t *testing.T) {
	versions := []string{"1.0", "1.0.post1", "1.0.dev1", "1.0rc1", "0.9", "1.0a1", "1.1"}
	parsed := make([]Version, len(versions))
	for i, s := range versions {
		parsed[i] = MustParse(s)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Less(parsed[j]) })

	want := []string{"0.9", "1.0.dev1", "1.0a1", "1.0rc1", "1.0", "1.0.post1", "1.1"}
	for i, w := range want {
		if parsed[i].Original() != w {
			t.Errorf("sorted[%d] = %q, want %q", i, parsed[i].Original(), w)
		}
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.0.2", false},
		{"1.0.post1", false},
		{"1.0a1", true},
		{"1.0rc2", true},
		{"1.0.dev3", true},
	}
	for _, tt := range tests {
		if got := MustParse(tt.in).IsPrerelease(); got != tt.want {
			t.Errorf("IsPrerelease(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOriginal(t *testing.T) {
	v := MustParse("1.0Alpha1")
	if v.Original() != "1.0Alpha1" {
		t.Errorf("Original() = %q", v.Original())
	}
	if v.String() != "1.0a1" {
		t.Errorf("String() = %q", v.String())
	}
}
