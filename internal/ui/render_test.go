package ui

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseFragment(t *testing.T) {
	got := parseFragment(`<p><b>listen</b></p>Try <b>Silent</b><br>&quot;Enlist&quot; it`)
	want := []segment{
		{text: "listen", bold: true},
		{text: "\n\nTry ", bold: false},
		{text: "Silent", bold: true},
		{text: "\n\"Enlist\" it", bold: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseFragment =\n%#v\nwant\n%#v", got, want)
	}
	if n := runeCount(got); n != 6+6+6+12 {
		t.Fatalf("runeCount = %d", n)
	}
}

func TestParseFragment_UnbalancedBold(t *testing.T) {
	got := parseFragment("a</b>b")
	if len(got) != 1 || got[0].text != "ab" || got[0].bold {
		t.Fatalf("parseFragment = %#v", got)
	}
}

func TestRenderSegments_Limit(t *testing.T) {
	styles := lightTheme().Styles()
	segs := []segment{{text: "Hi", bold: true}, {text: " there"}}

	full := renderSegments(segs, -1, styles)
	if !strings.Contains(full, "Hi") || !strings.Contains(full, "there") {
		t.Fatalf("full render = %q", full)
	}

	partial := renderSegments(segs, 5, styles)
	if !strings.Contains(partial, "Hi") || !strings.Contains(partial, "th") || strings.Contains(partial, "the") {
		t.Fatalf("partial render = %q", partial)
	}

	if got := renderSegments(segs, 0, styles); got != "" {
		t.Fatalf("zero render = %q, want empty", got)
	}
}

func TestFilterInput(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Hello World", 50, "Hello World"},
		{"héllo!", 50, "hllo"},
		{"a1b2c3", 50, "abc"},
		{"abcdef", 3, "abc"},
		{"ab\tcd", 0, "abcd"},
	}
	for _, tt := range tests {
		if got := filterInput(tt.in, tt.limit); got != tt.want {
			t.Fatalf("filterInput(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("dark").Name != "dark" {
		t.Fatalf("dark theme lookup failed")
	}
	if GetTheme("Dracula").Name != "light" {
		t.Fatalf("unknown theme should fall back to light")
	}
}
