package textformat

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no escapes here", "no escapes here"},
		{"bmp", `caf\u00e9`, "café"},
		{"surrogate pair", `smile \ud83d\ude00`, "smile \U0001F600"},
		{"hex byte", `\x41BC`, "ABC"},
		{"newline", `one\ntwo`, "one\ntwo"},
		{"tab and quote", `a\tb \"c\"`, "a\tb \"c\""},
		{"escaped backslash", `\\u0041`, `\u0041`},
		{"short unicode", `bad \u12`, `bad \u12`},
		{"non-hex unicode", `bad \uZZZZ end`, `bad \uZZZZ end`},
		{"lone surrogate", `\ud83d alone`, `\ud83d alone`},
		{"unknown escape", `keep \q`, `keep \q`},
		{"trailing backslash", `end\`, `end\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnicodeEscapeDecode.Apply(tt.in); got != tt.want {
				t.Fatalf("decode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHTMLEntityDecode(t *testing.T) {
	got := HTMLEntityDecode.Apply("&quot;Tom&quot; &amp; Jerry &#39;n&#x27; friends")
	want := `"Tom" & Jerry 'n' friends`
	if got != want {
		t.Fatalf("HTMLEntityDecode = %q, want %q", got, want)
	}
}

func TestNewlineToBreak_OnePerNewline(t *testing.T) {
	tests := []struct {
		in    string
		count int
	}{
		{"none", 0},
		{"a\nb", 1},
		{"a\n\nb\n", 3},
		{"windows\r\nline", 1},
	}
	for _, tt := range tests {
		got := NewlineToBreak.Apply(tt.in)
		if n := strings.Count(got, "<br>"); n != tt.count {
			t.Fatalf("NewlineToBreak(%q) has %d <br>, want %d (got %q)", tt.in, n, tt.count, got)
		}
		if strings.ContainsAny(got, "\r\n") {
			t.Fatalf("NewlineToBreak(%q) = %q, still contains line endings", tt.in, got)
		}
	}
}

func TestBoldMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**hello world**", "<b>Hello World</b>"},
		{"a **hELLO wORLD** b", "a <b>Hello World</b> b"},
		{"**two  spaces**", "<b>Two  Spaces</b>"},
		{"** padded **", "<b> Padded </b>"},
		{"**one** and **two**", "<b>One</b> and <b>Two</b>"},
		{"**unterminated", "**unterminated"},
		{"**élan vital**", "<b>Élan Vital</b>"},
	}
	for _, tt := range tests {
		if got := BoldMarkdown.Apply(tt.in); got != tt.want {
			t.Fatalf("BoldMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeadingColonBold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "### Heading: rest", "<b>Heading:</b> rest"},
		{"no space", "###Tips:", "<b>Tips:</b>"},
		{"no colon", "### Note without colon", "### Note without colon"},
		{"first colon only", "### a: b: c", "<b>a:</b> b: c"},
		{"after break", "intro<br>### Part two: x", "intro<br><b>Part two:</b> x"},
		{"after newline", "intro\n### Part two: x", "intro\n<b>Part two:</b> x"},
		{"colon on next line", "### Note<br>Later: x", "### Note<br>Later: x"},
		{"not at line start", "text ### not: heading", "text ### not: heading"},
		{"trailing break", "### A:<br>", "<b>A:</b><br>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadingColonBold.Apply(tt.in); got != tt.want {
				t.Fatalf("HeadingColonBold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuotedPhraseTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`He said <b>Hello World</b> to "Jane Doe"`, `He said <b>Hello World</b> to "Jane Doe"`},
		{`call "jANE doe" now`, `call "Jane Doe" now`},
		{`"<b>Big</b> deal" here`, `"<b>Big</b> Deal" here`},
		{`"<b>hello</b>"`, `"<b>Hello</b>"`},
		{`empty "" quotes`, `empty "" quotes`},
		{`"a  b"`, `"A  B"`},
		{`dangling "quote`, `dangling "quote`},
	}
	for _, tt := range tests {
		if got := QuotedPhraseTitleCase.Apply(tt.in); got != tt.want {
			t.Fatalf("QuotedPhraseTitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPipeline_EndToEnd(t *testing.T) {
	raw := `Intro\n### Tips: read **bold move**\nShe said &quot;jane doe&quot;`
	want := `Intro<br><b>Tips:</b> read <b>Bold Move</b><br>She said "Jane Doe"`

	if got := Default().Run(raw); got != want {
		t.Fatalf("Run = %q\nwant  %q", got, want)
	}
}

func TestDefaultPipeline_BoldAndQuoted(t *testing.T) {
	got := Default().Run(`He said **hello world** to "Jane Doe"`)
	want := `He said <b>Hello World</b> to "Jane Doe"`
	if got != want {
		t.Fatalf("Run = %q, want %q", got, want)
	}
}

func TestDefaultPipeline_Deterministic(t *testing.T) {
	raw := "**A b**\n### C: \"d e\""
	first := Default().Run(raw)
	for i := 0; i < 5; i++ {
		if got := Default().Run(raw); got != first {
			t.Fatalf("run %d = %q, want %q", i, got, first)
		}
	}
}

func TestPipeline_OrderMatters(t *testing.T) {
	raw := "&quot;jane doe&quot;"
	reordered := New(QuotedPhraseTitleCase, UnicodeEscapeDecode, HTMLEntityDecode, NewlineToBreak, BoldMarkdown, HeadingColonBold)

	if got, want := Default().Run(raw), `"Jane Doe"`; got != want {
		t.Fatalf("default Run = %q, want %q", got, want)
	}
	if got, want := reordered.Run(raw), `"jane doe"`; got != want {
		t.Fatalf("reordered Run = %q, want %q", got, want)
	}
}

func TestPipeline_Stages(t *testing.T) {
	want := []string{
		"unicode-escape-decode",
		"html-entity-decode",
		"newline-to-break",
		"bold-markdown",
		"heading-colon-bold",
		"quoted-phrase-title-case",
	}
	if got := Default().Stages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Stages = %v, want %v", got, want)
	}
}

func TestDefaultPipeline_OnlyKnownTags(t *testing.T) {
	raw := "### Result:\n**silent listen**\nTry \"enlist tinsel\" next"
	out := Finalize(Default().Run(raw), FinalizeOptions{Caption: "listen"})

	allowed := map[string]bool{"b": true, "br": true, "p": true}
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				t.Fatalf("tokenize: %v", z.Err())
			}
			return
		}
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			if !allowed[string(name)] {
				t.Fatalf("unexpected tag <%s> in %q", name, out)
			}
		}
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts FinalizeOptions
		want string
	}{
		{"no options", "it's fine", FinalizeOptions{}, "it's fine"},
		{"strip", "it's <b>Bob's</b>", FinalizeOptions{StripApostrophes: true}, "its <b>Bobs</b>"},
		{"caption", "body", FinalizeOptions{Caption: "  listen "}, "<p><b>listen</b></p>body"},
		{"caption escaped", "body", FinalizeOptions{Caption: "<x>"}, "<p><b>&lt;x&gt;</b></p>body"},
		{"blank caption", "body", FinalizeOptions{Caption: "   "}, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finalize(tt.in, tt.opts); got != tt.want {
				t.Fatalf("Finalize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_StripsApostrophesAfterDecoding(t *testing.T) {
	got := Format("it&#39;s **rock n&#39; roll**", FinalizeOptions{StripApostrophes: true})
	want := "its <b>Rock N Roll</b>"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase(""); got != "" {
		t.Fatalf("TitleCase(\"\") = %q, want empty", got)
	}
	if got := TitleCase("  lead"); got != "  Lead" {
		t.Fatalf("TitleCase = %q, want %q", got, "  Lead")
	}
	if got := TitleCase("a<b"); got != "A<b" {
		t.Fatalf("TitleCase = %q, want %q", got, "A<b")
	}
}
