package document

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func TestStatic_EmbedsFragmentInBody(t *testing.T) {
	fragment := "<b>Silent:</b> listen<br>enlist"
	doc := Static(fragment, LightOptions())

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	body := findNode(root, isElement("body"))
	if body == nil {
		t.Fatalf("document has no body: %q", doc)
	}
	if b := findNode(body, isElement("b")); b == nil || b.FirstChild == nil || b.FirstChild.Data != "Silent:" {
		t.Fatalf("body missing bold heading, doc = %q", doc)
	}
	if br := findNode(body, isElement("br")); br == nil {
		t.Fatalf("body missing <br>, doc = %q", doc)
	}
	if !strings.Contains(doc, "<p>"+fragment+"</p>") {
		t.Fatalf("fragment not embedded verbatim: %q", doc)
	}
}

func TestStatic_AppliesOptions(t *testing.T) {
	doc := Static("x", Options{BackgroundColor: "#101010", TextColor: "#eeeeee", FontFamily: "Georgia, serif"})
	for _, want := range []string{"background-color: #101010;", "color: #eeeeee;", "font-family: Georgia, serif;"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestOptions_ZeroValuesUseLightDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	if got != LightOptions() {
		t.Fatalf("withDefaults = %#v, want %#v", got, LightOptions())
	}
}

func TestOptionsForTheme(t *testing.T) {
	if got := OptionsForTheme(" Dark "); got != DarkOptions() {
		t.Fatalf("OptionsForTheme(dark) = %#v, want dark", got)
	}
	if got := OptionsForTheme("unknown"); got != LightOptions() {
		t.Fatalf("OptionsForTheme(unknown) = %#v, want light", got)
	}
}

func TestReveal_EmbedsLiteralAndFiniteLoop(t *testing.T) {
	fragment := "<b>Hello</b> there"
	doc := Reveal(fragment, Options{RevealSpeedMs: 45})

	if !strings.Contains(doc, "const text = `"+fragment+"`;") {
		t.Fatalf("fragment literal missing:\n%s", doc)
	}
	if !strings.Contains(doc, "}, 45);") {
		t.Fatalf("reveal interval not applied:\n%s", doc)
	}
	if !strings.Contains(doc, "clearInterval(timer)") {
		t.Fatalf("reveal loop never stops:\n%s", doc)
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	target := findNode(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "p" {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == "reveal" {
				return true
			}
		}
		return false
	})
	if target == nil {
		t.Fatalf("reveal target missing:\n%s", doc)
	}
	if target.FirstChild != nil {
		t.Fatalf("reveal target should start empty")
	}
	if findNode(root, isElement("script")) == nil {
		t.Fatalf("reveal script missing")
	}
}

func TestReveal_DefaultSpeed(t *testing.T) {
	doc := Reveal("x", Options{})
	if !strings.Contains(doc, "}, 30);") {
		t.Fatalf("default reveal speed not applied:\n%s", doc)
	}
}

func TestBuild_Dispatches(t *testing.T) {
	if doc := Build("x", ModeStatic, Options{}); strings.Contains(doc, "<script>") {
		t.Fatalf("static build contains script")
	}
	if doc := Build("x", ModeReveal, Options{}); !strings.Contains(doc, "<script>") {
		t.Fatalf("reveal build missing script")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStatic, false},
		{"static", ModeStatic, false},
		{" Reveal ", ModeReveal, false},
		{"progressive", ModeReveal, false},
		{"fancy", ModeStatic, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if ModeReveal.String() != "reveal" || ModeStatic.String() != "static" {
		t.Fatalf("Mode.String mismatch")
	}
}
