package ui

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// segment is a run of fragment text with uniform styling.
type segment struct {
	text string
	bold bool
}

// parseFragment flattens a transformed fragment into styled text runs.
// <br> becomes a newline, </p> a blank line, and <b> toggles bold. Other
// markup is dropped; entities are decoded by the tokenizer.
func parseFragment(fragment string) []segment {
	var (
		segs  []segment
		depth int
	)
	appendText := func(text string) {
		if text == "" {
			return
		}
		bold := depth > 0
		if n := len(segs); n > 0 && segs[n-1].bold == bold {
			segs[n-1].text += text
			return
		}
		segs = append(segs, segment{text: text, bold: bold})
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				appendText(string(z.Raw()))
			}
			return segs
		case html.TextToken:
			appendText(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				depth++
			case "br":
				appendText("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				if depth > 0 {
					depth--
				}
			case "p":
				appendText("\n\n")
			}
		}
	}
}

// runeCount is the number of revealable characters in segs.
func runeCount(segs []segment) int {
	n := 0
	for _, s := range segs {
		n += utf8.RuneCountInString(s.text)
	}
	return n
}

// renderSegments styles at most limit runes of segs. A negative limit
// renders everything.
func renderSegments(segs []segment, limit int, styles Styles) string {
	var b strings.Builder
	remaining := limit
	for _, s := range segs {
		text := s.text
		if limit >= 0 {
			if remaining <= 0 {
				break
			}
			if n := utf8.RuneCountInString(text); n > remaining {
				text = string([]rune(text)[:remaining])
			}
			remaining -= utf8.RuneCountInString(text)
		}
		style := styles.Text
		if s.bold {
			style = styles.Bold
		}
		// Style line by line so newlines are not wrapped in escape codes.
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

// filterInput keeps ASCII letters and spaces and caps the result at limit
// runes.
func filterInput(s string, limit int) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if limit > 0 && n >= limit {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}
