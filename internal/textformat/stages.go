package textformat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

const breakMarker = "<br>"

var (
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	headingPattern = regexp.MustCompile(`^###\s*([^\r\n:]+:)`)
	quotedPattern  = regexp.MustCompile(`"(.*?)"`)
	tagPattern     = regexp.MustCompile(`^</?[a-zA-Z][a-zA-Z0-9]*\s*/?>`)
)

// decodeEscapes turns backslash escapes into the characters they name.
// Anything that does not form a complete escape is copied through untouched.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		switch c := s[i+1]; c {
		case 'u':
			if r, n, ok := decodeUnicodeEscape(s[i:]); ok {
				b.WriteRune(r)
				i += n
				continue
			}
		case 'x':
			if v, ok := parseHex(s[i+2:], 2); ok {
				b.WriteRune(rune(v))
				i += 4
				continue
			}
		case 'n':
			b.WriteByte('\n')
			i += 2
			continue
		case 'r':
			b.WriteByte('\r')
			i += 2
			continue
		case 't':
			b.WriteByte('\t')
			i += 2
			continue
		case '\\', '"', '\'', '/':
			b.WriteByte(c)
			i += 2
			continue
		}
		b.WriteByte('\\')
		i++
	}
	return b.String()
}

// decodeUnicodeEscape decodes a \uXXXX sequence at the start of s, joining a
// following low surrogate when present. Lone surrogates are rejected.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	v, ok := parseHex(s[2:], 4)
	if !ok {
		return 0, 0, false
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 6, true
	}
	if len(s) < 12 || s[6] != '\\' || s[7] != 'u' {
		return 0, 0, false
	}
	lo, ok := parseHex(s[8:], 4)
	if !ok {
		return 0, 0, false
	}
	combined := utf16.DecodeRune(r, rune(lo))
	if combined == utf8.RuneError {
		return 0, 0, false
	}
	return combined, 12, true
}

func parseHex(s string, digits int) (uint32, bool) {
	if len(s) < digits {
		return 0, false
	}
	var v uint32
	for i := 0; i < digits; i++ {
		c := s[i]
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	return v, true
}

func newlinesToBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", breakMarker)
}

func boldMarkdown(s string) string {
	return boldPattern.ReplaceAllStringFunc(s, func(m string) string {
		return "<b>" + TitleCase(m[2:len(m)-2]) + "</b>"
	})
}

// boldHeadings runs the heading rewrite on each line independently. Lines end
// at a newline or a <br> marker, since earlier stages have usually replaced
// the newlines already.
func boldHeadings(s string) string {
	if !strings.Contains(s, "###") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	start := 0
	for {
		end, width := nextLineBreak(s, start)
		b.WriteString(boldHeadingLine(s[start:end]))
		if end >= len(s) {
			break
		}
		b.WriteString(s[end : end+width])
		start = end + width
	}
	return b.String()
}

func nextLineBreak(s string, from int) (int, int) {
	rest := s[from:]
	nl := strings.IndexByte(rest, '\n')
	br := strings.Index(rest, breakMarker)
	switch {
	case nl < 0 && br < 0:
		return len(s), 0
	case br < 0 || (nl >= 0 && nl < br):
		return from + nl, 1
	default:
		return from + br, len(breakMarker)
	}
}

func boldHeadingLine(line string) string {
	loc := headingPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	return "<b>" + line[loc[2]:loc[3]] + "</b>" + line[loc[1]:]
}

func titleCaseQuotes(s string) string {
	return quotedPattern.ReplaceAllStringFunc(s, func(m string) string {
		return `"` + TitleCase(m[1:len(m)-1]) + `"`
	})
}

// TitleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest. Empty words from repeated spaces are kept as-is, and
// markup tags inside a word are copied verbatim.
func TitleCase(phrase string) string {
	words := strings.Split(phrase, " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	var b strings.Builder
	b.Grow(len(w))
	first := true
	for i := 0; i < len(w); {
		if w[i] == '<' {
			if tag := tagPattern.FindString(w[i:]); tag != "" {
				b.WriteString(tag)
				i += len(tag)
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(w[i:])
		if first {
			b.WriteRune(unicode.ToUpper(r))
			first = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}
