package document

import (
	"fmt"
	"strings"
	"text/template"
)

// Mode selects the document shape.
type Mode int

const (
	ModeStatic Mode = iota
	ModeReveal
)

// ParseMode maps a flag value to a Mode. Unknown values are an error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "static":
		return ModeStatic, nil
	case "reveal", "progressive":
		return ModeReveal, nil
	default:
		return ModeStatic, fmt.Errorf("unknown document mode %q", s)
	}
}

func (m Mode) String() string {
	if m == ModeReveal {
		return "reveal"
	}
	return "static"
}

// Options styles a document. Zero fields fall back to the light theme.
type Options struct {
	BackgroundColor string
	TextColor       string
	FontFamily      string
	RevealSpeedMs   int
}

const (
	defaultFontFamily    = "'Open Sans', Arial, sans-serif"
	defaultRevealSpeedMs = 30
	fontStylesheet       = "https://fonts.googleapis.com/css?family=Open+Sans:400,700&display=swap"
)

// LightOptions mirrors the light page theme.
func LightOptions() Options {
	return Options{
		BackgroundColor: "#ffffff",
		TextColor:       "#000000",
		FontFamily:      defaultFontFamily,
		RevealSpeedMs:   defaultRevealSpeedMs,
	}
}

// DarkOptions mirrors the dark page theme.
func DarkOptions() Options {
	return Options{
		BackgroundColor: "#121212",
		TextColor:       "#f5f5f5",
		FontFamily:      defaultFontFamily,
		RevealSpeedMs:   defaultRevealSpeedMs,
	}
}

// OptionsForTheme returns the defaults for a theme name ("light" or "dark").
func OptionsForTheme(name string) Options {
	if strings.EqualFold(strings.TrimSpace(name), "dark") {
		return DarkOptions()
	}
	return LightOptions()
}

func (o Options) withDefaults() Options {
	def := LightOptions()
	if strings.TrimSpace(o.BackgroundColor) == "" {
		o.BackgroundColor = def.BackgroundColor
	}
	if strings.TrimSpace(o.TextColor) == "" {
		o.TextColor = def.TextColor
	}
	if strings.TrimSpace(o.FontFamily) == "" {
		o.FontFamily = def.FontFamily
	}
	if o.RevealSpeedMs <= 0 {
		o.RevealSpeedMs = def.RevealSpeedMs
	}
	return o
}

var (
	staticTemplate = template.Must(template.New("static").Parse(staticSource))
	revealTemplate = template.Must(template.New("reveal").Parse(revealSource))
)

type templateData struct {
	Options
	Stylesheet string
	Fragment   string
}

// Static embeds fragment directly in a styled body.
func Static(fragment string, opts Options) string {
	return render(staticTemplate, fragment, opts)
}

// Reveal embeds fragment as a script template literal that is appended to
// the page one character per tick. Markup tags are appended whole so the
// partial document never shows half a tag. The loop stops once the literal
// is exhausted.
//
// A backtick or "${" in fragment ends the literal early.
func Reveal(fragment string, opts Options) string {
	return render(revealTemplate, fragment, opts)
}

// Build dispatches on mode.
func Build(fragment string, mode Mode, opts Options) string {
	if mode == ModeReveal {
		return Reveal(fragment, opts)
	}
	return Static(fragment, opts)
}

func render(tmpl *template.Template, fragment string, opts Options) string {
	var b strings.Builder
	data := templateData{Options: opts.withDefaults(), Stylesheet: fontStylesheet, Fragment: fragment}
	// Builder writes cannot fail and both templates parse at init.
	_ = tmpl.Execute(&b, data)
	return b.String()
}

const styleSource = `<style>
      body {
        color: {{.TextColor}};
        background-color: {{.BackgroundColor}};
        font-family: {{.FontFamily}};
        margin: 0;
        padding: 10px;
        border: 0;
      }
    </style>`

const staticSource = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <link href="{{.Stylesheet}}" rel="stylesheet">
    ` + styleSource + `
  </head>
  <body>
    <p>{{.Fragment}}</p>
  </body>
</html>
`

const revealSource = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <link href="{{.Stylesheet}}" rel="stylesheet">
    ` + styleSource + `
  </head>
  <body>
    <p id="reveal"></p>
    <script>
      (function () {
        const text = ` + "`{{.Fragment}}`" + `;
        const target = document.getElementById('reveal');
        let i = 0;
        const timer = setInterval(function () {
          if (i >= text.length) {
            clearInterval(timer);
            return;
          }
          if (text[i] === '<') {
            const end = text.indexOf('>', i);
            i = end < 0 ? text.length : end + 1;
          } else {
            i++;
          }
          target.innerHTML = text.slice(0, i);
        }, {{.RevealSpeedMs}});
      })();
    </script>
  </body>
</html>
`
