// Package ui provides the interactive terminal front end for roachagram.
//
// # Overview
//
// The UI is a single-screen Bubble Tea program: an input line, a result
// panel and a footer of key hints. Submissions go through the Presenter,
// so the terminal shows the same fragment the HTML document would carry.
//
// # Input
//
// The input accepts ASCII letters and spaces only and is capped at
// roachagram.MaxInputLength characters. Submit is disabled while the input
// is blank and while a submission is in flight, so at most one request runs
// per user action.
//
// # Rendering
//
// The fragment is tokenized with golang.org/x/net/html: <b> becomes bold,
// <br> a line break and </p> a blank line. In reveal mode the text appears
// one character per tick at the configured reveal speed; the loop stops
// once the text is exhausted and a new result restarts it. Ticks from an
// earlier result are dropped.
//
// # Key Bindings
//
//   - enter: Submit
//   - ctrl+l: Clear result
//   - ctrl+r: Toggle progressive reveal
//   - ctrl+t: Toggle light/dark theme (persisted to prefs)
//   - pgup/pgdown: Scroll the result
//   - ?: Help
//   - esc or ctrl+c: Quit
package ui
