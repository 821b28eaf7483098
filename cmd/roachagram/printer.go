package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// stderr is swapped in tests.
var stderr io.Writer = os.Stderr

func printSuccess(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	_, _ = green.Fprintf(stderr, "✓ %s\n", strings.TrimSuffix(msg, "\n"))
}

func printWarning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	_, _ = yellow.Fprintf(stderr, "! %s\n", strings.TrimSuffix(msg, "\n"))
}

// printError writes a titled error with an explanation and suggestions to
// stderr and returns a plain error for cobra, which runs with SilenceErrors.
func printError(title, explanation string, suggestions []string) error {
	_, _ = red.Fprintf(stderr, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(stderr, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(stderr, "Either:\n")
			for i, s := range suggestions {
				fmt.Fprintf(stderr, "  %d. %s\n", i+1, s)
			}
		}
	}
	return fmt.Errorf("%s", title)
}
