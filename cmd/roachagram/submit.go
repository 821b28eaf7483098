package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/roachagram/internal/app"
	"github.com/five82/roachagram/internal/document"
	"github.com/five82/roachagram/internal/roachagram"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func newSubmitCmd(opts *globalOptions) *cobra.Command {
	var (
		modeName string
		outPath  string
		theme    string
		caption  bool
		noProbe  bool
	)

	cmd := &cobra.Command{
		Use:   "submit <word or name>...",
		Short: "Fetch an anagram story and write it as an HTML document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := document.ParseMode(modeName)
			if err != nil {
				return printError("Invalid mode", err.Error(), []string{"Use --mode static or --mode reveal"})
			}

			env, err := opts.load(false)
			if err != nil {
				return err
			}
			rt, err := env.runtime(app.RuntimeOptions{Theme: theme, Caption: caption, SkipProbe: noProbe})
			if err != nil {
				env.shutdown(nil)
				return err
			}
			defer env.shutdown(rt)

			input := strings.Join(args, " ")
			res, presentErr := rt.Presenter.Present(cmd.Context(), input, mode)
			if errors.Is(presentErr, roachagram.ErrInvalidInput) {
				return printError("Invalid input", presentErr.Error(),
					[]string{fmt.Sprintf("Enter between 1 and %d characters", rt.Config.MaxInputLength)})
			}
			if res.Document != "" {
				if err := writeDocument(outPath, res.Document); err != nil {
					return printError("Could not write document", err.Error(), nil)
				}
			}

			switch {
			case errors.Is(presentErr, app.ErrOffline):
				return printError("Offline", app.OfflineMessage, []string{"Pass --no-probe to skip the connectivity check"})
			case presentErr != nil:
				return printError("Request failed", app.FallbackMessage, []string{presentErr.Error()})
			}
			if outPath != "" {
				printSuccess("Wrote %s", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeName, "mode", "static", "document mode: static or reveal")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&theme, "theme", "", "document theme: light or dark (default from preferences)")
	cmd.Flags().BoolVar(&caption, "caption", false, "prefix the document with the submitted input")
	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "skip the connectivity check")
	return cmd
}

func writeDocument(path, doc string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, doc)
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}
