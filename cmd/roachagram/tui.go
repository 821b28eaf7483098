package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/roachagram/internal/app"
	"github.com/five82/roachagram/internal/document"
	"github.com/five82/roachagram/internal/ui"
)

func newTUICmd(opts *globalOptions) *cobra.Command {
	var noProbe bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load(true)
			if err != nil {
				return err
			}
			rt, err := env.runtime(app.RuntimeOptions{SkipProbe: noProbe})
			if err != nil {
				env.shutdown(nil)
				return err
			}
			defer env.shutdown(rt)

			cfg := env.cfg
			return ui.Run(ui.Options{
				Context:        cmd.Context(),
				Presenter:      rt.Presenter,
				ThemeName:      env.prefs.Theme,
				PrefsPath:      opts.prefsPath,
				RevealSpeed:    time.Duration(cfg.RevealSpeedMs) * time.Millisecond,
				MaxInputLength: cfg.MaxInputLength,
				Mode:           document.ModeReveal,
				DocumentOptions: func(theme string) document.Options {
					return app.DocumentOptions(cfg, theme)
				},
			})
		},
	}

	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "skip the connectivity check")
	return cmd
}
