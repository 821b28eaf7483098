package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/roachagram/internal/app"
	"github.com/five82/roachagram/internal/identity"
)

func newDeviceIDCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "device-id",
		Short: "Print the identifier sent with each request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load(false)
			if err != nil {
				return err
			}
			defer env.shutdown(nil)

			storage, closeStorage, err := app.OpenStorage(env.cfg.Storage)
			if err != nil {
				return printError("Could not open identity storage", err.Error(), nil)
			}
			defer func() { _ = closeStorage() }()

			store := identity.NewStore(storage, identity.WithLogger(env.logger))
			fmt.Fprintln(stdout, store.GetOrCreate(cmd.Context()))
			return nil
		},
	}
}
