package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmcleod/adminshell/directory"
)

func newSeedCmd(load loader) *cobra.Command {
	var file string
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load dashboard statistics and users into the directory",
		Long: `Load directory data from a TOML seed file, or the built-in demo data
with --demo. Users are upserted by id.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file != "") == demo {
				return errors.New("exactly one of --file or --demo is required")
			}
			seed := directory.DemoSeed()
			if file != "" {
				var err error
				if seed, err = directory.LoadSeed(file); err != nil {
					return err
				}
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			app, err := wireApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.directory().Apply(cmd.Context(), seed); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", len(seed.Users))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML seed file")
	cmd.Flags().BoolVar(&demo, "demo", false, "Load the built-in demo data")
	return cmd
}
