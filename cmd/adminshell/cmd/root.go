package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmcleod/adminshell/config"
)

// loader resolves the configuration once flags have been parsed.
type loader func() (config.Config, error)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "adminshell",
		Short: "adminshell serves a login-gated admin dashboard",
		Long: `An admin shell with a login screen, a dashboard and a user directory.
Settings come from an optional config file, ADMINSHELL_* environment
variables and the flags below.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to a TOML or YAML config file")
	flags.String("data-dir", "./data", "Directory for persistent data")
	flags.String("storage", config.StorageBBolt, "Storage backend (bbolt or memory)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	bindFlags(v, flags, map[string]string{
		"data-dir":  config.KeyDataDir,
		"storage":   config.KeyStorage,
		"log-level": config.KeyLogLevel,
	})

	load := func() (config.Config, error) {
		return config.Load(v, configFile)
	}

	rootCmd.AddCommand(
		newServerCmd(v, load),
		newAccountCmd(load),
		newSeedCmd(load),
		newVersionCmd(),
	)
	return rootCmd
}

// bindFlags makes each named flag the highest-precedence source for its
// config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		v.BindPFlag(key, fs.Lookup(name))
	}
}
