package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "authd",
		Short:         "authd issues, refreshes, and revokes JWT token pairs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `authd is a stateless token service. Access and refresh tokens are signed
JWTs; logout and refresh rotation record consumed tokens in a revocation
list held in memory or in Redis.

Configuration is read from an optional yaml file and AUTHD_* environment
variables, for example AUTHD_JWT_SECRET_KEY.`,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a yaml configuration file")

	root.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newHashPasswordCmd(),
		newKeygenCmd(),
		newRevocationCmd(flags),
		newUserCmd(flags),
	)
	return root
}
