package main

import (
	"github.com/MrEthical07/goToken/principal"
	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the principal schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags.configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			db, err := rt.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := principal.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			rt.log.Info("migrations applied")
			return nil
		},
	}
}
