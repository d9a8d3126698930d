package main

import (
	"fmt"

	"github.com/MrEthical07/goToken/principal"
	"github.com/spf13/cobra"
)

func newUserCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage principals in PostgreSQL",
	}

	var (
		roleName string
		inactive bool
	)
	put := &cobra.Command{
		Use:   "put EMAIL",
		Short: "Create or replace a principal; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := principal.ParseRole(roleName)
			if err != nil {
				return err
			}
			plain, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}

			rt, err := loadRuntime(flags.configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			hasher, err := rt.hasher()
			if err != nil {
				return err
			}
			encoded, err := hasher.Hash(plain)
			if err != nil {
				return err
			}
			db, err := rt.openDB(cmd.Context())
			if err != nil {
				return err
			}

			identity := principal.NormalizeIdentity(args[0])
			store := principal.NewPostgresStore(db, hasher)
			if err := store.Upsert(cmd.Context(), identity, encoded, role, !inactive); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s active=%t\n", identity, role, !inactive)
			return err
		},
	}
	put.Flags().StringVar(&roleName, "role", principal.RoleCandidate.String(), "CANDIDATE, RECRUITER, or ADMIN")
	put.Flags().BoolVar(&inactive, "inactive", false, "store the principal as deactivated")

	cmd.AddCommand(put)
	return cmd
}
