package main

import (
	"fmt"

	"github.com/MrEthical07/goToken/revocation"
	"github.com/spf13/cobra"
)

func newRevocationCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revocation",
		Short: "Inspect and edit the Redis revocation list",
	}

	withStore := func(fn func(cmd *cobra.Command, store revocation.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags.configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			store, err := rt.revocationStore(cmd.Context())
			if err != nil {
				return err
			}
			return fn(cmd, store, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check TOKEN",
			Short: "Report whether a token is revoked",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store revocation.Store, args []string) error {
				revoked, err := store.IsRevoked(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				state := "active"
				if revoked {
					state = "revoked"
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), state)
				return err
			}),
		},
		&cobra.Command{
			Use:   "remove TOKEN",
			Short: "Delete a single revocation entry",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store revocation.Store, args []string) error {
				if err := store.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", revocation.Key(args[0]))
				return err
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every revocation entry under the configured prefix",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store revocation.Store, _ []string) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				return err
			}),
		},
	)
	return cmd
}
