package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

const minKeyBytes = 32

func newKeygenCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random base64 signing key for jwt.secret_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < minKeyBytes {
				return fmt.Errorf("--bytes must be at least %d", minKeyBytes)
			}
			key := make([]byte, size)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(key))
			return err
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 64, "key length in bytes; 64 selects HS512")
	return cmd
}
