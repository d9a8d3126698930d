package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrEthical07/goToken/password"
	"github.com/spf13/cobra"
)

func newHashPasswordCmd() *cobra.Command {
	cfg := password.DefaultConfig()
	var scheme string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Reads one line from stdin and prints its hash, suitable for the
users.password_hash column.

    $ printf '%s' "$PASSWORD" | authd hash-password --scheme bcrypt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Scheme = password.Scheme(scheme)
			h, err := password.New(cfg)
			if err != nil {
				return err
			}
			plain, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			encoded, err := h.Hash(plain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", string(password.SchemeArgon2id), "argon2id or bcrypt")
	cmd.Flags().IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost factor")
	cmd.Flags().Uint32Var(&cfg.Argon2.MemoryKiB, "argon2-memory", cfg.Argon2.MemoryKiB, "argon2id memory in KiB")
	cmd.Flags().Uint32Var(&cfg.Argon2.Iterations, "argon2-iterations", cfg.Argon2.Iterations, "argon2id iterations")
	return cmd
}

func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password on stdin")
	}
	return line, nil
}
