package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kaldeqca/sex-sim-ai/internal/config"
	"github.com/kaldeqca/sex-sim-ai/internal/server"
	"github.com/spf13/cobra"
)

func newTokenCmd(_ *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API client credentials and tokens",
	}
	cmd.AddCommand(newTokenHashCmd(), newTokenMintCmd())
	return cmd
}

func newTokenHashCmd() *cobra.Command {
	var secret string
	var newClient bool
	cmd := &cobra.Command{
		Use:   "hash-secret",
		Short: "Hash a client secret for the config file",
		Long: `Prints the bcrypt hash of a client secret, read from --secret or the first line of
stdin. With --new-client, also prints a fresh client ID and the "clients" entry to add.
The cost is taken from BCRYPT_COST (default: 12).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read secret from stdin: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			hasher, err := config.NewSecretHasher()
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(secret)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !newClient {
				_, err = fmt.Fprintln(out, hash)
				return err
			}
			id := uuid.NewString()
			_, err = fmt.Fprintf(out, "client_id: %s\nconfig:    \"clients\": {%q: %q}\n", id, id, hash)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Client secret (default: read from stdin)")
	cmd.Flags().BoolVar(&newClient, "new-client", false, "Generate a client ID as well")
	return cmd
}

func newTokenMintCmd() *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Issue an API token directly, signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(clientID)
			if err != nil {
				return fmt.Errorf("invalid client-id: %w", err)
			}
			jwtConfig, err := config.NewJWTConfig()
			if err != nil {
				return fmt.Errorf("failed to create JWT config: %w", err)
			}
			if jwtConfig == nil {
				return fmt.Errorf("JWT_SECRET environment variable is required")
			}

			token, expiresAt, err := server.NewJWTService(jwtConfig).GenerateToken(id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", token)
			if err == nil {
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client ID to issue the token for (required)")
	if err := cmd.MarkFlagRequired("client-id"); err != nil {
		panic(fmt.Sprintf("failed to mark client-id flag as required: %v", err))
	}
	return cmd
}
