package main

import (
	"fmt"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"github.com/quoteflow/backend/internal/infrastructure/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
	tokenIssuer  string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&jwtSecret, "secret", "", "signing secret (default $QUOTEFLOW_AUTH_JWT_SECRET)")
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "user id (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleSales), "sales, purchasing or admin")
	tokenCmd.Flags().StringVar(&tokenIssuer, "issuer", "quoteflow", "token issuer")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	tokenCmd.MarkFlagRequired("sub")
}

func runToken(cmd *cobra.Command, args []string) error {
	if jwtSecret == "" {
		return fmt.Errorf("signing secret is required (--secret or QUOTEFLOW_AUTH_JWT_SECRET)")
	}

	tokens := auth.NewTokenService(jwtSecret, tokenIssuer)
	token, err := tokens.GenerateToken(domain.Actor{ID: tokenSubject, Role: domain.Role(tokenRole)}, tokenTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
