package main

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/finpal/server/internal/auth"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for calling the ai-usage endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET not set")
			}

			if userID == "" {
				userID = uuid.NewString()
			} else if _, err := uuid.Parse(userID); err != nil {
				return fmt.Errorf("invalid user id %q: %w", userID, err)
			}

			token, err := auth.GenerateJWT(secret, userID, email, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s\n", userID)
			fmt.Fprintf(out, "expires: %s\n\n", time.Now().Add(ttl).Format(time.RFC3339))
			fmt.Fprintf(out, "export TEST_TOKEN=%q\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to embed as subject (random when empty)")
	cmd.Flags().StringVar(&email, "email", "test@finpal.dev", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}
