package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/config"
	"codeberg.org/finpal/server/internal/retention"
	"codeberg.org/finpal/server/internal/storage"
	"github.com/spf13/cobra"
)

// loads configuration and opens the configured store
func openStore(ctx context.Context, initSchema bool) (*config.Config, *storage.Client, error) {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		return nil, nil, err
	}

	client, err := storage.Open(ctx, cfg, initSchema)
	if err != nil {
		return nil, nil, err
	}

	return cfg, client, nil
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage <user-id>",
		Short: "Show a user's AI usage for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, client, err := openStore(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			limiter := aiusage.NewLimiter(client.Store, aiusage.Config{
				DailyLimit: cfg.DailyLimit,
				Location:   cfg.Location,
			})

			status, err := limiter.GetUsageStatus(ctx, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PREDICTIONS\tINSIGHTS\tCHATBOT\tUSED\tLIMIT\tREMAINING\tRESETS IN")
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
				status.PredictionsUsed, status.InsightsUsed, status.ChatbotUsed,
				status.TotalUsed, status.TotalLimit, status.Remaining,
				aiusage.FormatTimeRemaining(status.NextResetAt))
			return w.Flush()
		},
	}
}

func newPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete usage records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, client, err := openStore(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			pruner, ok := client.Pruner()
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s records expire by TTL, nothing to prune\n", client.Backend)
				return nil
			}

			if !cmd.Flags().Changed("days") {
				days = cfg.RetentionDays
			}

			if days <= 0 {
				return fmt.Errorf("retention must be at least one day, got %d", days)
			}

			scheduler := retention.NewScheduler(pruner, retention.Config{
				RetentionDays: days,
				Location:      cfg.Location,
			})

			deleted, err := scheduler.Prune(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records before %s\n",
				deleted, scheduler.Cutoff().Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "days to keep, defaults to USAGE_RETENTION_DAYS")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ai_usage table (postgres store only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer client.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s usage store ready\n", client.Backend)
			return nil
		},
	}
}
