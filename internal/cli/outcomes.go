package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/repcard/engine/internal/core/config"
	"github.com/repcard/engine/internal/infra/storage/postgres"
)

var outcomesSubject string

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "List recorded outcomes for a subject",
	Run:   runOutcomes,
}

func init() {
	outcomesCmd.Flags().StringVar(&outcomesSubject, "subject", "", "subject profile address")
	_ = outcomesCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(outcomesCmd)
}

func runOutcomes(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("outcomes requires a database URL in config")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	records, err := postgres.NewOutcomeRepo(db).ListBySubject(ctx, outcomesSubject, 50)
	if err != nil {
		slog.Error("Failed to list outcomes", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "KIND\tCARD\tTX\tCREATED")
	for _, r := range records {
		card := fmt.Sprintf("%d", r.OutcomeID)
		if r.OutcomeID == 0 {
			card = "unconfirmed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, card, r.TxHash, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
