package cli

import (
	"context"
	"fmt"
	"log"

	"syntax-quiz/internal/infra/memory"
	"syntax-quiz/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd copies a YAML bank (or the built-in one) into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var bankPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the question bank into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, bankPath)
		},
	}
	cmd.Flags().StringVar(&bankPath, "bank", "", "YAML question file (defaults to quiz.bank, then the built-in bank)")
	return cmd
}

func runSeed(ctx context.Context, configPath, bankPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if bankPath == "" {
		bankPath = cfg.Quiz.Bank
	}

	questions, err := memory.NewYAMLFileLoader(bankPath).LoadQuestions(ctx)
	if err != nil {
		return err
	}

	db := openBunDB(cfg.Postgres.URL)
	defer db.Close()
	if err := migrateDB(ctx, db); err != nil {
		return err
	}
	n, err := postgres.SeedQuestions(ctx, db, questions)
	if err != nil {
		return err
	}
	log.Printf("seeded %d questions from %s", n, bankSource(bankPath))
	return nil
}
