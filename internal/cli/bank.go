package cli

import (
	"context"
	"fmt"
	"log"

	"syntax-quiz/internal/config"
	"syntax-quiz/internal/infra/memory"
	pgloader "syntax-quiz/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
)

// loadQuestionBank reads the bank once from Postgres when configured, otherwise
// from the configured YAML file or the built-in bank.
func loadQuestionBank(ctx context.Context, cfg config.Config) (*memory.QuestionRepository, error) {
	var (
		loader memory.QuestionLoader
		source string
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		loader, source = pgloader.NewQuestionLoader(pool), "postgres"
	} else {
		loader, source = memory.NewYAMLFileLoader(cfg.Quiz.Bank), bankSource(cfg.Quiz.Bank)
	}

	bank, err := memory.LoadQuestionRepository(ctx, loader)
	if err != nil {
		return nil, fmt.Errorf("load question bank from %s: %w", source, err)
	}
	log.Printf("loaded %d questions from %s", bank.Len(), source)
	return bank, nil
}

func bankSource(path string) string {
	if path == "" {
		return "built-in bank"
	}
	return path
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
