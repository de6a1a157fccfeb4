package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"syntax-quiz/internal/app"
	"syntax-quiz/internal/config"
	"syntax-quiz/internal/infra/memory"
	redissession "syntax-quiz/internal/infra/redis"
	transport "syntax-quiz/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		db := openBunDB(cfg.Postgres.URL)
		err := migrateDB(ctx, db)
		db.Close()
		if err != nil {
			return err
		}
	}

	bank, err := loadQuestionBank(ctx, cfg)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, closeStore := newSessionStore(cfg)
	defer closeStore()

	service := app.NewQuizService(store, bank)
	router := transport.NewRouter(service, transport.Options{
		Defaults:     cfg.Criteria(),
		KeepSessions: cfg.Redis.Addr != "",
	})
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newSessionStore picks Redis when configured, otherwise process memory.
func newSessionStore(cfg config.Config) (app.SessionRepository, func()) {
	if cfg.Redis.Addr == "" {
		return memory.NewSessionStore(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)
	log.Printf("using redis session store at %s (ttl %s)", cfg.Redis.Addr, ttl)
	return redissession.NewSessionStore(client, ttl), func() {
		if err := client.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
}
