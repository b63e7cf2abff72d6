package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/assistant"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/config"
	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/google"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/llm"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/server"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (YAML)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewComponentLogger("main")

	var (
		factStore memory.Store
		credStore google.CredentialStore
		pool      *pgxpool.Pool
	)
	if cfg.Database.URL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		pgFacts := memory.NewPostgresStore(pool)
		if err := pgFacts.EnsureSchema(ctx); err != nil {
			return err
		}
		pgCreds := google.NewPostgresCredentialStore(pool)
		if err := pgCreds.EnsureSchema(ctx); err != nil {
			return err
		}
		factStore = pgFacts
		credStore = pgCreds
		logger.Info("using postgres storage")
	} else {
		factStore = memory.NewInMemoryStore()
		credStore = google.NewInMemoryCredentialStore()
		logger.Warn("no database configured, using in-memory storage")
	}

	facts, err := memory.NewService(factStore)
	if err != nil {
		return err
	}

	tokens := google.NewTokenSource(credStore, cfg.Google.ClientID, cfg.Google.ClientSecret)
	calendar := google.NewCalendarClient(tokens)
	mail := google.NewGmailClient(tokens)

	gemini, err := llm.NewGeminiClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	chat := llm.NewRetryClient(gemini, coserrors.DefaultRetryConfig())

	engine := assistant.NewEngine(facts, calendar, calendar, mail, chat)

	srv := server.NewServer(cfg.Server, engine, calendar, calendar, mail, logging.NewComponentLogger("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
		return srv.Stop(context.Background())
	}
}
