package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/RichardoC/couples-gpt/internal/api"
	"github.com/RichardoC/couples-gpt/internal/auth"
	"github.com/RichardoC/couples-gpt/internal/config"
	"github.com/RichardoC/couples-gpt/internal/db"
	"github.com/RichardoC/couples-gpt/internal/llm"
	"github.com/RichardoC/couples-gpt/internal/session"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}

	client, err := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		logger.Fatal("failed to initialize completion client", zap.Error(err))
	}
	chat := llm.New(database, client, cfg.HistoryLimit, logger)

	verifier := auth.NewStaticVerifier(cfg.Credentials()...)
	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookies)
	handler := api.NewHandler(database, chat, verifier, sessions, logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("model", cfg.OpenAIModel),
			zap.Int("users", verifier.Len()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := multierr.Combine(server.Shutdown(shutdownCtx), database.Close()); err != nil {
		logger.Error("unclean shutdown", zap.Error(err))
	}
}
