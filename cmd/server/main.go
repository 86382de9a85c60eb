package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/praxis/internal/api/rest"
	"github.com/clintrovert/praxis/internal/bridge"
	"github.com/clintrovert/praxis/internal/config"
	"github.com/clintrovert/praxis/internal/github"
	"github.com/clintrovert/praxis/internal/jira"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Create Jira client and issue cache
	jiraClient, err := jira.NewClient(
		cfg.Jira.BaseURL,
		cfg.Jira.Username,
		cfg.Jira.APIToken,
		cfg.Jira.ProjectKey,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create jira client", zap.Error(err))
	}
	issueCache := jira.NewCache(jiraClient, logger)

	// Create GitHub client
	githubClient := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo, logger)

	// Create orchestrator
	orchestrator := bridge.NewOrchestrator(
		jiraClient,
		githubClient,
		issueCache,
		cfg.Jira.ProjectKey,
		cfg.Server.SimilarityThreshold,
		logger,
	)

	// Initial cache sync; a failure is logged, not fatal, since the cache
	// refreshes itself on first use.
	syncCtx, syncCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := issueCache.Sync(syncCtx); err != nil {
		logger.Error("initial jira sync failed", zap.Error(err))
	}
	syncCancel()

	// Create REST handler and router
	handler := rest.NewHandler(orchestrator, jiraClient, githubClient, cfg.GitHub.WebhookSecret, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("starting webhook server",
			zap.String("address", addr),
			zap.String("project", cfg.Jira.ProjectKey),
			zap.String("repository", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	server.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
