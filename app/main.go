package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tehpwnage/posthub/app/api"
	"github.com/tehpwnage/posthub/app/cfg"
	"github.com/tehpwnage/posthub/app/config"
	"github.com/tehpwnage/posthub/app/database"
	"github.com/tehpwnage/posthub/app/poller"
	"github.com/tehpwnage/posthub/app/sources"
	"github.com/tehpwnage/posthub/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Posthub server", "version", appConfig.Version)

	// Database connection
	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	// Source configuration
	sourcesConfig, err := config.NewLoader(appConfig.SourcesFile).Load()
	if err != nil {
		slog.Error("Failed to load source configuration", "error", err)
		os.Exit(1)
	}

	postRepo := database.NewPostRepository(db)

	// Source adapters share one HTTP client with an explicit timeout
	client := sources.NewClient(time.Duration(appConfig.FetchTimeout)*time.Second, appConfig.UserAgent)

	var youtube poller.YoutubeSource
	if sourcesConfig.Youtube.Enabled {
		youtube = sources.NewYoutubeAdapter(client,
			sourcesConfig.Youtube.ChannelID, sourcesConfig.Youtube.ChannelAvatarURL)
	}

	var forum poller.ForumSource
	if sourcesConfig.Forum.Enabled {
		forum = sources.NewForumAdapter(client,
			sourcesConfig.Forum.FeedURL, sourcesConfig.Forum.AvatarBaseURL,
			sourcesConfig.Forum.DefaultAvatarURL, sourcesConfig.Forum.VerifyAvatars)
	}

	var patreon poller.PatreonSource
	if sourcesConfig.Patreon.Enabled {
		patreon = sources.NewPatreonAdapter(client,
			sourcesConfig.Patreon.APIURL, sourcesConfig.Patreon.CampaignID,
			sourcesConfig.Patreon.AuthorName, sourcesConfig.Patreon.AuthorAvatarURL)
	}

	sourcePoller := poller.New(youtube, forum, patreon, postRepo, sourcesConfig.FetchLimit)

	// Background polling
	scheduler := tasks.NewScheduler(sourcePoller,
		time.Duration(appConfig.PollInterval)*time.Second, appConfig.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	proxyClient := &http.Client{Timeout: time.Duration(appConfig.FetchTimeout) * time.Second}
	apiHandler := api.NewHandler(postRepo, sourcePoller, proxyClient)
	server := api.NewServer(apiHandler, appConfig.InternalAPIKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and database are stopped via defer
	slog.Info("Posthub server shutdown complete")
}
