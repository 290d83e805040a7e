package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/plancheck/internal/api"
	"github.com/dgallion1/plancheck/internal/config"
	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/dgallion1/plancheck/internal/runner"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP check endpoint",
	Long: `Serve exposes POST /api/check for CI systems that upload plan
documents instead of sharing a filesystem. The configured global
template is parsed once at startup; requests may upload their own.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The global template is optional in serve mode; requests may bring
	// their own.
	var global *doctree.Document
	if _, err := os.Stat(cfg.TemplatePath); err == nil {
		global, err = runner.ParseFile(cfg.TemplatePath)
		if err != nil {
			log.Error("global template unusable", "path", cfg.TemplatePath, "error", err)
			return err
		}
	} else {
		log.Warn("no global template; requests must upload one", "path", cfg.TemplatePath)
	}

	srv := api.NewServer(global, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting plancheck", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
