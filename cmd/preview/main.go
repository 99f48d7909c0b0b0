// Package main serves the article preview API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"golang.org/x/text/language"

	"sitecontent/internal/articles"
	"sitecontent/internal/config"
	"sitecontent/internal/logger"
	"sitecontent/internal/server"
)

type options struct {
	config.Options `group:"Content Options"`

	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP listen port"`
	Lang string `long:"lang" env:"CONTENT_LANG" default:"ja" description:"Default language for ordering category labels"`
}

func main() {
	var opts options

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if config.IsHelp(err) {
			os.Exit(0)
		}

		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.FromOptions(opts.Options)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	lang, err := language.Parse(opts.Lang)
	if err != nil {
		return fmt.Errorf("invalid --lang %q: %w", opts.Lang, err)
	}

	fetcher, err := articles.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)

	router := server.NewServer(server.NewHandler(fetcher, lang, log), log)

	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Retry.GetTimeout(),
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Slog().Handler(), slog.LevelError),
	}

	serverErrChan := make(chan error, 1)

	go func() {
		log.Info("preview server listening", "addr", httpServer.Addr, "source", fetcher.Source())

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
