// Package main provides the article fetch command-line tool.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"sitecontent/internal/articles"
	"sitecontent/internal/config"
	"sitecontent/internal/formatter"
	"sitecontent/internal/logger"
)

type options struct {
	config.Options `group:"Content Options"`

	Format   string `long:"format" short:"f" choice:"json" choice:"table" default:"json" description:"Output format"`
	Output   string `long:"output" short:"o" description:"Write to this file instead of stdout"`
	ID       string `long:"id" description:"Fetch a single article by id"`
	Slug     string `long:"slug" description:"Fetch a single article by slug"`
	Category string `long:"category" description:"Only list articles in this category slug"`

	ListCategories bool `long:"list-categories" description:"Print the distinct categories instead of articles"`
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
	log.Debug("configuration loaded", "config", cfg.String())

	fetcher, err := articles.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --output is opened only once rendering has succeeded.
	var buf bytes.Buffer
	if err := render(ctx, &buf, fetcher, opts, log); err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func render(ctx context.Context, out io.Writer, fetcher *articles.Fetcher, opts options, log *logger.Logger) error {
	switch {
	case opts.ID != "":
		detail, ok := fetcher.FetchByID(ctx, opts.ID)
		if !ok {
			return fmt.Errorf("article %q not found", opts.ID)
		}

		return formatter.WriteJSON(out, detail)
	case opts.Slug != "":
		detail, err := fetcher.FindBySlug(ctx, opts.Slug)
		if err != nil {
			return err
		}

		return formatter.WriteJSON(out, detail)
	}

	list, err := fetcher.FetchAll(ctx)
	if err != nil {
		return err
	}

	if opts.Category != "" {
		list = articles.FilterByCategory(list, opts.Category)
	}

	log.Info("fetch complete", "source", fetcher.Source(), "articles", len(list))

	if opts.ListCategories {
		return formatter.WriteJSON(out, articles.Categories(list))
	}

	if strings.EqualFold(opts.Format, "table") {
		report, err := formatter.Report(list, fetcher.Source(), time.Now())
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, report)

		return err
	}

	return formatter.WriteJSON(out, list)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "⚠️  failed to close %s: %v\n", path, closeErr)
		}
	}, nil
}
