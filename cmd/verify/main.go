// Package main provides the verify command-line tool for checking signed article reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"sitecontent/internal/articles"
	"sitecontent/internal/config"
	"sitecontent/internal/logger"
	"sitecontent/pkg/metadata"
)

var errStale = errors.New("report is out of date")

type options struct {
	config.Options `group:"Content Options"`

	Fresh bool `long:"fresh" description:"Also fetch the current article list and compare fingerprints"`

	Args struct {
		Input string `positional-arg-name:"REPORT" required:"yes"`
	} `positional-args:"yes"`
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
	contentBytes, err := os.ReadFile(opts.Args.Input)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", opts.Args.Input, len(content))

	if _, err := metadata.Verify(content); err != nil {
		return fmt.Errorf("signature check failed: %w", err)
	}

	meta, _ := metadata.Extract(content)
	fmt.Printf("✅ Signature valid: %d articles from %s, generated %s\n",
		meta.Count, meta.Source, meta.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if !opts.Fresh {
		return nil
	}

	return checkFresh(opts.Options, meta)
}

func checkFresh(cliOpts config.Options, meta *metadata.Metadata) error {
	cfg, err := config.FromOptions(cliOpts)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	fetcher, err := articles.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🔍 Fetching current articles from %s...\n", fetcher.Source())

	list, err := fetcher.FetchAll(ctx)
	if err != nil {
		return err
	}

	fingerprint, err := metadata.Fingerprint(list)
	if err != nil {
		return err
	}

	if fingerprint != meta.Fingerprint {
		return fmt.Errorf("%w: %d articles now, %d in report", errStale, len(list), meta.Count)
	}

	fmt.Println("✅ Report matches current content")

	return nil
}
