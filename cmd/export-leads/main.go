package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/didax-edu/site-api/internal/config"
	"github.com/didax-edu/site-api/internal/export"
	"github.com/didax-edu/site-api/pkg/logging"
)

type options struct {
	from time.Time
	to   time.Time
	out  string
}

func parseOptions(args []string, now time.Time) (options, error) {
	fs := flag.NewFlagSet("export-leads", flag.ContinueOnError)
	from := fs.String("from", "", "first day to export (YYYY-MM-DD), defaults to 30 days ago")
	to := fs.String("to", "", "last day to export (YYYY-MM-DD, inclusive), defaults to today")
	out := fs.String("out", "", "output .xlsx path, defaults to leads-<from>-<to>.xlsx")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	opts := options{from: today.AddDate(0, 0, -30), to: today}
	var err error
	if *from != "" {
		if opts.from, err = time.Parse(time.DateOnly, *from); err != nil {
			return options{}, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if *to != "" {
		if opts.to, err = time.Parse(time.DateOnly, *to); err != nil {
			return options{}, fmt.Errorf("invalid -to: %w", err)
		}
	}
	if opts.to.Before(opts.from) {
		return options{}, fmt.Errorf("-to %s is before -from %s", opts.to.Format(time.DateOnly), opts.from.Format(time.DateOnly))
	}
	// The range is half-open, so the last day is included whole.
	opts.to = opts.to.AddDate(0, 0, 1)

	opts.out = *out
	if opts.out == "" {
		opts.out = fmt.Sprintf("leads-%s-%s.xlsx", opts.from.Format("20060102"), opts.to.AddDate(0, 0, -1).Format("20060102"))
	}
	return opts, nil
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	opts, err := parseOptions(os.Args[1:], time.Now().UTC())
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *appconfig.Config, opts options, logger *logging.Logger) error {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	rows, err := export.NewReader(db).ContactRequests(ctx, opts.from, opts.to)
	if err != nil {
		return err
	}

	file, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.out, err)
	}
	if err := export.WriteWorkbook(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", opts.out, err)
	}

	logger.Info("leads exported",
		"rows", len(rows),
		"from", opts.from.Format(time.DateOnly),
		"to", opts.to.Format(time.DateOnly),
		"out", opts.out,
	)
	return nil
}
