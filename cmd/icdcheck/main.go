// Command icdcheck verifies connectivity to the classification provider: it
// acquires a token, runs one search and prints the outcome.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mindlog/mindlog/internal/config"
	"github.com/mindlog/mindlog/internal/icd"
	"github.com/mindlog/mindlog/internal/metrics"
)

func main() {
	var (
		query   = flag.String("query", "depression", "Search query to run")
		limit   = flag.Int("limit", 5, "Maximum results to print")
		format  = flag.String("format", "plain", "Output format: plain or json")
		envFile = flag.String("env", ".env", "Optional .env file with ICD_CLIENT_ID and ICD_CLIENT_SECRET")
		verbose = flag.Bool("v", false, "Log client events to stderr")
	)
	flag.Parse()

	cfg, err := config.LoadICD(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !cfg.Enabled() {
		fmt.Fprintln(os.Stderr, "ICD_CLIENT_ID and ICD_CLIENT_SECRET are required")
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	recorder := metrics.NewInMemory()

	client := icd.New(icd.Config{
		TokenURL:         cfg.TokenURL,
		BaseURL:          cfg.BaseURL,
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		Scope:            cfg.Scope,
		Release:          cfg.Release,
		Language:         cfg.Language,
		CategoryEntityID: cfg.CategoryEntityID,
		Timeout:          cfg.Timeout,
		SafetyMargin:     cfg.SafetyMargin,
	}, icd.WithLogger(logger), icd.WithMetrics(recorder))

	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.Timeout)
	defer cancel()

	start := time.Now()
	if _, err := client.Token(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "token: FAILED (%s): %v\n", icd.KindName(err), err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "token: ok (%s)\n", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	matches, err := client.SearchConditions(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search: FAILED (%s): %v\n", icd.KindName(err), err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "search: ok, %d results (%s)\n", len(matches), time.Since(start).Round(time.Millisecond))

	if len(matches) > *limit {
		matches = matches[:*limit]
	}

	switch *format {
	case "plain":
		for _, m := range matches {
			fmt.Printf("%-8s %s\n", m.Code, m.CleanTitle)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			Query   string `json:"query"`
			Results any    `json:"results"`
			Metrics any    `json:"metrics"`
		}{*query, matches, recorder.Snapshot()})
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
