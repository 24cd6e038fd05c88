package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"namematcher/export"
	"namematcher/importer"
	"namematcher/internal/config"
	"namematcher/internal/container"
	"namematcher/internal/logging"
	"namematcher/matching"
	"namematcher/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// options параметры запуска, не входящие в config.Config
type options struct {
	envFile  string
	input    string
	output   string
	progress bool
	verbose  bool
}

// parseFlags читает конфигурацию из окружения и переопределяет ее флагами
func parseFlags(args []string, stderr io.Writer) (*config.Config, options, error) {
	var opts options

	// .env надо загрузить до разбора остальных флагов: он задает их значения по умолчанию
	envFlags := flag.NewFlagSet("matcher", flag.ContinueOnError)
	envFlags.SetOutput(io.Discard)
	envFlags.StringVar(&opts.envFile, "env", ".env", "")
	_ = envFlags.Parse(filterFlag(args, "env"))

	cfg, err := config.LoadConfig(opts.envFile)
	if err != nil {
		return nil, opts, err
	}

	var providers string
	fs := flag.NewFlagSet("matcher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: matcher -input <file.pdf|.txt|.html> -output <file.csv|.xlsx|.json> [flags]")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.envFile, "env", opts.envFile, "Path to an optional .env file")
	fs.StringVar(&opts.input, "input", "", "Input document (.pdf, .txt, .text, .html, .htm)")
	fs.StringVar(&opts.output, "output", "", "Output file (.csv, .xlsx, .json)")
	fs.BoolVar(&opts.progress, "progress", false, "Print lookup progress to stderr")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print every match result")

	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Segmentation mode: pattern, comma_then_pattern, aggressive")
	fs.IntVar(&cfg.CapitalizationMinLength, "capitalization-min-length", cfg.CapitalizationMinLength, "Minimum segment length for capitalization splitting")
	fs.Float64Var(&cfg.MinSimilarity, "min-similarity", cfg.MinSimilarity, "Similarity threshold 0-100")
	fs.IntVar(&cfg.MaxResultsPerName, "max-results", cfg.MaxResultsPerName, "Registry records considered per name; values above 1 need a provider with multi-result search (opencorporates) and skip the lookup cache")
	fs.DurationVar(&cfg.InterLookupDelay, "delay", cfg.InterLookupDelay, "Minimum delay between registry lookups")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel lookups, bounded by the registry")
	fs.DurationVar(&cfg.LookupTimeout, "lookup-timeout", cfg.LookupTimeout, "Timeout of a single lookup, 0 disables it")
	fs.StringVar(&providers, "provider", strings.Join(cfg.RegistryProviders, ","), "Registry providers in priority order: opencorporates, refinitiv, mock")
	fs.IntVar(&cfg.Retry.Attempts, "retry-attempts", cfg.Retry.Attempts, "Attempts per registry lookup, 1 disables retries")
	fs.StringVar(&cfg.LookupCache.Backend, "cache", cfg.LookupCache.Backend, "Lookup cache backend: memory, sqlite, redis, none")
	fs.DurationVar(&cfg.LookupCache.TTL, "cache-ttl", cfg.LookupCache.TTL, "Lookup cache TTL")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database for the sqlite cache backend")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg.RegistryProviders = registry.ParseProviders(providers)
	cfg.LookupCache.Backend = strings.ToLower(cfg.LookupCache.Backend)

	var problems []string
	if opts.input == "" {
		problems = append(problems, "-input is required")
	}
	if opts.output == "" {
		problems = append(problems, "-output is required")
	}
	if len(problems) > 0 {
		fs.Usage()
		return nil, opts, errors.New(strings.Join(problems, "; "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// filterFlag оставляет в args только флаг name (в формах -name v, -name=v)
func filterFlag(args []string, name string) []string {
	var filtered []string
	for i := 0; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-") {
			continue
		}
		arg := strings.TrimLeft(args[i], "-")
		switch {
		case arg == name && i+1 < len(args):
			filtered = append(filtered, "-"+name, args[i+1])
			i++
		case strings.HasPrefix(arg, name+"="):
			filtered = append(filtered, "-"+arg)
		}
	}
	return filtered
}

// run извлекает названия из документа, сопоставляет их с реестром и пишет результат.
// Прерывание отменяет незапрошенные названия, уже полученные результаты все равно сохраняются.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	source, err := importer.NewSourceForPath(opts.input)
	if err != nil {
		return err
	}
	sink, err := export.NewSinkForPath(opts.output)
	if err != nil {
		return err
	}

	deps, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	if err := deps.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	lines, err := source.Lines(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.input, err)
	}
	candidates := deps.Segmenter.SegmentLines(lines)
	logger.Info("Document segmented",
		"source", source.ID(),
		"lines", len(lines),
		"candidates", len(candidates))

	aggregatorOpts := []matching.Option{matching.WithLogger(logger.With("component", "matching"))}
	if opts.progress {
		aggregatorOpts = append(aggregatorOpts, matching.WithProgress(func(processed, total int) {
			fmt.Fprintf(stderr, "\rLookups: %d/%d", processed, total)
			if processed == total {
				fmt.Fprintln(stderr)
			}
		}))
	}

	aggregator, err := matching.NewAggregator(deps.Lookup, cfg.MatchingConfig(), aggregatorOpts...)
	if err != nil {
		return err
	}

	batch, err := aggregator.Run(ctx, candidates)
	if err != nil {
		return fmt.Errorf("failed to match candidates: %w", err)
	}

	if err := sink.Write(batch.Results); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}

	if opts.verbose {
		fmt.Fprintln(stdout, renderResults(batch.Results))
	}
	fmt.Fprintln(stdout, renderSummary(batch, source.ID(), opts.output))
	return nil
}
