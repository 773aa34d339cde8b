package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"DailyDigest/internal/app"
	"DailyDigest/internal/config"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/usecase"
)

type runFlags struct {
	configPath  string
	hours       int
	topN        int
	lang        string
	output      string
	format      string
	metricsFile string
	testMode    bool
	debug       bool
	useCache    bool
}

func main() {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:           "dailydigest",
		Short:         "AI-curated daily digest of RSS/Atom feeds",
		Long:          "Fetches configured feeds, scores and summarizes recent articles with an LLM, and writes a markdown report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: ./config.yaml or $DAILY_DIGEST_CONFIG)")
	pf.IntVar(&flags.hours, "hours", 0, "time window in hours (default 48)")
	pf.IntVar(&flags.topN, "top-n", 0, "number of articles to keep (default 15)")
	pf.StringVar(&flags.lang, "lang", "", "summary language: zh or en (default zh)")
	pf.StringVar(&flags.format, "format", "", "report format: markdown or html")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	pf.BoolVar(&flags.testMode, "test", false, "fetch only the first configured feed")
	pf.BoolVar(&flags.debug, "debug", false, "log prompts and raw LLM responses")
	pf.BoolVar(&flags.useCache, "use-cache", false, "reuse feeds fetched in the last cache TTL")
	root.Flags().StringVar(&flags.output, "output", "", "report path (default data/digest-YYYYMMDD.md)")

	root.AddCommand(scheduleCmd(flags), cacheCmd(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig merges flags over the file configuration.
func loadConfig(flags *runFlags) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, nil, err
	}

	if flags.hours > 0 {
		cfg.Digest.Hours = flags.hours
	}
	if flags.topN > 0 {
		cfg.Digest.TopN = flags.topN
	}
	if flags.lang != "" {
		cfg.Digest.Lang = strings.ToLower(flags.lang)
	}
	if flags.format != "" {
		cfg.Report.Format = strings.ToLower(flags.format)
	}
	if flags.metricsFile != "" {
		cfg.Metrics.Textfile = flags.metricsFile
	}
	if flags.useCache {
		cfg.Cache.Enabled = true
	}
	if flags.debug {
		cfg.Logging.Level = "debug"
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApplication(flags *runFlags) (*app.Application, config.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return nil, cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, logger, fmt.Errorf("invalid config: %w", err)
	}
	application, err := app.New(cfg, logger, cfg.Cache.Enabled)
	if err != nil {
		return nil, cfg, logger, err
	}
	return application, cfg, logger, nil
}

func runOptions(cfg config.Config, output string) usecase.RunOptions {
	return usecase.RunOptions{
		Hours:    cfg.Digest.Hours,
		TopN:     cfg.Digest.TopN,
		Lang:     cfg.Digest.Lang,
		Output:   output,
		UseCache: cfg.Cache.Enabled,
	}
}

func runOnce(cmd *cobra.Command, flags *runFlags) error {
	application, cfg, logger, err := newApplication(flags)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output := flags.output
	if output == "" {
		output = cfg.Digest.Output
	}
	if output == "" {
		output = application.DefaultOutput(time.Now().UTC())
	}

	opts := runOptions(cfg, output)
	opts.TestMode = flags.testMode

	res, runErr := application.Run(ctx, opts)
	if err := application.Metrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("metrics export failed", "error", err)
	}
	if runErr != nil {
		if errors.Is(runErr, usecase.ErrNoArticles) || errors.Is(runErr, usecase.ErrNoRecentArticles) {
			logger.Error("digest aborted", "error", runErr)
		}
		return runErr
	}

	newPrinter(cmd.OutOrStdout()).summary(res)
	return nil
}

func scheduleCmd(flags *runFlags) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the digest now and then on a fixed interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cfg, logger, err := newApplication(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = application.Schedule(ctx, every, func(trigger time.Time) usecase.RunOptions {
				opts := runOptions(cfg, application.DefaultOutput(trigger.UTC()))
				opts.TestMode = flags.testMode
				return opts
			})
			if mErr := application.Metrics().WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
				logger.Warn("metrics export failed", "error", mErr)
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&every, "every", 24*time.Hour, "interval between runs")
	return cmd
}

func cacheCmd(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the feed cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached feed snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			cfg.Cache.Enabled = true

			application, err := app.New(cfg, logger, true)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.ClearCache(cmd.Context()); err != nil {
				return err
			}
			logger.Info("feed cache cleared", "path", cfg.Cache.Path)
			return nil
		},
	})
	return cmd
}
