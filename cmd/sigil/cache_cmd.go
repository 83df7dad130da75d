package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/cache"
	"github.com/cairnsec/sigil/internal/output"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the analysis cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count, size, and age",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached entries",
				Action: runCacheClearCmd,
			},
		},
	}
}

func runCacheStatsCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := [][]string{
		{"Directory", cfg.Cache.Dir},
		{"Entries", fmt.Sprintf("%d", stats.Entries)},
		{"Total size", formatBytes(stats.TotalSize)},
		{"Oldest entry", stats.OldestAge.Round(1e9).String()},
		{"Newest entry", stats.NewestAge.Round(1e9).String()},
	}

	table := output.NewTable("Cache Statistics", []string{"Metric", "Value"}, rows, nil, stats)
	return formatter.Output(table)
}

func runCacheClearCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	formatter.Success("Cache cleared: %s", cfg.Cache.Dir)
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
