package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"lp-tracker/internal/chart"
	"lp-tracker/internal/config"
	"lp-tracker/internal/domain"
	fxmodules "lp-tracker/internal/fx"
	"lp-tracker/internal/logger"
	"lp-tracker/internal/ranking"
	"lp-tracker/internal/service"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

type commandDeps struct {
	fx.In

	LP      *service.LPService
	RankCfg ranking.Config
	Config  *config.Config
	Logger  zerolog.Logger
}

func loadDeps(level string) (commandDeps, error) {
	var deps commandDeps
	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Decorate(func(_ zerolog.Logger, cfg *config.Config) zerolog.Logger {
			if level == "" {
				level = cfg.LogLevel
			}
			return logger.NewConsole(level)
		}),
		fx.Populate(&deps),
	)
	return deps, app.Err()
}

var historyFlags = []cli.Flag{
	&cli.StringFlag{Name: "id", Aliases: []string{"i"}, Usage: "riot id as name#tag", Required: true},
	&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: "region, e.g. EUW", Required: true},
	&cli.IntFlag{Name: "pages", Usage: "fetch at most this many pages (0 = all)", Value: -1},
	&cli.IntFlag{Name: "batch", Usage: "pages fetched concurrently per batch (0 = configured)"},
	&cli.UintFlag{Name: "retries", Usage: "attempts for the whole fetch", Value: 3},
	&cli.StringFlag{Name: "log-level", Usage: "overrides LP_LOG_LEVEL"},
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "print a summary of the LP history",
		Flags: historyFlags,
		Action: func(c *cli.Context) error {
			deps, hist, err := fetch(c)
			if err != nil {
				return err
			}
			return printSummary(c.App.Writer, hist, deps.RankCfg)
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "write the LP history as an HTML chart",
		Flags: append(historyFlags[:len(historyFlags):len(historyFlags)],
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file", Value: "lp-history.html"},
		),
		Action: func(c *cli.Context) error {
			deps, hist, err := fetch(c)
			if err != nil {
				return err
			}

			path := c.String("output")
			if err := writeChart(path, hist, deps.RankCfg); err != nil {
				return err
			}
			deps.Logger.Info().Str("file", path).Int("points", len(hist.Points)).Msg("chart written")
			return nil
		},
	}
}

func fetch(c *cli.Context) (commandDeps, *domain.LPHistory, error) {
	riotID, err := domain.ParseRiotID(c.String("id"))
	if err != nil {
		return commandDeps{}, nil, err
	}
	region, err := domain.ParseRegion(c.String("region"))
	if err != nil {
		return commandDeps{}, nil, err
	}

	deps, err := loadDeps(c.String("log-level"))
	if err != nil {
		return commandDeps{}, nil, err
	}

	opts := service.FetchOptions{PageLimit: deps.Config.PageLimit, BatchSize: deps.Config.BatchSize}
	if pages := c.Int("pages"); pages >= 0 {
		opts.PageLimit = pages
	}
	if batch := c.Int("batch"); batch > 0 {
		opts.BatchSize = batch
	}

	var hist *domain.LPHistory
	err = retry.Do(
		func() error {
			var err error
			hist, err = deps.LP.GetHistory(c.Context, riotID, region, opts)
			return err
		},
		retry.Context(c.Context),
		retry.Attempts(max(c.Uint("retries"), 1)),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			deps.Logger.Warn().Err(err).Uint("attempt", n+1).Msg("lp history fetch failed, retrying")
		}),
	)
	if err != nil {
		return commandDeps{}, nil, err
	}
	return deps, hist, nil
}

// writeChart only touches path once the chart rendered.
func writeChart(path string, hist *domain.LPHistory, cfg ranking.Config) error {
	var buf bytes.Buffer
	if err := chart.Render(&buf, hist, cfg, chart.DefaultOptions()); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var fetchErr *service.FetchError
	var normErr *service.NormalizationError
	return errors.As(err, &fetchErr) || errors.As(err, &normErr) || errors.Is(err, context.DeadlineExceeded)
}

func printSummary(w io.Writer, hist *domain.LPHistory, cfg ranking.Config) error {
	label := func(v int) string {
		return ranking.FormatRank(v, hist.Thresholds, cfg, ranking.FormatOptions{Short: true, ShowLP: true})
	}

	if _, err := fmt.Fprintf(w, "%s [%s]: %d ranked games over %d pages\n", hist.RiotID, hist.Region, len(hist.Points), hist.Pages); err != nil {
		return err
	}
	if len(hist.Points) == 0 {
		return nil
	}

	current := hist.Points[len(hist.Points)-1]
	fmt.Fprintf(w, "current: %s (%s, patch %s)\n", label(current.Value), current.Timestamp.Format("Jan 02 15:04"), current.Patch)
	if p := hist.Peak; p != nil {
		fmt.Fprintf(w, "peak:    %s at %s patch %s (%d games ago)\n", label(p.Value), p.Timestamp.Format("Jan 02"), p.Patch, p.GamesAgo)
	}
	for _, change := range ranking.PatchChanges(hist.Points) {
		fmt.Fprintf(w, "patch %s from %d games ago\n", change.Patch, change.GamesAgo)
	}
	return nil
}
