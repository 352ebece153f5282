package main

import (
	"context"
	"log/slog"

	"github.com/toropanov/capetica/config"
	"github.com/toropanov/capetica/internal/adapters/storage"
	"github.com/toropanov/capetica/internal/application/balance"
	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/ports"
	"github.com/toropanov/capetica/internal/strategy"
)

func runCheck(ctx context.Context, bundle *content.Bundle, store *storage.SQLiteStorage, notifier ports.Notifier, cfg config.BalanceConfig) int {
	slog.Info("=== BALANCE CHECK ===", "runs", cfg.Runs, "turns", cfg.Turns, "short_turns", cfg.ShortTurns, "seed", cfg.Seed, "workers", cfg.Workers)

	runner := balance.NewRunner(game.New(bundle), strategy.DefaultRegistry(), balance.Options{
		Workers: cfg.Workers,
		Store:   store,
	})
	res, err := runner.Check(ctx, balance.CheckConfig{
		Runs:       cfg.Runs,
		Turns:      cfg.Turns,
		ShortTurns: cfg.ShortTurns,
		Seed:       cfg.Seed,
	})
	if err != nil {
		slog.Error("balance check failed", "err", err)
		return 1
	}
	if err := notifier.NotifyCheck(ctx, res); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	if !res.Acceptable {
		return 1
	}
	return 0
}

func runSimulate(ctx context.Context, bundle *content.Bundle, store *storage.SQLiteStorage, notifier ports.Notifier, writer ports.ReportWriter, cfg config.SimulationConfig) int {
	slog.Info("=== BALANCE SIMULATION ===", "runs", cfg.Runs, "months", cfg.Months, "seed", cfg.Seed, "workers", cfg.Workers)

	runner := balance.NewRunner(game.New(bundle), strategy.DefaultRegistry(), balance.Options{
		Workers: cfg.Workers,
		Store:   store,
	})
	rep, err := runner.Simulate(ctx, balance.SimConfig{
		Runs:   cfg.Runs,
		Months: cfg.Months,
		Seed:   cfg.Seed,
	})
	if err != nil {
		slog.Error("balance simulation failed", "err", err)
		return 1
	}
	if err := notifier.NotifyReport(ctx, rep); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	paths, err := writer.WriteSimReport(ctx, rep)
	if err != nil {
		slog.Error("failed to write report", "err", err, "dir", cfg.ReportDir)
		return 1
	}
	slog.Info("report written", "run_id", rep.Meta.ID, "files", paths)
	return 0
}
