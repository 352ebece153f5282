package main

import (
	"context"
	"log/slog"

	"github.com/toropanov/capetica/config"
	"github.com/toropanov/capetica/internal/adapters/notify"
	"github.com/toropanov/capetica/internal/adapters/storage"
	"github.com/toropanov/capetica/internal/application/engine"
	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/ports"
	"github.com/toropanov/capetica/internal/strategy"
)

type playOptions struct {
	months int
	policy string
	resume string
}

func runPlay(ctx context.Context, bundle *content.Bundle, store *storage.SQLiteStorage, notifier ports.Notifier, cfg config.GameConfig, opts playOptions) int {
	p, ok := strategy.DefaultRegistry().Get(opts.policy)
	if !ok {
		slog.Error("unknown policy", "policy", opts.policy, "known", strategy.DefaultRegistry().Names())
		return 1
	}

	eng := engine.New(bundle, store, engine.Config{Seed: cfg.Seed, Difficulty: cfg.Difficulty})
	defer eng.Close()

	s, err := startGame(ctx, eng, cfg, opts.resume)
	if err != nil {
		slog.Error("failed to start game", "err", err)
		return 1
	}
	slog.Info("=== AUTOPLAY ===", "game_id", eng.GameID(), "policy", p.Name(), "months", opts.months, "from_month", s.Month)

	for i := 0; i < opts.months; i++ {
		if ctx.Err() != nil {
			slog.Info("autoplay stopped (signal)", "month", s.Month)
			break
		}
		if s.Finished() {
			break
		}
		s = eng.PlayMonth(p)
		if err := notifier.NotifyTurn(ctx, s); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if opts.months == 0 {
		// -resume sin -play: mostrar dónde quedó la partida
		if err := notifier.NotifyTurn(ctx, s); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if err := eng.Close(); err != nil {
		slog.Warn("engine close failed", "err", err)
	}
	turns, err := eng.History(ctx)
	if err != nil {
		slog.Warn("failed to read game history", "err", err)
	}
	slog.Info("autoplay complete", "game_id", eng.GameID(), "month", s.Month, "outcome", s.Outcome(), "turns_saved", len(turns))
	return 0
}

func startGame(ctx context.Context, eng *engine.Engine, cfg config.GameConfig, resume string) (domain.GameState, error) {
	prefs := game.Prefs{GoalID: cfg.Goal, Difficulty: cfg.Difficulty}
	switch {
	case resume == "latest":
		games, err := eng.ListGames(ctx, 1)
		if err != nil {
			return domain.GameState{}, err
		}
		if len(games) == 0 {
			return domain.GameState{}, domain.ErrGameNotFound
		}
		return eng.Resume(ctx, games[0].ID)
	case resume != "":
		return eng.Resume(ctx, resume)
	case cfg.Profession != "":
		return eng.SelectProfession(cfg.Profession, prefs)
	default:
		return eng.RandomProfession(prefs)
	}
}

func runGames(ctx context.Context, bundle *content.Bundle, store *storage.SQLiteStorage, notifier *notify.Console) int {
	eng := engine.New(bundle, store, engine.Config{})
	defer eng.Close()

	games, err := eng.ListGames(ctx, 20)
	if err != nil {
		slog.Error("failed to list games", "err", err)
		return 1
	}
	notifier.PrintGames(games)
	return 0
}
