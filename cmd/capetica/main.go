package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/toropanov/capetica/config"
	"github.com/toropanov/capetica/internal/adapters/notify"
	"github.com/toropanov/capetica/internal/adapters/reportfs"
	"github.com/toropanov/capetica/internal/adapters/storage"
	"github.com/toropanov/capetica/internal/content"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	check := flag.Bool("check", false, "run the balance acceptance check and exit 1 if it fails")
	simulate := flag.Bool("simulate", false, "run the balance simulation and write the report files")
	play := flag.Int("play", 0, "autoplay N months of a single game")
	profession := flag.String("profession", "", "profession for -play (overrides config; empty = random)")
	policy := flag.String("policy", "balanced", "policy that drives -play")
	resume := flag.String("resume", "", "resume a saved game by id, or \"latest\"")
	games := flag.Bool("games", false, "list saved games")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	slog.Info("capetica starting",
		"config", *configPath,
		"content", cfg.Content.Dir,
		"check", *check,
		"simulate", *simulate,
		"play", *play,
	)

	bundle, err := content.Load(cfg.Content.Dir)
	if err != nil {
		slog.Error("failed to load content", "err", err, "dir", cfg.Content.Dir)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	code := 0
	switch {
	case *check:
		code = runCheck(ctx, bundle, store, notifier, cfg.Balance)
	case *simulate:
		code = runSimulate(ctx, bundle, store, notifier, reportfs.New(cfg.Simulation.ReportDir), cfg.Simulation)
	case *games:
		code = runGames(ctx, bundle, store, notifier)
	case *play > 0 || *resume != "":
		if *profession != "" {
			cfg.Game.Profession = *profession
		}
		code = runPlay(ctx, bundle, store, notifier, cfg.Game, playOptions{
			months: *play,
			policy: *policy,
			resume: *resume,
		})
	default:
		flag.Usage()
		code = 2
	}

	if code != 0 {
		// os.Exit no corre los defers
		store.Close()
		closeLog()
		os.Exit(code)
	}
	slog.Info("capetica stopped cleanly")
}

// setupLogger configura slog y devuelve la función que cierra el archivo de
// log, si lo hay.
func setupLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(os.Stderr, rotated)
		closeFn = func() { _ = rotated.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn
}
