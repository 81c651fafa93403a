package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/handarena/internal/config"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/injector"
	"github.com/zeusync/handarena/internal/render/term"
	"github.com/zeusync/handarena/pkg/concurrent"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envPath := flag.String("env", ".env", "path to a .env file; missing files are ignored")
	tui := flag.Bool("tui", false, "render in the terminal and use the mouse as the hand")
	logPath := flag.String("log", "", "log output path (defaults to stderr, or arena.log with -tui)")
	flag.Parse()

	if err := run(*configPath, *envPath, *logPath, *tui); err != nil {
		fmt.Fprintln(os.Stderr, "arena:", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, logPath string, tui bool) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err = cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	// The terminal owns stderr while the viewer runs.
	if logPath == "" && tui {
		logPath = "arena.log"
	}
	app, cleanup, err := injector.InitializeApp(cfg, injector.LogOutput(logPath))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks := []concurrent.Task{app.Driver.Run, app.Server.Run}
	if tui {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		chime := term.NewChime()
		if err := chime.Initialize(); err != nil {
			app.Logger.Warn("Audio unavailable, running without sound", log.Error(err))
		}
		defer chime.Close()
		viewer := term.New(screen, app.Driver, app.Logger, term.WithBest(app.Tracker), term.WithChime(chime))
		tasks = append(tasks, viewer.Run)
	}

	app.Logger.Info("Arena starting",
		log.String("listen_addr", cfg.ListenAddr),
		log.Bool("tui", tui),
		log.Int("best_seconds", app.Tracker.Best()))
	err = concurrent.Supervise(ctx, tasks...)
	app.Logger.Info("Arena stopped")
	return err
}
