package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/treino/internal/app"
	"github.com/claude/treino/internal/config"
	"github.com/claude/treino/internal/session"
	"github.com/claude/treino/internal/view"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	demo := flag.Bool("demo", false, "serve a local fake backend with sample exercises")
	debug := flag.Bool("debug", false, "log debug messages")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("treino", Version)
		return
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	// Logs go to stderr so they do not interleave with the rendered screen.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	log.Info("treino starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	env, err := app.Setup(cfg, *demo, log)
	if err != nil {
		log.Error("failed to set up backend", "error", err)
		os.Exit(1)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in := bufio.NewScanner(os.Stdin)
	notes := &promptNotifier{in: in, out: os.Stdout}
	sess := session.New(env.Client, view.NewTextRenderer(os.Stdout), notes, log, env.SessionOptions())
	defer sess.Close()

	r := &repl{sess: sess, in: in, out: os.Stdout, log: log}
	sess.Load(ctx)
	r.run(ctx)
}
