package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/treino/internal/app"
	"github.com/claude/treino/internal/config"
	treinomcp "github.com/claude/treino/internal/mcp"
	"github.com/claude/treino/internal/session"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	demo := flag.Bool("demo", false, "serve a local fake backend with sample exercises")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("treino-mcp", Version)
		return
	}

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("treino-mcp starting", "version", Version)

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

	notes := &treinomcp.Notifier{}
	sess := session.New(env.Client, treinomcp.Discard{}, notes, log, env.SessionOptions())
	defer sess.Close()
	sess.Load(context.Background())

	s := treinomcp.New(sess, notes, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
	}
	log.Info("treino-mcp stopped")
}
