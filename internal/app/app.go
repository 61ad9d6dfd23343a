// Package app builds what a driver needs to run a builder session from
// configuration: the API client, the optional tailnet transport, the
// promotion ledger and the local demo backend.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/backendtest"
	"github.com/claude/treino/internal/config"
	"github.com/claude/treino/internal/ledger"
	"github.com/claude/treino/internal/session"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"
)

// Env holds the wired dependencies. Close releases them in reverse order.
type Env struct {
	Client *api.Client
	// Ledger is nil when state.dir is empty.
	Ledger *ledger.Ledger

	cfg     *config.Config
	log     *slog.Logger
	closers []func() error
}

// Setup wires the backend described by cfg. With demo set, a fake backend
// seeded with sample exercises is served on a loopback port and used instead
// of api.base_url.
func Setup(cfg *config.Config, demo bool, log *slog.Logger) (_ *Env, err error) {
	env := &Env{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			err = multierr.Append(err, env.Close())
		}
	}()

	baseURL := cfg.API.BaseURL
	if demo {
		baseURL, err = env.serveDemo()
		if err != nil {
			return nil, err
		}
	}

	opts := []api.Option{api.WithTimeout(cfg.API.Timeout)}
	if cfg.Tailscale.Enabled && !demo {
		hc, err := env.startTailnet()
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithHTTPClient(hc))
	}
	env.Client = api.NewClient(baseURL, opts...)

	if cfg.State.Dir != "" {
		l, err := ledger.Open(cfg.State.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening promotion ledger: %w", err)
		}
		env.Ledger = l
		env.closers = append(env.closers, l.Close)
		log.Info("promotion ledger opened", "dir", cfg.State.Dir)
	}

	log.Info("backend configured", "base_url", baseURL, "demo", demo, "tailscale", cfg.Tailscale.Enabled && !demo)
	return env, nil
}

// SessionOptions maps the catalog config onto session options.
func (e *Env) SessionOptions() session.Options {
	opts := session.Options{
		PerPage:     e.cfg.Catalog.PerPage,
		LimitExt:    e.cfg.Catalog.LimitExt,
		Debounce:    e.cfg.Catalog.SearchDebounce,
		BaseURL:     e.Client.BaseURL(),
		Placeholder: e.cfg.Catalog.Placeholder,
	}
	if e.Ledger != nil {
		opts.Ledger = e.Ledger
	}
	return opts
}

// Close releases everything Setup acquired.
func (e *Env) Close() error {
	var err error
	for i := len(e.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, e.closers[i]())
	}
	e.closers = nil
	return err
}

func (e *Env) serveDemo() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("demo listen: %w", err)
	}
	srv := &http.Server{Handler: backendtest.New(e.log.With("component", "demo"), backendtest.Demo()...)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("demo backend error", "error", err)
		}
	}()
	e.closers = append(e.closers, srv.Close)

	url := "http://" + ln.Addr().String()
	e.log.Info("demo backend serving", "url", url)
	return url, nil
}

func (e *Env) startTailnet() (*http.Client, error) {
	ts := &tsnet.Server{
		Hostname: e.cfg.Tailscale.Hostname,
		Dir:      e.cfg.Tailscale.StateDir,
	}
	if err := ts.Start(); err != nil {
		return nil, fmt.Errorf("tsnet start: %w", err)
	}
	e.closers = append(e.closers, ts.Close)
	e.log.Info("tsnet client started", "hostname", e.cfg.Tailscale.Hostname)
	return ts.HTTPClient(), nil
}
