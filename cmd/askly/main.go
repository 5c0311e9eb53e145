// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command askly is the command-line client for the Askly question service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and an optional .env).
//  3. Open the session store selected by SESSION_DRIVER.
//  4. Wire the transport, the session manager and the question manager.
//  5. Restore the persisted session.
//  6. Run the subcommand.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/taibuivan/askly/internal/platform/apperr"
	"github.com/taibuivan/askly/internal/platform/config"
	"github.com/taibuivan/askly/internal/platform/constants"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "askly: unknown command %q\n\n", name)
		usage()
		return 2
	}

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Commands keep stdout for their own output; the console logs requests.
	level := slog.LevelWarn
	if name == "serve" {
		level = slog.LevelInfo
	}
	log := newLogger(level)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("api_url", cfg.APIURL),
		slog.String("session_driver", cfg.SessionDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// ── 3-5. Session store, wiring and restore ───────────────────────────
	// Use a deadline so a misconfigured store or backend is caught quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer startupCancel()

	application, err := newApp(startupCtx, cfg, log, os.Stdout, os.Stderr)
	must(log, err, "wire application")
	defer application.close()

	if err := application.sessions.Initialize(startupCtx); err != nil {
		log.Error("session_restore_failed", slog.Any("error", err))
		return 1
	}

	// ── 6. Command ────────────────────────────────────────────────────────
	if err := cmd.run(ctx, application, args); err != nil {
		application.report(err)
		return 1
	}
	return 0
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// report prints a command failure unless the transport already showed it.
func (a *app) report(err error) {
	ae := apperr.As(err)
	if ae == nil {
		fmt.Fprintf(a.errOut, "askly: %v\n", err)
		return
	}

	if slices.Contains(a.shown.Errors(), ae.Message) {
		return
	}

	fmt.Fprintf(a.errOut, "error: %s\n", ae.Message)
	for _, detail := range ae.Details {
		fmt.Fprintf(a.errOut, "  %s: %s\n", detail.Field, detail.Message)
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
