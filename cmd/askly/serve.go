// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"

	"github.com/taibuivan/askly/internal/api"
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/users/auth"
)

// serve runs the local web console until ctx is canceled by a signal.
func serve(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", a.cfg.ConsolePort, "console port")
	if err := parse(fs, args); err != nil {
		return err
	}
	a.cfg.ConsolePort = *port

	// A long-running console never reports a single command's failure.
	a.reported.Attach(nil)

	// Health handlers (wired with real dependency checkers)
	liveness, readiness := api.NewHealthHandlers(a.log, api.Check{
		Name: "session_" + a.cfg.SessionDriver,
		Ping: a.records.Ping,
	})

	// Event stream: transitions and every notification reach open tabs.
	hub := api.NewHub(a.sessions, a.cfg.AllowedOrigins(), a.cfg.IsDevelopment(), a.log)
	a.console.Attach(hub)
	unsubscribe := a.sessions.Subscribe(hub.Publish)
	defer unsubscribe()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   auth.NewHandler(a.sessions),
		Questions: questions.NewHandler(a.questions),
		Events:    hub,
	}

	server := api.NewServer(ctx, a.cfg, a.log, a.sessions, a.questions, handlers)

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-serverErr:
		a.log.Error("console startup error", slog.Any("error", runErr))
	}

	// Give in-flight requests enough time to complete.
	a.log.Info("shutting down console", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		a.log.Error("shutdown error", slog.Any("error", err))
		return errors.Join(runErr, err)
	}

	a.log.Info("console stopped cleanly")
	return runErr
}
