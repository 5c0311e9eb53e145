// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/taibuivan/askly/internal/platform/apiclient"
	"github.com/taibuivan/askly/internal/platform/config"
	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/session"
	"github.com/taibuivan/askly/internal/users/auth"
)

// app holds the wired client shared by every subcommand.
type app struct {
	cfg *config.Config
	log *slog.Logger

	store   session.Store
	records *session.Records

	notifier notify.Notifier
	// shown records what was already printed, so failures are not repeated.
	// It is fed through reported, which `serve` detaches.
	shown    *notify.Recorder
	reported *notify.Relay
	// console receives notifications once `serve` attaches the event hub.
	console *notify.Relay

	sessions  *auth.Manager
	questions *questions.Manager

	out    io.Writer
	errOut io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, out, errOut io.Writer) (*app, error) {
	store, err := session.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	records := session.NewRecords(store)

	shown := &notify.Recorder{}
	reported := &notify.Relay{}
	reported.Attach(shown)
	console := &notify.Relay{}
	notifier := notify.Fanout(notify.Writer(errOut), notify.Log(log), reported, console)

	client, err := apiclient.New(apiclient.Options{
		BaseURL:        cfg.APIURL,
		Timeout:        cfg.APITimeout,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
	}, records, notifier, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sessions := auth.NewManager(auth.NewRemoteAccounts(client), records, log)
	client.OnUnauthorized(sessions.Expire)

	sessions.Subscribe(func(event auth.Event) {
		log.Info("navigate",
			slog.String("event", string(event.Kind)),
			slog.String("view", event.Kind.Destination()),
		)
		if message := event.Kind.Message(); message != "" {
			notify.Success(context.Background(), notifier, message)
		}
	})

	selector := questions.NewSelector(questions.NewNetworked(client), sessions)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		records:   records,
		notifier:  notifier,
		shown:     shown,
		reported:  reported,
		console:   console,
		sessions:  sessions,
		questions: questions.NewManager(sessions, selector, log),
		out:       out,
		errOut:    errOut,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("session_store_close_failed", slog.Any("error", err))
	}
}
