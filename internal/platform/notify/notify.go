// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify delivers user-visible notifications ("toasts").

The transport interceptor reports every backend failure here exactly once,
and presentation layers report successful transitions. Sinks decide how a
notification is shown: a log line, a terminal message or a console event.
*/
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single message shown to the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification)
}

// Func adapts a plain function to a [Notifier].
type Func func(ctx context.Context, notification Notification)

// Notify implements [Notifier].
func (f Func) Notify(ctx context.Context, notification Notification) {
	f(ctx, notification)
}

// Success is a shortcut for a success notification.
func Success(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, Notification{Level: LevelSuccess, Message: message})
}

// Error is a shortcut for an error notification.
func Error(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, Notification{Level: LevelError, Message: message})
}

// # Sinks

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Log writes notifications as structured log entries.
func Log(logger *slog.Logger) Notifier {
	return Func(func(ctx context.Context, notification Notification) {
		level := slog.LevelInfo
		if notification.Level == LevelError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "notification",
			slog.String("level", string(notification.Level)),
			slog.String("message", notification.Message),
		)
	})
}

// Fanout forwards every notification to all sinks, in order.
func Fanout(sinks ...Notifier) Notifier {
	return Func(func(ctx context.Context, notification Notification) {
		for _, sink := range sinks {
			sink.Notify(ctx, notification)
		}
	})
}

// Writer prints one line per notification, e.g. "error: Session expired".
func Writer(w io.Writer) Notifier {
	var mu sync.Mutex
	return Func(func(_ context.Context, notification Notification) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(w, "%s: %s\n", notification.Level, notification.Message)
	})
}

// Relay forwards to a sink attached after construction. Until a sink is
// attached, notifications are dropped.
type Relay struct {
	mu   sync.RWMutex
	sink Notifier
}

// Attach sets the sink that receives subsequent notifications.
func (r *Relay) Attach(sink Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = sink
}

// Notify implements [Notifier].
func (r *Relay) Notify(ctx context.Context, notification Notification) {
	r.mu.RLock()
	sink := r.sink
	r.mu.RUnlock()

	if sink != nil {
		sink.Notify(ctx, notification)
	}
}

// Recorder keeps notifications in memory. It is safe for concurrent use.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

// Notify implements [Notifier].
func (r *Recorder) Notify(_ context.Context, notification Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Errors returns the messages of recorded error notifications.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []string
	for _, n := range r.notifications {
		if n.Level == LevelError {
			messages = append(messages, n.Message)
		}
	}
	return messages
}
