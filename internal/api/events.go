// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/taibuivan/askly/internal/platform/notify"
	"github.com/taibuivan/askly/internal/users/auth"
)

const (
	// eventBuffer is how many messages a slow browser tab may fall behind
	// before it is disconnected.
	eventBuffer = 32

	eventWriteTimeout = 5 * time.Second
)

// # Message Types

const (
	MessageState        = "state"
	MessageTransition   = "transition"
	MessageNotification = "notification"
)

// EventMessage is a single frame on the /api/events stream.
type EventMessage struct {
	Type         string               `json:"type"`
	State        *auth.State          `json:"state,omitempty"`
	Kind         auth.EventKind       `json:"kind,omitempty"`
	View         string               `json:"view,omitempty"`
	Identity     *auth.Identity       `json:"identity,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// StateSource yields the session snapshot sent to a newly connected tab.
type StateSource interface {
	State() auth.State
}

// Hub fans session transitions and notifications out to every open console
// tab over a websocket.
//
// Hub implements [notify.Notifier] so it can be placed behind the transport
// interceptor next to the other sinks.
type Hub struct {
	source         StateSource
	originPatterns []string
	insecure       bool
	logger         *slog.Logger

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	messages chan EventMessage
	// closeSlow disconnects a tab that stopped reading.
	closeSlow func()
}

// NewHub creates a [Hub]. Origins are full origins ("http://localhost:5173");
// when isDev is true every origin is accepted.
func NewHub(source StateSource, origins []string, isDev bool, logger *slog.Logger) *Hub {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			patterns = append(patterns, parsed.Host)
		}
	}

	return &Hub{
		source:         source,
		originPatterns: patterns,
		insecure:       isDev,
		logger:         logger,
		subscribers:    make(map[*subscriber]struct{}),
	}
}

// Publish forwards a session transition. It matches the signature expected
// by [auth.Manager.Subscribe].
func (h *Hub) Publish(event auth.Event) {
	h.broadcast(EventMessage{
		Type:     MessageTransition,
		Kind:     event.Kind,
		View:     event.Kind.Destination(),
		Identity: event.Identity,
	})
}

// Notify implements [notify.Notifier].
func (h *Hub) Notify(_ context.Context, notification notify.Notification) {
	h.broadcast(EventMessage{Type: MessageNotification, Notification: &notification})
}

// Subscribers reports how many tabs are connected.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) broadcast(message EventMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		select {
		case sub.messages <- message:
		default:
			go sub.closeSlow()
		}
	}
}

/*
ServeHTTP upgrades the request and streams [EventMessage] frames until the
tab disconnects.

GET /api/events

The first frame is always the current session state.
*/
func (h *Hub) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	conn, err := websocket.Accept(writer, request, &websocket.AcceptOptions{
		OriginPatterns:     h.originPatterns,
		InsecureSkipVerify: h.insecure,
	})
	if err != nil {
		h.logger.Warn("events_accept_failed", slog.Any("error", err))
		return
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	sub := &subscriber{
		messages: make(chan EventMessage, eventBuffer),
		closeSlow: func() {
			_ = conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with events")
		},
	}

	// Registered before the snapshot is written so nothing published after
	// the snapshot is missed.
	h.add(sub)
	defer h.remove(sub)

	// The console only pushes; CloseRead handles pings and the close frame.
	ctx := conn.CloseRead(request.Context())

	state := h.source.State()
	if err := write(ctx, conn, EventMessage{Type: MessageState, State: &state}); err != nil {
		return
	}

	for {
		select {
		case message := <-sub.messages:
			if err := write(ctx, conn, message); err != nil {
				h.logger.Debug("events_write_failed", slog.Any("error", err))
				return
			}
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}

func write(ctx context.Context, conn *websocket.Conn, message EventMessage) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, message)
}
