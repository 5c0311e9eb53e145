// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"sync"

	"github.com/taibuivan/askly/internal/platform/constants"
)

// EventKind names a session transition.
type EventKind string

const (
	EventLoggedIn               EventKind = "logged_in"
	EventRegistered             EventKind = "registered"
	EventLoggedOut              EventKind = "logged_out"
	EventGuestStarted           EventKind = "guest_started"
	EventPasswordResetRequested EventKind = "password_reset_requested"
	EventPasswordReset          EventKind = "password_reset"
	EventSessionExpired         EventKind = "session_expired"
)

// Destination is the view a presentation layer should navigate to.
func (k EventKind) Destination() string {
	switch k {
	case EventLoggedIn, EventRegistered, EventGuestStarted:
		return constants.ViewDashboard
	default:
		return constants.ViewLogin
	}
}

// Message is the success notification for the transition, or "" when none is shown.
func (k EventKind) Message() string {
	switch k {
	case EventLoggedIn:
		return MsgLoginSuccessful
	case EventRegistered:
		return MsgRegistrationSuccessful
	case EventLoggedOut:
		return MsgLoggedOut
	case EventPasswordResetRequested:
		return MsgPasswordResetRequested
	case EventPasswordReset:
		return MsgPasswordResetSuccessful
	default:
		return ""
	}
}

// Event is published after a transition has been persisted.
type Event struct {
	Kind     EventKind `json:"kind"`
	Identity *Identity `json:"identity"`
}

// observers is a registry of event callbacks.
type observers struct {
	mu     sync.RWMutex
	nextID int
	funcs  map[int]func(Event)
}

func (o *observers) add(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.funcs == nil {
		o.funcs = make(map[int]func(Event))
	}
	id := o.nextID
	o.nextID++
	o.funcs[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.funcs, id)
	}
}

func (o *observers) publish(event Event) {
	o.mu.RLock()
	funcs := make([]func(Event), 0, len(o.funcs))
	for _, fn := range o.funcs {
		funcs = append(funcs, fn)
	}
	o.mu.RUnlock()

	for _, fn := range funcs {
		fn(event)
	}
}
