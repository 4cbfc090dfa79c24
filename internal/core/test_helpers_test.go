package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitEvent(t *testing.T, ch <-chan *Event, match func(*Event) bool) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if match(ev) {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event not received")
	return nil
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()
	return waitEvent(t, ch, func(ev *Event) bool { return ev.Kind == kind })
}

func mustPresence(t *testing.T, ch <-chan *Event, match func(*Presence) bool) *Presence {
	t.Helper()
	ev := waitEvent(t, ch, func(ev *Event) bool {
		return ev.Kind == EventPresence && ev.Presence != nil && match(ev.Presence)
	})
	return ev.Presence
}

func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, within time.Duration) {
	t.Helper()

	timer := time.NewTimer(within)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		case <-timer.C:
			return
		}
	}
}

func startHub(t *testing.T, opts ...Option) (*Hub, *Registry) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rooms := NewRegistry()
	hub := NewHub(rooms, NewDirectory(), opts...)
	go hub.Run(ctx)
	return hub, rooms
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id)
	if err := hub.RegisterClient(c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	if ev := mustEvent(t, c.Events, EventHello); ev.Text == "" {
		t.Fatalf("hello without message: %+v", ev)
	}
	return c
}

func join(t *testing.T, c *Client, room, name string) *RoomState {
	t.Helper()

	c.Commands <- &Command{Kind: CommandJoin, Room: room, Name: name}
	ev := mustEvent(t, c.Events, EventRoomState)
	if ev.State == nil {
		t.Fatalf("room state without payload: %+v", ev)
	}
	return ev.State
}

func zerologNop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
