package core

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/language"
)

const (
	// DefaultRoom is used when a command names no room and the client is not bound.
	DefaultRoom = "default"
	// DefaultHistoryLimit is how many chat messages a joiner receives.
	DefaultHistoryLimit = 50

	helloMessage  = "connected"
	anonymousName = "Anonymous"
)

// CodeRunner executes code for the run command. Errors that implement
// ErrorCode() string keep their code in the reply.
type CodeRunner interface {
	RunCode(ctx context.Context, language, code, stdin string) (stdout, stderr string, err error)
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Rooms       int
	Connections int
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithRunner enables the run command.
func WithRunner(r CodeRunner) Option {
	return func(h *Hub) { h.runner = r }
}

// WithHistoryLimit sets how many chat messages are sent on join.
func WithHistoryLimit(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.historyLimit = n
		}
	}
}

// WithIdleEviction removes empty rooms idle for ttl, checked every interval.
// A zero ttl keeps rooms forever.
func WithIdleEviction(ttl, interval time.Duration) Option {
	return func(h *Hub) {
		h.idleTTL = ttl
		h.sweepEvery = interval
	}
}

type runReply struct {
	client *Client
	event  *Event
}

// Hub serializes every room and session mutation on a single loop. Remote
// execution runs off the loop and reports back through results.
type Hub struct {
	rooms    *Registry
	sessions *Directory
	out      *Broadcaster
	runner   CodeRunner
	log      *zerolog.Logger

	historyLimit int
	idleTTL      time.Duration
	sweepEvery   time.Duration

	handlers  map[CommandKind]func(context.Context, *Command)
	clients   map[*Client]context.CancelFunc
	register  chan *Client
	inbox     chan *Command
	results   chan runReply
	done      chan struct{}
	connected atomic.Int64
}

// NewHub creates a hub over the given registries.
func NewHub(rooms *Registry, sessions *Directory, opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		rooms:        rooms,
		sessions:     sessions,
		log:          &nop,
		historyLimit: DefaultHistoryLimit,
		clients:      make(map[*Client]context.CancelFunc),
		register:     make(chan *Client),
		inbox:        make(chan *Command, 256),
		results:      make(chan runReply, 16),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.out = NewBroadcaster(sessions, h.log)
	h.handlers = map[CommandKind]func(context.Context, *Command){
		CommandJoin:        h.handleJoin,
		CommandRename:      h.handleRename,
		CommandChat:        h.handleChat,
		CommandUpdateCode:  h.handleCode,
		CommandSetLanguage: h.handleLanguage,
		CommandRun:         h.handleRun,
	}
	return h
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	var sweep <-chan time.Time
	if h.idleTTL > 0 && h.sweepEvery > 0 {
		ticker := time.NewTicker(h.sweepEvery)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.removeClient(c)
			}
			return
		case c := <-h.register:
			h.addClient(ctx, c)
		case cmd := <-h.inbox:
			h.dispatch(ctx, cmd)
		case r := <-h.results:
			if _, ok := h.clients[r.client]; ok {
				h.out.Send(r.client, r.event)
			}
		case <-sweep:
			for _, id := range h.rooms.EvictIdle(h.idleTTL) {
				h.log.Info().Str("room_id", id).Msg("evicted idle room")
			}
		}
	}
}

// RegisterClient starts routing the client's commands and greets it.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient removes the client, leaving its room if it joined one.
// Commands the client queued before the call are handled first. The caller
// must have stopped writing to c.Commands.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case c.Commands <- &Command{Kind: commandDisconnect}:
	case <-h.done:
	}
}

// Stats reports the number of rooms and registered connections.
func (h *Hub) Stats() Stats {
	return Stats{
		Rooms:       h.rooms.Len(),
		Connections: int(h.connected.Load()),
	}
}

func (h *Hub) addClient(ctx context.Context, c *Client) {
	if _, ok := h.clients[c]; ok {
		return
	}
	pumpCtx, cancel := context.WithCancel(ctx)
	h.clients[c] = cancel
	h.connected.Add(1)
	go h.pump(pumpCtx, c)

	h.out.Send(c, &Event{Kind: EventHello, Text: helloMessage})
	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
}

func (h *Hub) removeClient(c *Client) {
	cancel, ok := h.clients[c]
	if !ok {
		return
	}
	cancel()
	delete(h.clients, c)
	h.connected.Add(-1)
	h.leave(c)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
}

func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			cmd.Client = c
			select {
			case h.inbox <- cmd:
			case <-ctx.Done():
				return
			}
			if cmd.Kind == commandDisconnect {
				return
			}
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, cmd *Command) {
	if cmd == nil || cmd.Client == nil {
		return
	}
	if _, ok := h.clients[cmd.Client]; !ok {
		return
	}
	if cmd.Kind == commandDisconnect {
		h.removeClient(cmd.Client)
		return
	}
	handle, ok := h.handlers[cmd.Kind]
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("client_id", cmd.Client.ID).Msg("command handler panicked")
		}
	}()
	handle(ctx, cmd)
}

func (h *Hub) resolveRoom(c *Client, requested string) string {
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	if s, ok := h.sessions.Lookup(c); ok {
		return s.RoomID
	}
	return DefaultRoom
}

// leave drops the client's binding and tells the rest of its room.
func (h *Hub) leave(c *Client) {
	s, ok := h.sessions.Unbind(c)
	if !ok {
		return
	}
	h.rooms.RemoveMember(s.RoomID, s.Name)
	h.out.Room(s.RoomID, &Event{
		Kind: EventPresence,
		Room: s.RoomID,
		Presence: &Presence{
			RoomID:  s.RoomID,
			Members: h.rooms.Members(s.RoomID),
			Left:    s.Name,
		},
	}, nil)
	h.log.Info().Str("room_id", s.RoomID).Str("name", s.Name).Msg("left room")
}

func (h *Hub) handleJoin(_ context.Context, cmd *Command) {
	base := strings.TrimSpace(cmd.Name)
	if base == "" {
		return
	}
	c := cmd.Client
	roomID := h.resolveRoom(c, cmd.Room)

	h.leave(c)
	you := h.rooms.ClaimName(roomID, base)
	h.sessions.Bind(c, roomID, you)
	snap := h.rooms.GetOrCreate(roomID, h.historyLimit)

	h.out.Send(c, &Event{
		Kind: EventRoomState,
		Room: roomID,
		State: &RoomState{
			RoomID:   roomID,
			Code:     snap.Code,
			Language: snap.Language,
			Chat:     snap.Chat,
			Members:  snap.Members,
			You:      you,
		},
	})
	h.out.Room(roomID, &Event{
		Kind: EventPresence,
		Room: roomID,
		Presence: &Presence{
			RoomID:  roomID,
			Members: snap.Members,
			Joined:  you,
		},
	}, nil)
	h.log.Info().Str("room_id", roomID).Str("name", you).Str("client_id", c.ID).Msg("joined room")
}

func (h *Hub) handleRename(_ context.Context, cmd *Command) {
	base := strings.TrimSpace(cmd.Name)
	if base == "" {
		return
	}
	c := cmd.Client
	s, ok := h.sessions.Lookup(c)
	if !ok || base == s.Name {
		return
	}

	h.rooms.RemoveMember(s.RoomID, s.Name)
	name := h.rooms.ClaimName(s.RoomID, base)
	if name == s.Name {
		return
	}
	h.sessions.Rename(c, name)

	h.out.Send(c, &Event{Kind: EventRenamed, Room: s.RoomID, Name: name})
	h.out.Room(s.RoomID, &Event{
		Kind: EventPresence,
		Room: s.RoomID,
		Presence: &Presence{
			RoomID:  s.RoomID,
			Members: h.rooms.Members(s.RoomID),
			Renamed: &Rename{From: s.Name, To: name},
		},
	}, nil)
	h.log.Info().Str("room_id", s.RoomID).Str("from", s.Name).Str("to", name).Msg("renamed")
}

func (h *Hub) handleChat(_ context.Context, cmd *Command) {
	if strings.TrimSpace(cmd.Text) == "" {
		return
	}
	c := cmd.Client
	roomID := h.resolveRoom(c, cmd.Room)
	author := anonymousName
	if s, ok := h.sessions.Lookup(c); ok {
		author = s.Name
	}

	msg := Message{From: author, Text: cmd.Text, CreatedAt: time.Now()}
	h.rooms.AppendChat(roomID, msg)
	h.out.Room(roomID, &Event{Kind: EventChat, Room: roomID, Message: msg}, c)
	h.log.Debug().Str("room_id", roomID).Str("name", author).Msg("chat relayed")
}

func (h *Hub) handleCode(_ context.Context, cmd *Command) {
	c := cmd.Client
	roomID := h.resolveRoom(c, cmd.Room)
	h.rooms.SetCode(roomID, cmd.Code)
	h.out.Room(roomID, &Event{Kind: EventCodeApply, Room: roomID, Code: cmd.Code}, c)
}

func (h *Hub) handleLanguage(_ context.Context, cmd *Command) {
	lang, ok := language.Normalize(cmd.Language)
	if !ok {
		return
	}
	c := cmd.Client
	roomID := h.resolveRoom(c, cmd.Room)
	h.rooms.SetLanguage(roomID, lang)

	ev := &Event{Kind: EventLangApply, Room: roomID, Language: lang}
	h.out.Room(roomID, ev, nil)
	if s, bound := h.sessions.Lookup(c); !bound || s.RoomID != roomID {
		h.out.Send(c, ev)
	}
	h.log.Info().Str("room_id", roomID).Str("language", lang).Msg("language changed")
}

func (h *Hub) handleRun(ctx context.Context, cmd *Command) {
	c := cmd.Client
	if h.runner == nil {
		h.out.Send(c, &Event{Kind: EventError, Error: coreError(ErrCodeRunUnavailable, "code execution is not configured")})
		return
	}

	lang, code, stdin := cmd.Language, cmd.Code, cmd.Stdin
	go func() {
		res := h.execute(ctx, lang, code, stdin)
		select {
		case h.results <- runReply{client: c, event: &Event{Kind: EventRunResult, Run: res}}:
		case <-ctx.Done():
		}
	}()
}

func (h *Hub) execute(ctx context.Context, lang, code, stdin string) (res *RunResult) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("runner panicked")
			res = &RunResult{Err: "Server error: internal failure", Code: "server_error"}
		}
	}()

	stdout, stderr, err := h.runner.RunCode(ctx, lang, code, stdin)
	if err != nil {
		result := &RunResult{Err: err.Error(), Code: "server_error"}
		var coded interface{ ErrorCode() string }
		if errors.As(err, &coded) {
			result.Code = coded.ErrorCode()
		}
		return result
	}
	return &RunResult{Out: stdout, Err: stderr}
}
