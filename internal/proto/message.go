// Package proto defines the JSON wire format spoken over the websocket.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin   = "join"
	InboundTypeRename = "name:update"
	InboundTypeChat   = "chat:send"
	InboundTypeCode   = "code:update"
	InboundTypeLang   = "lang:update"
	InboundTypeRun    = "run"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventHello     = "server:hello"
	EventRoomState = "room:state"
	EventPresence  = "room:presence"
	EventRenamed   = "you:renamed"
	EventChat      = "chat:recv"
	EventCodeApply = "code:apply"
	EventLangApply = "lang:apply"
	EventRunResult = "run:result"
)

// JoinData requests to join a room under a display name.
type JoinData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// RenameData changes the caller's display name.
type RenameData struct {
	Name string `json:"name"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// CodeData replaces the room's code buffer.
type CodeData struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

// LangData changes the room's language.
type LangData struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

// RunData asks the server to execute code.
type RunData struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventHelloData greets a new connection.
type EventHelloData struct {
	Msg      string `json:"msg"`
	Protocol int    `json:"protocol"`
}

// ChatMessage is one chat line. TS is seconds since the epoch.
type ChatMessage struct {
	Name string  `json:"name"`
	Text string  `json:"text"`
	TS   float64 `json:"ts"`
}

// EventRoomStateData hydrates a joining client.
type EventRoomStateData struct {
	RoomID   string        `json:"roomId"`
	Code     string        `json:"code"`
	Chat     []ChatMessage `json:"chat"`
	Members  []string      `json:"members"`
	Language string        `json:"language"`
	You      string        `json:"you"`
}

// Rename is a display name transition.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EventPresenceData carries the member list and what changed.
type EventPresenceData struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
	Joined  string   `json:"joined,omitempty"`
	Left    string   `json:"left,omitempty"`
	Renamed *Rename  `json:"renamed,omitempty"`
}

// EventRenamedData confirms the caller's new name.
type EventRenamedData struct {
	Name string `json:"name"`
}

// EventCodeData relays a code update.
type EventCodeData struct {
	Code   string `json:"code"`
	RoomID string `json:"roomId"`
}

// EventLangData relays the room's language.
type EventLangData struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

// EventRunData answers a run request. Code is set only on failure.
type EventRunData struct {
	Out  string `json:"out"`
	Err  string `json:"err"`
	Code string `json:"code,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
