package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHello greets a freshly registered connection.
	EventHello EventKind = iota
	// EventRoomState hydrates a joining client with the room snapshot.
	EventRoomState
	// EventPresence carries the room's member list after a change.
	EventPresence
	// EventRenamed confirms the caller's new display name.
	EventRenamed
	// EventChat relays a chat message.
	EventChat
	// EventCodeApply relays a code buffer update.
	EventCodeApply
	// EventLangApply relays the room's confirmed language.
	EventLangApply
	// EventRunResult answers a run command.
	EventRunResult
	// EventError reports a protocol-level problem to a single client.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Text     string
	Name     string
	Code     string
	Language string
	Message  Message
	State    *RoomState
	Presence *Presence
	Run      *RunResult
	Error    *CoreError
}

// RoomState is the snapshot delivered on join.
type RoomState struct {
	RoomID   string
	Code     string
	Language string
	Chat     []Message
	Members  []string
	You      string
}

// Presence describes the member list and the transition that produced it.
// Exactly one of Joined, Left and Renamed is set.
type Presence struct {
	RoomID  string
	Members []string
	Joined  string
	Left    string
	Renamed *Rename
}

// Rename is a display name transition.
type Rename struct {
	From string
	To   string
}

// RunResult is the normalized outcome of a remote execution. Code is empty
// on success.
type RunResult struct {
	Out  string
	Err  string
	Code string
}
