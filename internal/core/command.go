package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin binds the client to a room under a display name.
	CommandJoin CommandKind = iota
	// CommandRename changes the client's display name in its current room.
	CommandRename
	// CommandChat appends a chat message and relays it to the room.
	CommandChat
	// CommandUpdateCode replaces the room's code buffer.
	CommandUpdateCode
	// CommandSetLanguage changes the room's language.
	CommandSetLanguage
	// CommandRun executes code remotely and replies to the sender only.
	CommandRun

	// commandDisconnect trails a client's queued commands once it unregisters.
	commandDisconnect
)

// Command represents an action requested by a client. Room may be empty,
// in which case the client's bound room (or DefaultRoom) is used.
type Command struct {
	Kind     CommandKind
	Client   *Client
	Room     string
	Name     string
	Text     string
	Code     string
	Language string
	Stdin    string
}
