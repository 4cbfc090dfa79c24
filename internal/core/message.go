package core

import "time"

// Message is a chat entry in a room's log. It is never modified after append.
type Message struct {
	From      string
	Text      string
	CreatedAt time.Time
}
