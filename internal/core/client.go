package core

import "sync"

// Client is a live connection as seen by the core layer. The transport
// writes Commands and drains Events; the hub closes Events once the client
// is unregistered.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	lagOnce sync.Once
	lagged  chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 64),
		lagged:   make(chan struct{}),
	}
}

// Lagged is closed once an event had to be dropped because Events was full.
// The client's view of its room is stale from then on and the transport
// should close the connection so the peer rejoins and rehydrates.
func (c *Client) Lagged() <-chan struct{} {
	return c.lagged
}

func (c *Client) markLagged() {
	c.lagOnce.Do(func() {
		if c.lagged != nil {
			close(c.lagged)
		}
	})
}
