package core

import "sync"

// Session binds a connection to a room and a display name.
type Session struct {
	RoomID string
	Name   string
}

// Directory maps live connections to their current session. A client has
// at most one session; binding again replaces the previous one.
type Directory struct {
	mu       sync.RWMutex
	byClient map[*Client]Session
	byRoom   map[string]map[*Client]struct{}
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byClient: make(map[*Client]Session),
		byRoom:   make(map[string]map[*Client]struct{}),
	}
}

// Bind attaches c to roomID under name and returns the session it replaced, if any.
func (d *Directory) Bind(c *Client, roomID, name string) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, had := d.byClient[c]
	if had {
		d.detach(c, prev.RoomID)
	}

	d.byClient[c] = Session{RoomID: roomID, Name: name}
	clients, ok := d.byRoom[roomID]
	if !ok {
		clients = make(map[*Client]struct{})
		d.byRoom[roomID] = clients
	}
	clients[c] = struct{}{}
	return prev, had
}

// Lookup returns the client's current session.
func (d *Directory) Lookup(c *Client) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byClient[c]
	return s, ok
}

// Rename changes only the name of an existing session.
func (d *Directory) Rename(c *Client, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.byClient[c]
	if !ok {
		return false
	}
	s.Name = name
	d.byClient[c] = s
	return true
}

// Unbind removes the client's session. Unknown clients report false.
func (d *Directory) Unbind(c *Client) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.byClient[c]
	if !ok {
		return Session{}, false
	}
	delete(d.byClient, c)
	d.detach(c, s.RoomID)
	return s, true
}

// Clients returns the clients currently bound to roomID.
func (d *Directory) Clients(roomID string) []*Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	clients := d.byRoom[roomID]
	out := make([]*Client, 0, len(clients))
	for c := range clients {
		out = append(out, c)
	}
	return out
}

// Len returns the number of bound clients.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byClient)
}

func (d *Directory) detach(c *Client, roomID string) {
	clients, ok := d.byRoom[roomID]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(d.byRoom, roomID)
	}
}
