package core

import "github.com/rs/zerolog"

// Broadcaster delivers events to one client or to every client bound to a
// room. Delivery never blocks: a client whose buffer is full misses the
// event and is marked lagged.
type Broadcaster struct {
	sessions *Directory
	log      *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over the given directory.
func NewBroadcaster(sessions *Directory, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{sessions: sessions, log: logger}
}

// Send delivers ev to c alone.
func (b *Broadcaster) Send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		c.markLagged()
		b.log.Warn().Str("client_id", c.ID).Int("kind", int(ev.Kind)).Msg("dropping event for slow client")
	}
}

// Room delivers ev to every client in roomID except exclude, which may be nil.
func (b *Broadcaster) Room(roomID string, ev *Event, exclude *Client) {
	for _, c := range b.sessions.Clients(roomID) {
		if c == exclude {
			continue
		}
		b.Send(c, ev)
	}
}
