package core

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/coderoom-server/internal/language"
)

// Room is the shared state of one editing session.
type Room struct {
	mu sync.Mutex

	ID        string
	code      string
	lang      string
	chat      []Message
	members   map[string]struct{}
	touchedAt time.Time
}

func newRoom(id string, now time.Time) *Room {
	return &Room{
		ID:        id,
		lang:      language.Default,
		members:   make(map[string]struct{}),
		touchedAt: now,
	}
}

// sortedMembers must be called with r.mu held.
func (r *Room) sortedMembers() []string {
	names := lo.Keys(r.members)
	sort.Strings(names)
	return names
}

// Snapshot is a copy of a room's state safe to hand to other goroutines.
type Snapshot struct {
	ID       string
	Code     string
	Language string
	Chat     []Message
	Members  []string
}

// Registry owns every room. Rooms are created on first access and only
// removed by EvictIdle.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	now   func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
}

func (g *Registry) room(id string) *Room {
	g.mu.RLock()
	r, ok := g.rooms[id]
	g.mu.RUnlock()
	if ok {
		return r
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok = g.rooms[id]; ok {
		return r
	}
	r = newRoom(id, g.now())
	g.rooms[id] = r
	return r
}

func (g *Registry) with(id string, fn func(r *Room)) {
	r := g.room(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchedAt = g.now()
	fn(r)
}

// GetOrCreate returns the room's state with the most recent chatLimit
// messages, creating the room with defaults when it does not exist.
func (g *Registry) GetOrCreate(id string, chatLimit int) Snapshot {
	var snap Snapshot
	g.with(id, func(r *Room) {
		snap = Snapshot{
			ID:       r.ID,
			Code:     r.code,
			Language: r.lang,
			Chat:     recent(r.chat, chatLimit),
			Members:  r.sortedMembers(),
		}
	})
	return snap
}

// SetCode replaces the room's buffer. The last write wins.
func (g *Registry) SetCode(id, code string) {
	g.with(id, func(r *Room) { r.code = code })
}

// SetLanguage stores an already normalized language name.
func (g *Registry) SetLanguage(id, lang string) {
	g.with(id, func(r *Room) { r.lang = lang })
}

// AppendChat adds a message to the end of the room's log.
func (g *Registry) AppendChat(id string, msg Message) {
	g.with(id, func(r *Room) { r.chat = append(r.chat, msg) })
}

// RecentChat returns the last n messages in append order.
func (g *Registry) RecentChat(id string, n int) []Message {
	var out []Message
	g.with(id, func(r *Room) { out = recent(r.chat, n) })
	return out
}

// ChatLen reports the size of the stored log.
func (g *Registry) ChatLen(id string) int {
	var n int
	g.with(id, func(r *Room) { n = len(r.chat) })
	return n
}

// AddMember inserts name into the member set. It reports false when the
// name is already taken.
func (g *Registry) AddMember(id, name string) bool {
	added := false
	g.with(id, func(r *Room) {
		if _, ok := r.members[name]; ok {
			return
		}
		r.members[name] = struct{}{}
		added = true
	})
	return added
}

// ClaimName allocates a unique name from base and inserts it in one step.
func (g *Registry) ClaimName(id, base string) string {
	var name string
	g.with(id, func(r *Room) {
		name = AllocateName(r.members, base)
		r.members[name] = struct{}{}
	})
	return name
}

// RemoveMember deletes name from the member set and reports whether it was present.
func (g *Registry) RemoveMember(id, name string) bool {
	removed := false
	g.with(id, func(r *Room) {
		if _, ok := r.members[name]; ok {
			delete(r.members, name)
			removed = true
		}
	})
	return removed
}

// Members returns the room's member names sorted.
func (g *Registry) Members(id string) []string {
	var names []string
	g.with(id, func(r *Room) { names = r.sortedMembers() })
	return names
}

// Len returns the number of rooms currently held.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// EvictIdle removes rooms that have no members and saw no activity for at
// least ttl. It returns the evicted room ids.
func (g *Registry) EvictIdle(ttl time.Duration) []string {
	cutoff := g.now().Add(-ttl)

	g.mu.Lock()
	defer g.mu.Unlock()

	var evicted []string
	for id, r := range g.rooms {
		r.mu.Lock()
		idle := len(r.members) == 0 && !r.touchedAt.After(cutoff)
		r.mu.Unlock()
		if idle {
			delete(g.rooms, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

func recent(chat []Message, n int) []Message {
	if n <= 0 || len(chat) == 0 {
		return []Message{}
	}
	if len(chat) > n {
		chat = chat[len(chat)-n:]
	}
	out := make([]Message, len(chat))
	copy(out, chat)
	return out
}
