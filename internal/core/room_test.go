package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	g := NewRegistry()

	snap := g.GetOrCreate("r1", DefaultHistoryLimit)
	require.Equal(t, "r1", snap.ID)
	require.Equal(t, "", snap.Code)
	require.Equal(t, "python", snap.Language)
	require.Empty(t, snap.Chat)
	require.Empty(t, snap.Members)
	require.Equal(t, 1, g.Len())
}

func TestRegistryRecentChat(t *testing.T) {
	g := NewRegistry()
	for i := range 60 {
		g.AppendChat("r1", Message{From: "a", Text: fmt.Sprintf("%d", i)})
	}

	last := g.RecentChat("r1", 50)
	require.Len(t, last, 50)
	require.Equal(t, "10", last[0].Text)
	require.Equal(t, "59", last[49].Text)
	require.Equal(t, 60, g.ChatLen("r1"))

	require.Len(t, g.RecentChat("r1", 100), 60)
	require.Empty(t, g.RecentChat("empty", 50))
}

func TestRegistryMembers(t *testing.T) {
	g := NewRegistry()

	require.True(t, g.AddMember("r1", "bob"))
	require.False(t, g.AddMember("r1", "bob"))
	require.Equal(t, "alice", g.ClaimName("r1", "alice"))
	require.Equal(t, "bob (2)", g.ClaimName("r1", "bob"))
	require.Equal(t, []string{"alice", "bob", "bob (2)"}, g.Members("r1"))

	require.True(t, g.RemoveMember("r1", "bob"))
	require.False(t, g.RemoveMember("r1", "bob"))
	require.Equal(t, "bob", g.ClaimName("r1", "bob"))
}

func TestRegistryRoomsAreIsolated(t *testing.T) {
	g := NewRegistry()

	g.SetCode("a", "x = 1")
	g.SetLanguage("b", "cpp")
	g.AddMember("a", "alice")

	a := g.GetOrCreate("a", 10)
	b := g.GetOrCreate("b", 10)
	require.Equal(t, "x = 1", a.Code)
	require.Equal(t, "python", a.Language)
	require.Equal(t, "", b.Code)
	require.Equal(t, "cpp", b.Language)
	require.Empty(t, b.Members)
}

func TestRegistryEvictIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewRegistry()
	g.now = func() time.Time { return now }

	g.SetCode("empty", "print(1)")
	g.AddMember("occupied", "alice")

	now = now.Add(10 * time.Minute)
	g.SetCode("recent", "")

	require.Equal(t, []string{"empty"}, g.EvictIdle(5*time.Minute))
	require.Equal(t, 2, g.Len())

	// An evicted room comes back with defaults.
	require.Equal(t, "", g.GetOrCreate("empty", 0).Code)
}
