package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name    string
		inbound proto.Inbound
		kind    core.CommandKind
		noop    bool
		errCode string
	}{
		{name: "join", inbound: proto.Inbound{Type: "join", Data: json.RawMessage(`{"roomId":"r1","name":"a"}`)}, kind: core.CommandJoin},
		{name: "rename", inbound: proto.Inbound{Type: "name:update", Data: json.RawMessage(`{"name":"b"}`)}, kind: core.CommandRename},
		{name: "chat", inbound: proto.Inbound{Type: "chat:send", Data: json.RawMessage(`{"text":"hi"}`)}, kind: core.CommandChat},
		{name: "code", inbound: proto.Inbound{Type: "code:update", Data: json.RawMessage(`{"code":""}`)}, kind: core.CommandUpdateCode},
		{name: "lang", inbound: proto.Inbound{Type: "lang:update", Data: json.RawMessage(`{"language":"go"}`)}, kind: core.CommandSetLanguage},
		{name: "run", inbound: proto.Inbound{Type: "run", Data: json.RawMessage(`{"language":"py","code":"1"}`)}, kind: core.CommandRun},
		{name: "bad payload", inbound: proto.Inbound{Type: "chat:send", Data: json.RawMessage(`"text"`)}, noop: true},
		{name: "missing payload", inbound: proto.Inbound{Type: "join"}, noop: true},
		{name: "unknown", inbound: proto.Inbound{Type: "leave"}, errCode: core.ErrCodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, perr := inboundToCommand(tt.inbound)
			switch {
			case tt.errCode != "":
				if perr == nil || perr.Code != tt.errCode || cmd != nil {
					t.Fatalf("expected %s error, got %+v %+v", tt.errCode, cmd, perr)
				}
			case tt.noop:
				if cmd != nil || perr != nil {
					t.Fatalf("expected no-op, got %+v %+v", cmd, perr)
				}
			default:
				if perr != nil || cmd == nil || cmd.Kind != tt.kind {
					t.Fatalf("unexpected mapping: %+v %+v", cmd, perr)
				}
			}
		})
	}
}

func TestOutboundChatTimestamp(t *testing.T) {
	at := time.Unix(1700000000, 500_000_000)
	out := outboundFromEvent(&core.Event{
		Kind:    core.EventChat,
		Message: core.Message{From: "alice", Text: "hi", CreatedAt: at},
	})

	msg, ok := out.Data.(proto.ChatMessage)
	if !ok || out.Event != proto.EventChat {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	if msg.TS != 1700000000.5 || msg.Name != "alice" {
		t.Fatalf("unexpected chat message: %+v", msg)
	}
}

func TestOutboundPresenceMembersNeverNull(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:     core.EventPresence,
		Presence: &core.Presence{RoomID: "r1", Left: "bob"},
	})

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"event","event":"room:presence","data":{"roomId":"r1","members":[],"left":"bob"}}`
	if string(raw) != want {
		t.Fatalf("got %s", raw)
	}
}
