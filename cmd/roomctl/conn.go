package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/coderoom-server/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, flagAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func join(ctx context.Context, conn *websocket.Conn) error {
	return send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{RoomID: flagRoom, Name: flagName})
}

// waitFor reads until an event with the given name arrives, printing
// everything it skips.
func waitFor(ctx context.Context, conn *websocket.Conn, event string) (outbound, error) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return out, fmt.Errorf("read: %w", err)
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == event {
			return out, nil
		}
		describe(out)
	}
}

func describe(out outbound) {
	if out.Type == proto.OutboundTypeError && out.Error != nil {
		fmt.Printf("! %s: %s\n", out.Error.Code, out.Error.Msg)
		return
	}

	switch out.Event {
	case proto.EventChat:
		var msg proto.ChatMessage
		if json.Unmarshal(out.Data, &msg) == nil {
			fmt.Printf("%s: %s\n", msg.Name, msg.Text)
			return
		}
	case proto.EventPresence:
		var p proto.EventPresenceData
		if json.Unmarshal(out.Data, &p) == nil {
			switch {
			case p.Joined != "":
				fmt.Printf("[%s] %s joined %v\n", p.RoomID, p.Joined, p.Members)
			case p.Left != "":
				fmt.Printf("[%s] %s left %v\n", p.RoomID, p.Left, p.Members)
			case p.Renamed != nil:
				fmt.Printf("[%s] %s is now %s\n", p.RoomID, p.Renamed.From, p.Renamed.To)
			}
			return
		}
	case proto.EventLangApply:
		var l proto.EventLangData
		if json.Unmarshal(out.Data, &l) == nil {
			fmt.Printf("[%s] language: %s\n", l.RoomID, l.Language)
			return
		}
	case proto.EventRunResult:
		var r proto.EventRunData
		if json.Unmarshal(out.Data, &r) == nil {
			fmt.Print(r.Out)
			if r.Err != "" {
				fmt.Printf("stderr: %s\n", r.Err)
			}
			return
		}
	}
	fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
}
