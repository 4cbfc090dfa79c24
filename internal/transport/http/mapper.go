package http

import (
	"encoding/json"

	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/proto"
)

// inboundToCommand maps a client envelope onto a core command. A known
// type with an undecodable payload yields neither a command nor an error.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var data proto.JoinData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandJoin, Room: data.RoomID, Name: data.Name}, nil
	case proto.InboundTypeRename:
		var data proto.RenameData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandRename, Name: data.Name}, nil
	case proto.InboundTypeChat:
		var data proto.ChatData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandChat, Room: data.RoomID, Text: data.Text}, nil
	case proto.InboundTypeCode:
		var data proto.CodeData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandUpdateCode, Room: data.RoomID, Code: data.Code}, nil
	case proto.InboundTypeLang:
		var data proto.LangData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandSetLanguage, Room: data.RoomID, Language: data.Language}, nil
	case proto.InboundTypeRun:
		var data proto.RunData
		if !decode(inbound.Data, &data) {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandRun, Language: data.Language, Code: data.Code, Stdin: data.Stdin}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventHello:
		return event(proto.EventHello, proto.EventHelloData{Msg: ev.Text, Protocol: proto.ProtocolVersion})
	case core.EventRoomState:
		st := ev.State
		if st == nil {
			break
		}
		return event(proto.EventRoomState, proto.EventRoomStateData{
			RoomID:   st.RoomID,
			Code:     st.Code,
			Chat:     chatMessages(st.Chat),
			Members:  nonNil(st.Members),
			Language: st.Language,
			You:      st.You,
		})
	case core.EventPresence:
		p := ev.Presence
		if p == nil {
			break
		}
		data := proto.EventPresenceData{
			RoomID:  p.RoomID,
			Members: nonNil(p.Members),
			Joined:  p.Joined,
			Left:    p.Left,
		}
		if p.Renamed != nil {
			data.Renamed = &proto.Rename{From: p.Renamed.From, To: p.Renamed.To}
		}
		return event(proto.EventPresence, data)
	case core.EventRenamed:
		return event(proto.EventRenamed, proto.EventRenamedData{Name: ev.Name})
	case core.EventChat:
		return event(proto.EventChat, chatMessage(ev.Message))
	case core.EventCodeApply:
		return event(proto.EventCodeApply, proto.EventCodeData{Code: ev.Code, RoomID: ev.Room})
	case core.EventLangApply:
		return event(proto.EventLangApply, proto.EventLangData{RoomID: ev.Room, Language: ev.Language})
	case core.EventRunResult:
		if ev.Run == nil {
			break
		}
		return event(proto.EventRunResult, proto.EventRunData{Out: ev.Run.Out, Err: ev.Run.Err, Code: ev.Run.Code})
	case core.EventError:
		if ev.Error != nil {
			return proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message},
			}
		}
	}
	return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
}

func chatMessage(m core.Message) proto.ChatMessage {
	return proto.ChatMessage{
		Name: m.From,
		Text: m.Text,
		TS:   float64(m.CreatedAt.UnixNano()) / 1e9,
	}
}

func chatMessages(msgs []core.Message) []proto.ChatMessage {
	out := make([]proto.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage(m))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
