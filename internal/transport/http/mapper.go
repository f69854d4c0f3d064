package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/geodrop-server/internal/core"
	"github.com/vovakirdan/geodrop-server/internal/proto"
)

var errUnknownType = errors.New("unknown message type")

// inboundToCommand maps a decoded frame onto a core command.
// Field validation is left to core.Command.Validate.
func inboundToCommand(in proto.Inbound, now time.Time) (*core.Command, error) {
	switch in.Type {
	case proto.InboundTypeJoinRoom, proto.InboundTypeLeaveRoom,
		proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var data proto.RoomData
		if err := decodeData(in.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind: roomCommandKinds[in.Type],
			Room: data.RoomID,
			User: data.UserID,
		}, nil
	case proto.InboundTypeSendMessage:
		var data proto.MessageData
		if err := decodeData(in.Data, &data); err != nil {
			return nil, err
		}
		created := now
		if data.Timestamp > 0 {
			created = time.UnixMilli(data.Timestamp)
		}
		return &core.Command{
			Kind: core.CommandSendRoomMessage,
			Room: data.RoomID,
			User: data.UserID,
			Message: core.Message{
				ID:        data.ID,
				Room:      data.RoomID,
				From:      data.UserID,
				Text:      data.Text,
				CreatedAt: created,
			},
		}, nil
	case proto.InboundTypeLikeMessage:
		var data proto.LikeData
		if err := decodeData(in.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:      core.CommandLikeMessage,
			Room:      data.RoomID,
			User:      data.UserID,
			MessageID: data.MessageID,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, in.Type)
	}
}

var roomCommandKinds = map[string]core.CommandKind{
	proto.InboundTypeJoinRoom:    core.CommandJoinRoom,
	proto.InboundTypeLeaveRoom:   core.CommandLeaveRoom,
	proto.InboundTypeTypingStart: core.CommandTypingStart,
	proto.InboundTypeTypingStop:  core.CommandTypingStop,
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(raw, v)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent}

	switch event.Kind {
	case core.EventRoomMembers:
		members := make([]proto.Member, 0, len(event.Members))
		for _, m := range event.Members {
			members = append(members, proto.Member{
				UserID:       m.UserID,
				ConnectionID: m.ConnID,
				JoinedAt:     m.JoinedAt.UnixMilli(),
			})
		}
		out.Event = proto.EventRoomMembers
		out.Data = proto.EventRoomMembersData{RoomID: event.Room, Members: members}
	case core.EventUserJoined:
		out.Event = proto.EventUserJoined
		out.Data = proto.EventUserData{RoomID: event.Room, UserID: event.User}
	case core.EventUserLeft:
		out.Event = proto.EventUserLeft
		out.Data = proto.EventUserData{RoomID: event.Room, UserID: event.User}
	case core.EventRoomMessage:
		out.Event = proto.EventReceiveMessage
		out.Data = proto.EventMessageData{
			RoomID:    event.Room,
			ID:        event.Message.ID,
			UserID:    event.Message.From,
			Text:      event.Message.Text,
			Timestamp: event.Message.CreatedAt.UnixMilli(),
			Likes:     event.Message.Likes,
		}
	case core.EventTypingStarted:
		out.Event = proto.EventUserTyping
		out.Data = proto.EventUserData{RoomID: event.Room, UserID: event.User}
	case core.EventTypingStopped:
		out.Event = proto.EventUserStoppedTyping
		out.Data = proto.EventUserData{RoomID: event.Room, UserID: event.User}
	case core.EventMessageLiked:
		out.Event = proto.EventMessageLiked
		out.Data = proto.EventLikeData{
			RoomID:    event.Room,
			MessageID: event.Message.ID,
			Likes:     event.Message.Likes,
		}
	}
	return out
}
