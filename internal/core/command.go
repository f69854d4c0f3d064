package core

import (
	"fmt"
	"strings"
)

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom adds the connection to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom removes the connection from a room.
	CommandLeaveRoom
	// CommandSendRoomMessage delivers a chat message to the other room members.
	CommandSendRoomMessage
	// CommandTypingStart announces that the user started typing.
	CommandTypingStart
	// CommandTypingStop announces that the user stopped typing.
	CommandTypingStop
	// CommandLikeMessage likes a message previously relayed in the room.
	CommandLikeMessage
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinRoom:
		return "join_room"
	case CommandLeaveRoom:
		return "leave_room"
	case CommandSendRoomMessage:
		return "send_message"
	case CommandTypingStart:
		return "typing_start"
	case CommandTypingStop:
		return "typing_stop"
	case CommandLikeMessage:
		return "like_message"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind      CommandKind
	Room      string
	User      string
	MessageID string  // CommandLikeMessage
	Message   Message // CommandSendRoomMessage
}

// Validate reports whether the command carries the fields its kind requires.
func (c *Command) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty command", ErrBadRequest)
	}
	if c.Room == "" {
		return fmt.Errorf("%w: room is required", ErrBadRequest)
	}

	switch c.Kind {
	case CommandJoinRoom, CommandLeaveRoom, CommandTypingStart, CommandTypingStop:
		if c.User == "" {
			return fmt.Errorf("%w: user is required", ErrBadRequest)
		}
	case CommandSendRoomMessage:
		if c.User == "" {
			return fmt.Errorf("%w: user is required", ErrBadRequest)
		}
		if strings.TrimSpace(c.Message.Text) == "" {
			return fmt.Errorf("%w: text is required", ErrBadRequest)
		}
	case CommandLikeMessage:
		if c.MessageID == "" {
			return fmt.Errorf("%w: message id is required", ErrBadRequest)
		}
	default:
		return fmt.Errorf("%w: unknown command %d", ErrBadRequest, c.Kind)
	}
	return nil
}
