package core

import "time"

// state is everything the command handlers read and mutate. Only the hub goroutine touches it.
type state struct {
	reg      *Registry
	presence *Presence
	relay    *Relay
	now      func() time.Time
}

func newState() *state {
	reg := NewRegistry()
	return &state{
		reg:      reg,
		presence: NewPresence(reg),
		relay:    NewRelay(reg),
		now:      time.Now,
	}
}

// handlerFunc applies one command from connID and returns the notifications it causes.
type handlerFunc func(s *state, connID string, cmd *Command) []Notification

var dispatch = map[CommandKind]handlerFunc{
	CommandJoinRoom:        handleJoin,
	CommandLeaveRoom:       handleLeave,
	CommandSendRoomMessage: handleMessage,
	CommandTypingStart:     handleTyping,
	CommandTypingStop:      handleTyping,
	CommandLikeMessage:     handleLike,
}

func handleJoin(s *state, connID string, cmd *Command) []Notification {
	return s.presence.Join(connID, cmd.Room, cmd.User, s.now())
}

func handleLeave(s *state, connID string, cmd *Command) []Notification {
	notes := s.presence.Leave(connID, cmd.Room, cmd.User)
	s.forgetIfEmpty(cmd.Room)
	return notes
}

func handleMessage(s *state, connID string, cmd *Command) []Notification {
	msg := cmd.Message
	msg.Room = cmd.Room
	msg.From = cmd.User
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	return s.relay.Message(connID, msg)
}

func handleTyping(s *state, connID string, cmd *Command) []Notification {
	return s.relay.Typing(cmd.Room, connID, cmd.User, cmd.Kind == CommandTypingStart)
}

func handleLike(s *state, connID string, cmd *Command) []Notification {
	// Only members may like; counts for rooms nobody is in would never be forgotten.
	if !s.reg.Has(cmd.Room, connID) {
		return nil
	}
	return s.relay.Like(cmd.Room, connID, cmd.User, cmd.MessageID)
}

// disconnect runs the cleanup for a closed connection.
func (s *state) disconnect(connID string) []Notification {
	rooms := s.reg.RoomsOf(connID)
	notes := s.presence.Disconnect(connID)
	for _, roomID := range rooms {
		s.forgetIfEmpty(roomID)
	}
	return notes
}

func (s *state) forgetIfEmpty(roomID string) {
	if s.reg.Count(roomID) == 0 {
		s.relay.Forget(roomID)
	}
}
