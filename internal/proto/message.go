package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "join-room"
	InboundTypeLeaveRoom   = "leave-room"
	InboundTypeSendMessage = "send-message"
	InboundTypeTypingStart = "typing-start"
	InboundTypeTypingStop  = "typing-stop"
	InboundTypeLikeMessage = "like-message"

	OutboundTypeEvent = "event"

	EventRoomMembers       = "room-members"
	EventUserJoined        = "user-joined"
	EventUserLeft          = "user-left"
	EventReceiveMessage    = "receive-message"
	EventUserTyping        = "user-typing"
	EventUserStoppedTyping = "user-stopped-typing"
	EventMessageLiked      = "message-liked"
)

// RoomData names a room and the identity the client claims in it.
// Used by join-room, leave-room, typing-start and typing-stop.
type RoomData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// MessageData is a chat message from the client. Timestamp is unix milliseconds.
type MessageData struct {
	RoomID    string `json:"roomId"`
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// LikeData likes a message in a room.
type LikeData struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Member is one entry of a room member list.
type Member struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	JoinedAt     int64  `json:"joinedAt"`
}

// EventRoomMembersData carries the full member list of a room.
type EventRoomMembersData struct {
	RoomID  string   `json:"roomId"`
	Members []Member `json:"members"`
}

// EventUserData is sent for user-joined, user-left and the typing events.
// user-left carries an object with the room id rather than a bare user id
// so clients in several rooms can tell which one the user left.
type EventUserData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// EventMessageData is a relayed chat message.
type EventMessageData struct {
	RoomID    string `json:"roomId"`
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Likes     int    `json:"likes"`
}

// EventLikeData reports the like count of a message.
type EventLikeData struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Likes     int    `json:"likes"`
}
