package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomMembers carries the full member list of a room after a membership change.
	EventRoomMembers EventKind = iota
	// EventUserJoined notifies existing members that a user joined.
	EventUserJoined
	// EventUserLeft notifies remaining members that a user left or disconnected.
	EventUserLeft
	// EventRoomMessage relays a chat message.
	EventRoomMessage
	// EventTypingStarted relays a typing indicator.
	EventTypingStarted
	// EventTypingStopped relays the end of a typing indicator.
	EventTypingStopped
	// EventMessageLiked relays an updated like count.
	EventMessageLiked
)

func (k EventKind) String() string {
	switch k {
	case EventRoomMembers:
		return "room_members"
	case EventUserJoined:
		return "user_joined"
	case EventUserLeft:
		return "user_left"
	case EventRoomMessage:
		return "room_message"
	case EventTypingStarted:
		return "typing_started"
	case EventTypingStopped:
		return "typing_stopped"
	case EventMessageLiked:
		return "message_liked"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in a room.
type Event struct {
	Kind    EventKind
	Room    string
	User    string
	Members []Member // EventRoomMembers
	Message Message  // EventRoomMessage, EventMessageLiked (ID and Likes only)
}

// Notification addresses one event to a set of connections.
type Notification struct {
	Targets []string
	Event   *Event
}
