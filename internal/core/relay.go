package core

import "github.com/vovakirdan/geodrop-server/internal/utils"

// Relay fans application events out to every member of a room except the sender.
type Relay struct {
	reg   *Registry
	likes map[string]map[string]int // room id -> message id -> likes
	newID func() string
}

// NewRelay builds a relay reading membership from reg.
func NewRelay(reg *Registry) *Relay {
	return &Relay{
		reg:   reg,
		likes: make(map[string]map[string]int),
		newID: utils.NewMessageID,
	}
}

// Relay addresses ev to the members of roomID other than senderConnID.
// A room with no other members yields no notifications.
func (r *Relay) Relay(roomID, senderConnID string, ev *Event) []Notification {
	targets := r.reg.recipients(roomID, senderConnID)
	if len(targets) == 0 {
		return nil
	}
	return []Notification{{Targets: targets, Event: ev}}
}

// Message relays a chat message, assigning an id when the client sent none.
func (r *Relay) Message(senderConnID string, msg Message) []Notification {
	if msg.ID == "" {
		msg.ID = r.newID()
	}
	msg.Likes = r.likes[msg.Room][msg.ID]
	return r.Relay(msg.Room, senderConnID, &Event{
		Kind:    EventRoomMessage,
		Room:    msg.Room,
		User:    msg.From,
		Message: msg,
	})
}

// Typing relays a typing start or stop indicator.
func (r *Relay) Typing(roomID, senderConnID, userID string, started bool) []Notification {
	kind := EventTypingStopped
	if started {
		kind = EventTypingStarted
	}
	return r.Relay(roomID, senderConnID, &Event{Kind: kind, Room: roomID, User: userID})
}

// Like increments the like count of messageID in roomID and relays the new total.
func (r *Relay) Like(roomID, senderConnID, userID, messageID string) []Notification {
	counts, ok := r.likes[roomID]
	if !ok {
		counts = make(map[string]int)
		r.likes[roomID] = counts
	}
	counts[messageID]++

	return r.Relay(roomID, senderConnID, &Event{
		Kind: EventMessageLiked,
		Room: roomID,
		User: userID,
		Message: Message{
			ID:    messageID,
			Room:  roomID,
			Likes: counts[messageID],
		},
	})
}

// Likes returns the current like count of a message.
func (r *Relay) Likes(roomID, messageID string) int {
	return r.likes[roomID][messageID]
}

// Forget drops per-room relay state once the room has no members left.
func (r *Relay) Forget(roomID string) {
	delete(r.likes, roomID)
}
