package core

import "time"

// Message is a chat message passing through the relay. It is never stored.
type Message struct {
	ID        string
	Room      string
	From      string
	Text      string
	Likes     int
	CreatedAt time.Time
}

// Member is one connection's presence in a room.
type Member struct {
	UserID   string
	ConnID   string
	JoinedAt time.Time
}

// Departure records a room a connection was removed from during disconnect cleanup.
type Departure struct {
	RoomID string
	UserID string
}

// RoomForPost maps a post identifier to the chat room that belongs to it.
func RoomForPost(postID string) string {
	return postID
}

// PostForRoom is the inverse of RoomForPost.
func PostForRoom(roomID string) string {
	return roomID
}
