package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewID returns a random identifier for connections and posts.
func NewID() string {
	return uuid.NewString()
}

// NewMessageID returns a lexically sortable identifier for chat messages.
func NewMessageID() string {
	return ulid.Make().String()
}
