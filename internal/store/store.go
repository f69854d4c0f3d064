package store

import (
	"context"
	"errors"
	"time"
)

// ErrPostNotFound is returned when a post id does not exist.
var ErrPostNotFound = errors.New("post not found")

// Location is where a post was dropped.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Post is a geo-tagged post. Its id doubles as the id of its chat room.
type Post struct {
	ID        string
	Text      string
	ImageURL  string
	Tags      []string
	Loves     int64
	Location  *Location
	CreatedAt time.Time
}

// PostStore handles post persistence.
type PostStore interface {
	// CreatePost persists a new post. ID and CreatedAt must be set by the caller.
	CreatePost(ctx context.Context, post *Post) error

	// GetPost retrieves a post by ID.
	GetPost(ctx context.Context, id string) (*Post, error)

	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*Post, error)

	// IncrementLoves adds one love to a post and returns the updated post.
	IncrementLoves(ctx context.Context, id string) (*Post, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	PostStore

	// Close closes the underlying connection.
	Close() error
}
