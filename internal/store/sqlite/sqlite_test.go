package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/geodrop-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	post := &store.Post{
		ID:        "p1",
		Text:      "coffee here",
		ImageURL:  "/uploads/p1.jpg",
		Tags:      []string{"food", "chill"},
		Location:  &store.Location{Latitude: 52.52, Longitude: 13.405},
		CreatedAt: created,
	}
	if err := s.CreatePost(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := s.GetPost(ctx, "p1")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Text != "coffee here" || got.ImageURL != "/uploads/p1.jpg" {
		t.Errorf("unexpected post: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "food" || got.Tags[1] != "chill" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}
	if got.Location == nil || got.Location.Latitude != 52.52 || got.Location.Longitude != 13.405 {
		t.Errorf("unexpected location: %+v", got.Location)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, got.CreatedAt)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetPost(context.Background(), "missing"); !errors.Is(err, store.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostWithoutLocationOrTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreatePost(ctx, &store.Post{ID: "bare", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create post: %v", err)
	}
	got, err := s.GetPost(ctx, "bare")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Location != nil {
		t.Errorf("expected nil location, got %+v", got.Location)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", got.Tags)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		post := &store.Post{ID: id, Text: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.CreatePost(ctx, post); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}

	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	want := []string{"new", "mid", "old"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestIncrementLoves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreatePost(ctx, &store.Post{ID: "p1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	for i := 1; i <= 3; i++ {
		post, err := s.IncrementLoves(ctx, "p1")
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if post.Loves != int64(i) {
			t.Fatalf("expected %d loves, got %d", i, post.Loves)
		}
	}

	if _, err := s.IncrementLoves(ctx, "missing"); !errors.Is(err, store.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
