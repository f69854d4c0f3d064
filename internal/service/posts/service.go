package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/media"
	"github.com/vovakirdan/geodrop-server/internal/metrics"
	"github.com/vovakirdan/geodrop-server/internal/store"
	"github.com/vovakirdan/geodrop-server/internal/utils"
)

const (
	maxTextLength = 1000
	maxTags       = 10
	maxTagLength  = 32
)

// ErrInvalidInput is returned when create input cannot be parsed or fails validation.
var ErrInvalidInput = errors.New("invalid post input")

// CreateInput is the raw form a client submits to drop a post.
// Tags and Location arrive as JSON strings inside a multipart form.
type CreateInput struct {
	Text     string
	Tags     string
	Location string
	Image    io.Reader // nil when no image was attached
}

// Service handles post business logic on top of the post store and image storage.
type Service struct {
	posts  store.PostStore
	images media.ImageStore
	log    *zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a post service. images may be nil, in which case image uploads are rejected.
func NewService(posts store.PostStore, images media.ImageStore, logger *zerolog.Logger) *Service {
	return &Service{
		posts:  posts,
		images: images,
		log:    logger,
		now:    time.Now,
		newID:  utils.NewID,
	}
}

// Create validates the input, stores the image if any and persists the post.
func (s *Service) Create(ctx context.Context, in CreateInput) (*store.Post, error) {
	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, fmt.Errorf("%w: text longer than %d characters", ErrInvalidInput, maxTextLength)
	}
	if text == "" && in.Image == nil {
		return nil, fmt.Errorf("%w: text or image is required", ErrInvalidInput)
	}

	tags, err := parseTags(in.Tags)
	if err != nil {
		return nil, err
	}
	location, err := parseLocation(in.Location)
	if err != nil {
		return nil, err
	}

	post := &store.Post{
		ID:        s.newID(),
		Text:      text,
		Tags:      tags,
		Location:  location,
		CreatedAt: s.now().UTC(),
	}

	if in.Image != nil {
		if s.images == nil {
			return nil, fmt.Errorf("%w: image uploads are disabled", ErrInvalidInput)
		}
		url, err := s.images.Save(ctx, post.ID, in.Image)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		post.ImageURL = url
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if post.ImageURL != "" {
			if rmErr := s.images.Remove(ctx, post.ImageURL); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("image_url", post.ImageURL).Msg("failed to remove orphaned image")
			}
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.PostsCreated.Inc()
	s.log.Info().Str("post_id", post.ID).Int("tags", len(tags)).Bool("image", post.ImageURL != "").Msg("post created")
	return post, nil
}

// Get returns one post.
func (s *Service) Get(ctx context.Context, id string) (*store.Post, error) {
	return s.posts.GetPost(ctx, id)
}

// List returns all posts, newest first.
func (s *Service) List(ctx context.Context) ([]*store.Post, error) {
	return s.posts.ListPosts(ctx)
}

// Love adds one love to a post.
func (s *Service) Love(ctx context.Context, id string) (*store.Post, error) {
	return s.posts.IncrementLoves(ctx, id)
}

func parseTags(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("%w: tags must be a JSON array of strings", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, fmt.Errorf("%w: tag %q is too long", ErrInvalidInput, tag)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > maxTags {
		return nil, fmt.Errorf("%w: at most %d tags", ErrInvalidInput, maxTags)
	}
	return out, nil
}

func parseLocation(raw string) (*store.Location, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var loc store.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, fmt.Errorf("%w: location must be a JSON object", ErrInvalidInput)
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}
	return &loc, nil
}
