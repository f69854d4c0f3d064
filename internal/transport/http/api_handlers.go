package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/core"
	"github.com/vovakirdan/geodrop-server/internal/media"
	"github.com/vovakirdan/geodrop-server/internal/service/posts"
	"github.com/vovakirdan/geodrop-server/internal/store"
)

// formOverhead leaves room for the text fields next to the image in a multipart body.
const formOverhead = 1 << 20

// PostHandlers provides HTTP handlers for post endpoints.
type PostHandlers struct {
	posts          PostService
	maxUploadBytes int64
	log            *zerolog.Logger
}

// NewPostHandlers creates a new post handlers instance.
func NewPostHandlers(postSvc PostService, maxUploadBytes int64, logger *zerolog.Logger) *PostHandlers {
	return &PostHandlers{
		posts:          postSvc,
		maxUploadBytes: maxUploadBytes,
		log:            logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"roomId"`
	Text      string          `json:"text"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Tags      []string        `json:"tags"`
	Loves     int64           `json:"loves"`
	Location  *store.Location `json:"location"`
	CreatedAt string          `json:"createdAt"`
}

func toPostResponse(p *store.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:        p.ID,
		RoomID:    core.RoomForPost(p.ID),
		Text:      p.Text,
		ImageURL:  p.ImageURL,
		Tags:      tags,
		Loves:     p.Loves,
		Location:  p.Location,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListPosts returns every post, newest first.
// GET /api/posts
func (h *PostHandlers) ListPosts(c *gin.Context) {
	list, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list posts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]PostResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toPostResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePost drops a new post from a multipart form.
// POST /api/posts
func (h *PostHandlers) CreatePost(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverhead)
	}
	if err := c.Request.ParseMultipartForm(formOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload too large"})
			return
		}
		h.log.Debug().Err(err).Msg("invalid post form")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form"})
		return
	}

	in := posts.CreateInput{
		Text:     c.PostForm("text"),
		Tags:     c.PostForm("tags"),
		Location: c.PostForm("location"),
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		f, openErr := file.Open()
		if openErr != nil {
			h.log.Error().Err(openErr).Msg("failed to open uploaded image")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		defer f.Close()
		in.Image = f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.log.Debug().Err(err).Msg("invalid image field")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err, "failed to create post")
		return
	}

	h.log.Info().Str("post_id", post.ID).Msg("post created")
	c.JSON(http.StatusCreated, toPostResponse(post))
}

// GetPost returns a single post.
// GET /api/posts/:id
func (h *PostHandlers) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to get post")
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

// LovePost adds one love to a post.
// PUT /api/posts/:id/love
func (h *PostHandlers) LovePost(c *gin.Context) {
	post, err := h.posts.Love(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to love post")
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *PostHandlers) writeError(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
	case errors.Is(err, posts.ErrInvalidInput), errors.Is(err, media.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, media.ErrTooLarge), errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload too large"})
	default:
		h.log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
