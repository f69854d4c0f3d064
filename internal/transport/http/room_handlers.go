package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/core"
)

// postLookupTimeout bounds the post header lookup so a slow store never stalls presence reads.
const postLookupTimeout = 2 * time.Second

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	hub   ChatHub
	posts PostService
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub ChatHub, postSvc PostService, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:   hub,
		posts: postSvc,
		log:   logger,
	}
}

// RoomSummary is a candidate room in the room list.
type RoomSummary struct {
	RoomID      string `json:"roomId"`
	PostID      string `json:"postId"`
	Text        string `json:"text"`
	MemberCount int    `json:"memberCount"`
}

// MemberResponse is one live member of a room.
type MemberResponse struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	JoinedAt     int64  `json:"joinedAt"`
}

// RoomDetailResponse is a room with its live members and header post.
type RoomDetailResponse struct {
	RoomID   string           `json:"roomId"`
	Members  []MemberResponse `json:"members"`
	Post     *PostResponse    `json:"post"`
	Degraded bool             `json:"degraded"`
}

// ListRooms maps every post to its room and live member count.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.posts.List(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list posts for rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	activity, err := h.hub.RoomActivity(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read room activity")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "chat unavailable"})
		return
	}

	resp := make([]RoomSummary, 0, len(list))
	for _, p := range list {
		roomID := core.RoomForPost(p.ID)
		resp = append(resp, RoomSummary{
			RoomID:      roomID,
			PostID:      p.ID,
			Text:        p.Text,
			MemberCount: activity[roomID],
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom returns the live members of a room and its post.
// A failed post lookup degrades the response instead of failing it.
// GET /api/rooms/:roomId
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID := c.Param("roomId")

	members, err := h.hub.Members(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to read room members")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "chat unavailable"})
		return
	}

	resp := RoomDetailResponse{
		RoomID:  roomID,
		Members: make([]MemberResponse, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			UserID:       m.UserID,
			ConnectionID: m.ConnID,
			JoinedAt:     m.JoinedAt.UnixMilli(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), postLookupTimeout)
	defer cancel()
	post, err := h.posts.Get(ctx, core.PostForRoom(roomID))
	if err != nil {
		h.log.Warn().Err(err).Str("room_id", roomID).Msg("post lookup failed, serving room without header")
		resp.Degraded = true
	} else {
		pr := toPostResponse(post)
		resp.Post = &pr
	}

	c.JSON(http.StatusOK, resp)
}
