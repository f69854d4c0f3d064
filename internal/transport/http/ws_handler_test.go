package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/geodrop-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.server.Client().Get(env.server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health response: %d %q", resp.StatusCode, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.server.Client().Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "geodrop_") {
		t.Fatalf("expected geodrop metrics in exposition")
	}
}

func TestWebSocketRoomScenario(t *testing.T) {
	env := startTestServer(t)
	alice := env.dial(t)
	bob := env.dial(t)

	send(t, alice, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "post-42", UserID: "alice"})
	var members proto.EventRoomMembersData
	readEvent(t, alice, proto.EventRoomMembers, &members)
	if members.RoomID != "post-42" || len(members.Members) != 1 || members.Members[0].UserID != "alice" {
		t.Fatalf("unexpected members for alice: %+v", members)
	}

	send(t, bob, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "post-42", UserID: "bob"})
	readEvent(t, bob, proto.EventRoomMembers, &members)
	if len(members.Members) != 2 {
		t.Fatalf("bob expected 2 members, got %+v", members)
	}
	readEvent(t, alice, proto.EventRoomMembers, &members)
	if len(members.Members) != 2 {
		t.Fatalf("alice expected 2 members, got %+v", members)
	}
	var joined proto.EventUserData
	readEvent(t, alice, proto.EventUserJoined, &joined)
	if joined.UserID != "bob" || joined.RoomID != "post-42" {
		t.Fatalf("unexpected user-joined: %+v", joined)
	}

	send(t, bob, proto.InboundTypeSendMessage, proto.MessageData{
		RoomID:    "post-42",
		ID:        "m1",
		UserID:    "bob",
		Text:      "hi",
		Timestamp: 1700000000000,
	})
	var msg proto.EventMessageData
	readEvent(t, alice, proto.EventReceiveMessage, &msg)
	if msg.ID != "m1" || msg.UserID != "bob" || msg.Text != "hi" || msg.Timestamp != 1700000000000 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	// The sender never gets its own message back: the next frame bob sees is alice typing.
	send(t, alice, proto.InboundTypeTypingStart, proto.RoomData{RoomID: "post-42", UserID: "alice"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var next rawEvent
	if err := wsjson.Read(ctx, bob, &next); err != nil {
		t.Fatalf("read bob: %v", err)
	}
	if next.Event != proto.EventUserTyping {
		t.Fatalf("expected %s, got %s", proto.EventUserTyping, next.Event)
	}

	if err := bob.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("close bob: %v", err)
	}
	readEvent(t, alice, proto.EventRoomMembers, &members)
	if len(members.Members) != 1 || members.Members[0].UserID != "alice" {
		t.Fatalf("expected only alice left, got %+v", members)
	}
	var left proto.EventUserData
	readEvent(t, alice, proto.EventUserLeft, &left)
	if left.UserID != "bob" {
		t.Fatalf("unexpected user-left: %+v", left)
	}
}

func TestWebSocketLikeMessage(t *testing.T) {
	env := startTestServer(t)
	alice := env.dial(t)
	bob := env.dial(t)

	send(t, alice, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "p1", UserID: "alice"})
	send(t, bob, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "p1", UserID: "bob"})
	waitMembers(t, env.hub, "p1", 2)

	send(t, bob, proto.InboundTypeLikeMessage, proto.LikeData{RoomID: "p1", MessageID: "m1", UserID: "bob"})
	send(t, bob, proto.InboundTypeLikeMessage, proto.LikeData{RoomID: "p1", MessageID: "m1", UserID: "bob"})

	var liked proto.EventLikeData
	readEvent(t, alice, proto.EventMessageLiked, &liked)
	if liked.Likes != 1 {
		t.Fatalf("expected 1 like, got %+v", liked)
	}
	readEvent(t, alice, proto.EventMessageLiked, &liked)
	if liked.MessageID != "m1" || liked.Likes != 2 {
		t.Fatalf("expected 2 likes, got %+v", liked)
	}
}

func TestWebSocketMalformedFramesKeepConnection(t *testing.T) {
	env := startTestServer(t)
	conn := env.dial(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	send(t, conn, "dance", map[string]string{"roomId": "p1"})
	send(t, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "p1"})
	send(t, conn, proto.InboundTypeSendMessage, proto.MessageData{RoomID: "p1", UserID: "u", Text: "   "})

	send(t, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "p1", UserID: "u"})
	var members proto.EventRoomMembersData
	readEvent(t, conn, proto.EventRoomMembers, &members)
	if len(members.Members) != 1 || members.Members[0].UserID != "u" {
		t.Fatalf("unexpected members: %+v", members)
	}
}

func TestWebSocketDisconnectCleansRooms(t *testing.T) {
	env := startTestServer(t)
	conn := env.dial(t)

	send(t, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "a", UserID: "u"})
	send(t, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: "b", UserID: "u"})
	waitMembers(t, env.hub, "a", 1)
	waitMembers(t, env.hub, "b", 1)

	if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitMembers(t, env.hub, "a", 0)
	waitMembers(t, env.hub, "b", 0)

	activity, err := env.hub.RoomActivity(context.Background())
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(activity) != 0 {
		t.Fatalf("expected no active rooms, got %v", activity)
	}
}
