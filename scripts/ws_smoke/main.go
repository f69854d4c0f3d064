package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/geodrop-server/internal/proto"
)

// ws_smoke joins two clients to one post room and checks that a message from one reaches the other.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	room := flag.String("room", "smoke-post", "post id to chat under")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alice, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer alice.Close(websocket.StatusNormalClosure, "bye")

	bob, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer bob.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, alice, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: *room, UserID: "alice"}); err != nil {
		return err
	}
	if err := await(ctx, alice, proto.EventRoomMembers); err != nil {
		return err
	}
	if err := send(ctx, bob, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: *room, UserID: "bob"}); err != nil {
		return err
	}
	if err := await(ctx, alice, proto.EventUserJoined); err != nil {
		return err
	}

	msg := proto.MessageData{
		RoomID:    *room,
		UserID:    "bob",
		Text:      *text,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := send(ctx, bob, proto.InboundTypeSendMessage, msg); err != nil {
		return err
	}
	if err := await(ctx, alice, proto.EventReceiveMessage); err != nil {
		return err
	}

	if err := bob.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		return fmt.Errorf("close bob: %w", err)
	}
	if err := await(ctx, alice, proto.EventUserLeft); err != nil {
		return err
	}

	fmt.Println("smoke test passed")
	return nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// await prints frames until the wanted event arrives.
func await(ctx context.Context, conn *websocket.Conn, event string) error {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return fmt.Errorf("waiting for %s: %w", event, err)
		}
		fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
		if f.Event == event {
			return nil
		}
	}
}
