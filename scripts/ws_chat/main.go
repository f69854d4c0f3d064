package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/geodrop-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "user id")
	room := flag.String("room", "", "post id whose room to join")
	flag.Parse()

	if *room == "" {
		return errors.New("-room is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	c := &chat{conn: conn, room: *room, user: *user}
	if err := c.send(ctx, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: *room, UserID: *user}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. /like <message-id> likes a message. Ctrl+C to exit.")

	go func() {
		defer cancel()
		c.readLoop(ctx)
	}()

	c.writeLoop(ctx)

	_ = c.send(context.Background(), proto.InboundTypeLeaveRoom, proto.RoomData{RoomID: *room, UserID: *user})
	return nil
}

type chat struct {
	conn *websocket.Conn
	room string
	user string
}

func (c *chat) send(ctx context.Context, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, c.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func (c *chat) readLoop(ctx context.Context) {
	for {
		var f frame
		if err := wsjson.Read(ctx, c.conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch f.Event {
		case proto.EventReceiveMessage:
			var evt proto.EventMessageData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s (%s): %s\n", evt.RoomID, evt.UserID, evt.ID, evt.Text)
		case proto.EventUserJoined, proto.EventUserLeft, proto.EventUserTyping, proto.EventUserStoppedTyping:
			var evt proto.EventUserData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("[room %s] %s %s\n", evt.RoomID, evt.UserID, f.Event)
		case proto.EventRoomMembers:
			var evt proto.EventRoomMembersData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal members: %v", err)
				continue
			}
			fmt.Printf("[room %s] %d here\n", evt.RoomID, len(evt.Members))
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
		}
	}
}

func (c *chat) writeLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var err error
			if id, found := strings.CutPrefix(text, "/like "); found {
				err = c.send(ctx, proto.InboundTypeLikeMessage, proto.LikeData{
					RoomID:    c.room,
					MessageID: strings.TrimSpace(id),
					UserID:    c.user,
				})
			} else {
				err = c.send(ctx, proto.InboundTypeSendMessage, proto.MessageData{
					RoomID:    c.room,
					UserID:    c.user,
					Text:      text,
					Timestamp: time.Now().UnixMilli(),
				})
			}
			if err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
