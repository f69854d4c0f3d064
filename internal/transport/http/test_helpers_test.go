package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/config"
	"github.com/vovakirdan/geodrop-server/internal/core"
	"github.com/vovakirdan/geodrop-server/internal/media"
	"github.com/vovakirdan/geodrop-server/internal/proto"
	"github.com/vovakirdan/geodrop-server/internal/service/posts"
	"github.com/vovakirdan/geodrop-server/internal/store"
	"github.com/vovakirdan/geodrop-server/internal/store/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *httptest.Server
	hub    *core.Hub
	posts  *posts.Service
	cfg    *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.UploadDir = t.TempDir()
	cfg.MaxUploadBytes = 1 << 20
	cfg.MetricsEnabled = true
	return &cfg
}

// startTestServer runs a hub and a router backed by an in-memory post store.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig(t)
	logger := zerolog.Nop()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	images, err := media.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}
	svc := posts.NewService(st, images, &logger)

	env := startWithService(t, svc, cfg)
	env.posts = svc
	return env
}

func startWithService(t *testing.T, svc PostService, cfg *config.Config) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	ts := httptest.NewServer(NewRouter(hub, svc, cfg, &logger))
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, hub: hub, cfg: cfg}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type rawEvent struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// readEvent reads frames until one with the wanted event name arrives.
func readEvent(t *testing.T, conn *websocket.Conn, name string, out any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		var ev rawEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			t.Fatalf("waiting for %s: %v", name, err)
		}
		if ev.Event != name {
			continue
		}
		if out != nil {
			if err := json.Unmarshal(ev.Data, out); err != nil {
				t.Fatalf("decode %s: %v", name, err)
			}
		}
		return
	}
}

// waitMembers polls the hub until roomID has n members.
func waitMembers(t *testing.T, hub *core.Hub, roomID string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		members, err := hub.Members(context.Background(), roomID)
		if err != nil {
			t.Fatalf("members: %v", err)
		}
		if len(members) == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d members", roomID, n)
}

// fakePosts is a post service whose lookups can be made to fail.
type fakePosts struct {
	list   []*store.Post
	getErr error
}

func (f *fakePosts) Create(context.Context, posts.CreateInput) (*store.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePosts) Get(_ context.Context, id string) (*store.Post, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, p := range f.list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, store.ErrPostNotFound
}

func (f *fakePosts) List(context.Context) ([]*store.Post, error) {
	return f.list, nil
}

func (f *fakePosts) Love(context.Context, string) (*store.Post, error) {
	return nil, errors.New("not implemented")
}
