package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/metrics"
)

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub owns the room registry and serializes every connection event through a single goroutine.
type Hub struct {
	log *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	inbox      chan envelope
	queries    chan func()
	done       chan struct{}

	clients map[string]*Client
	state   *state
}

// NewHub creates a hub. Call Run to start processing.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan envelope, 64),
		queries:    make(chan func()),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		state:      newState(),
	}
}

// Run processes connection events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case env := <-h.inbox:
			h.handle(env)
		case q := <-h.queries:
			q()
		}
	}
}

// RegisterClient attaches a connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient disconnects a connection. Calling it more than once is harmless.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Members returns a snapshot of the members of roomID.
func (h *Hub) Members(ctx context.Context, roomID string) ([]Member, error) {
	var out []Member
	err := h.query(ctx, func() {
		out = h.state.reg.MembersOf(roomID)
	})
	return out, err
}

// RoomActivity returns the member count of every non-empty room.
func (h *Hub) RoomActivity(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	err := h.query(ctx, func() {
		out = h.state.reg.Rooms()
	})
	return out, err
}

// State reports the lifecycle state of connID.
func (h *Hub) State(ctx context.Context, connID string) (ConnState, error) {
	st := StateDisconnected
	err := h.query(ctx, func() {
		if _, ok := h.clients[connID]; !ok {
			return
		}
		if len(h.state.reg.RoomsOf(connID)) == 0 {
			st = StateConnected
			return
		}
		st = StateInRoom
	})
	return st, err
}

// query runs fn on the hub goroutine and waits for it.
func (h *Hub) query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case h.queries <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) addClient(c *Client) {
	if c == nil {
		return
	}
	if old, exists := h.clients[c.ID]; exists {
		h.log.Warn().Str("conn_id", c.ID).Msg("duplicate connection id, dropping previous client")
		h.removeClient(old)
	}

	h.clients[c.ID] = c
	metrics.Connections.Inc()
	h.log.Debug().Str("conn_id", c.ID).Int("clients", len(h.clients)).Msg("client registered")

	go h.forward(c)
}

func (h *Hub) removeClient(c *Client) {
	if c == nil {
		return
	}
	cur, ok := h.clients[c.ID]
	if !ok || cur != c {
		return
	}
	delete(h.clients, c.ID)
	close(c.done)
	metrics.Connections.Dec()

	notes := h.state.disconnect(c.ID)
	h.deliver(notes)
	metrics.ActiveRooms.Set(float64(len(h.state.reg.rooms)))
	close(c.Events)

	h.log.Debug().Str("conn_id", c.ID).Int("clients", len(h.clients)).Msg("client disconnected")
}

// forward moves commands from one client into the hub inbox, preserving their order.
func (h *Hub) forward(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			if cmd == nil {
				continue
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-h.done:
				return
			}
		case <-c.done:
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handle(env envelope) {
	// Commands still in flight after a disconnect must not resurrect the connection.
	if cur, ok := h.clients[env.client.ID]; !ok || cur != env.client {
		return
	}
	if err := env.cmd.Validate(); err != nil {
		h.log.Debug().Err(err).Str("conn_id", env.client.ID).Msg("dropping invalid command")
		return
	}
	fn, ok := dispatch[env.cmd.Kind]
	if !ok {
		return
	}

	metrics.CommandsHandled.WithLabelValues(env.cmd.Kind.String()).Inc()
	h.deliver(fn(h.state, env.client.ID, env.cmd))
	metrics.ActiveRooms.Set(float64(len(h.state.reg.rooms)))

	h.log.Debug().
		Str("conn_id", env.client.ID).
		Str("room_id", env.cmd.Room).
		Str("user_id", env.cmd.User).
		Stringer("command", env.cmd.Kind).
		Msg("command handled")
}

// deliver queues events without blocking; a full client buffer drops the event.
func (h *Hub) deliver(notes []Notification) {
	for _, n := range notes {
		kind := n.Event.Kind.String()
		for _, id := range n.Targets {
			c, ok := h.clients[id]
			if !ok {
				continue
			}
			select {
			case c.Events <- n.Event:
				metrics.EventsDelivered.WithLabelValues(kind).Inc()
			default:
				metrics.EventsDropped.WithLabelValues(kind).Inc()
				h.log.Debug().Str("conn_id", id).Str("event", kind).Msg("client buffer full, event dropped")
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
		close(c.Events)
		metrics.Connections.Dec()
	}
	h.log.Info().Msg("hub stopped")
}
