package core

// ConnState is the lifecycle state of a connection as seen by the hub.
type ConnState int

const (
	// StateConnected means registered without room memberships.
	StateConnected ConnState = iota
	// StateInRoom means registered with at least one membership.
	StateInRoom
	// StateDisconnected is terminal.
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	default:
		return "disconnected"
	}
}

// DefaultClientBuffer is the event and command buffer used when none is configured.
const DefaultClientBuffer = 32

// Client is one physical connection as seen by the core layer.
// The transport writes to Commands and reads from Events; the hub closes Events on disconnect.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
	done     chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has disconnected the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
