package core

import "time"

// Presence turns connection lifecycle events into registry changes and the notifications they cause.
type Presence struct {
	reg *Registry
}

// NewPresence builds a presence manager over reg.
func NewPresence(reg *Registry) *Presence {
	return &Presence{reg: reg}
}

// Join records the membership and announces it.
// Everyone in the room gets the new member list; everyone but the joiner gets user_joined.
func (p *Presence) Join(connID, roomID, userID string, at time.Time) []Notification {
	p.reg.Join(roomID, Member{UserID: userID, ConnID: connID, JoinedAt: at})

	notes := []Notification{p.membersNotification(roomID)}
	if others := p.reg.recipients(roomID, connID); len(others) > 0 {
		notes = append(notes, Notification{
			Targets: others,
			Event:   &Event{Kind: EventUserJoined, Room: roomID, User: userID},
		})
	}
	return notes
}

// Leave removes connID from roomID and tells the remaining members.
// userID is the identity sent with the leave intent; the stored record wins when present.
func (p *Presence) Leave(connID, roomID, userID string) []Notification {
	m, removed := p.reg.Leave(roomID, connID)
	if !removed {
		return nil
	}
	if m.UserID != "" {
		userID = m.UserID
	}
	return p.departureNotifications(roomID, userID)
}

// Disconnect removes connID from every room it joined and announces each departure.
func (p *Presence) Disconnect(connID string) []Notification {
	departures := p.reg.LeaveAll(connID)
	notes := make([]Notification, 0, 2*len(departures))
	for _, d := range departures {
		notes = append(notes, p.departureNotifications(d.RoomID, d.UserID)...)
	}
	return notes
}

func (p *Presence) departureNotifications(roomID, userID string) []Notification {
	remaining := p.reg.recipients(roomID, "")
	if len(remaining) == 0 {
		return nil
	}
	return []Notification{
		{
			Targets: remaining,
			Event:   &Event{Kind: EventRoomMembers, Room: roomID, Members: p.reg.MembersOf(roomID)},
		},
		{
			Targets: remaining,
			Event:   &Event{Kind: EventUserLeft, Room: roomID, User: userID},
		},
	}
}

func (p *Presence) membersNotification(roomID string) Notification {
	return Notification{
		Targets: p.reg.recipients(roomID, ""),
		Event:   &Event{Kind: EventRoomMembers, Room: roomID, Members: p.reg.MembersOf(roomID)},
	}
}
