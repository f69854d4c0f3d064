package core

import "sort"

// Registry maps room ids to their connected members.
// It is not safe for concurrent use; the Hub owns it and mutates it from a single goroutine.
type Registry struct {
	rooms map[string]*room
	// byConn indexes the rooms each connection belongs to so LeaveAll does not scan every room.
	byConn map[string]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds member to roomID. Joining twice with the same connection replaces the record.
func (r *Registry) Join(roomID string, member Member) {
	rm, ok := r.rooms[roomID]
	if !ok {
		rm = newRoom(roomID)
		r.rooms[roomID] = rm
	}
	rm.add(member)

	set, ok := r.byConn[member.ConnID]
	if !ok {
		set = make(map[string]struct{})
		r.byConn[member.ConnID] = set
	}
	set[roomID] = struct{}{}
}

// Leave removes connID from roomID. Returns the removed record, or false if it was not there.
func (r *Registry) Leave(roomID, connID string) (Member, bool) {
	rm, ok := r.rooms[roomID]
	if !ok {
		return Member{}, false
	}
	m, removed := rm.remove(connID)
	if !removed {
		return Member{}, false
	}
	if rm.empty() {
		delete(r.rooms, roomID)
	}

	if set, ok := r.byConn[connID]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.byConn, connID)
		}
	}
	return m, true
}

// LeaveAll removes connID from every room and reports where it was.
// The result is sorted by room id; it is empty when the connection had no rooms.
func (r *Registry) LeaveAll(connID string) []Departure {
	set, ok := r.byConn[connID]
	if !ok {
		return []Departure{}
	}

	roomIDs := make([]string, 0, len(set))
	for id := range set {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)

	out := make([]Departure, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		if m, removed := r.Leave(roomID, connID); removed {
			out = append(out, Departure{RoomID: roomID, UserID: m.UserID})
		}
	}
	return out
}

// MembersOf returns a copy of the room's members. Absent rooms yield an empty slice.
func (r *Registry) MembersOf(roomID string) []Member {
	rm, ok := r.rooms[roomID]
	if !ok {
		return []Member{}
	}
	return rm.snapshot()
}

// Count returns the number of members in roomID.
func (r *Registry) Count(roomID string) int {
	rm, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	return len(rm.members)
}

// Has reports whether connID is a member of roomID.
func (r *Registry) Has(roomID, connID string) bool {
	_, ok := r.byConn[connID][roomID]
	return ok
}

// RoomsOf lists the rooms connID currently belongs to, sorted.
func (r *Registry) RoomsOf(connID string) []string {
	set := r.byConn[connID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Rooms reports the member count of every non-empty room.
func (r *Registry) Rooms() map[string]int {
	out := make(map[string]int, len(r.rooms))
	for id, rm := range r.rooms {
		out[id] = len(rm.members)
	}
	return out
}

// recipients lists connections in roomID other than exclude.
func (r *Registry) recipients(roomID, exclude string) []string {
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return rm.connIDs(exclude)
}
