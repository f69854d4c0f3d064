package core

import "sort"

// room is the membership set of a single chat room, keyed by connection id.
type room struct {
	id      string
	members map[string]Member
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		members: make(map[string]Member),
	}
}

// add inserts or replaces the member. Returns true if the connection was not present before.
func (r *room) add(m Member) bool {
	_, existed := r.members[m.ConnID]
	r.members[m.ConnID] = m
	return !existed
}

// remove deletes the member owned by connID. Returns the removed record.
func (r *room) remove(connID string) (Member, bool) {
	m, ok := r.members[connID]
	if !ok {
		return Member{}, false
	}
	delete(r.members, connID)
	return m, true
}

func (r *room) empty() bool {
	return len(r.members) == 0
}

// snapshot copies the members ordered by join time, then connection id.
func (r *room) snapshot() []Member {
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ConnID < out[j].ConnID
	})
	return out
}

// connIDs lists member connections, skipping the excluded one.
func (r *room) connIDs(exclude string) []string {
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		if id == exclude {
			continue
		}
		out = append(out, id)
	}
	return out
}
