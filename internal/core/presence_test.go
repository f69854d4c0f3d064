package core

import (
	"reflect"
	"testing"
	"time"
)

func TestPresenceJoinNotifiesRoom(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(reg)
	now := time.Now()

	notes := p.Join("c1", "R", "u1", now)
	if len(notes) != 1 {
		t.Fatalf("first joiner should only get the member list, got %d notifications", len(notes))
	}
	if notes[0].Event.Kind != EventRoomMembers || !reflect.DeepEqual(notes[0].Targets, []string{"c1"}) {
		t.Fatalf("unexpected notification: %+v", notes[0])
	}

	notes = p.Join("c2", "R", "u2", now.Add(time.Millisecond))
	if len(notes) != 2 {
		t.Fatalf("expected members + user_joined, got %d", len(notes))
	}

	members := notes[0]
	if members.Event.Kind != EventRoomMembers {
		t.Fatalf("expected room members first, got %v", members.Event.Kind)
	}
	if got := sortedTargets(members); !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Fatalf("member list should reach everyone, got %v", got)
	}
	if len(members.Event.Members) != 2 || members.Event.Members[0].UserID != "u1" {
		t.Fatalf("unexpected member list: %+v", members.Event.Members)
	}

	joined := notes[1]
	if joined.Event.Kind != EventUserJoined || joined.Event.User != "u2" {
		t.Fatalf("unexpected joined event: %+v", joined.Event)
	}
	if !reflect.DeepEqual(joined.Targets, []string{"c1"}) {
		t.Fatalf("user_joined must exclude the joiner, got %v", joined.Targets)
	}
}

func TestPresenceLeaveNotifiesRemaining(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(reg)
	p.Join("c1", "R", "u1", time.Now())
	p.Join("c2", "R", "u2", time.Now())

	notes := p.Leave("c2", "R", "u2")
	if len(notes) != 2 {
		t.Fatalf("expected members + user_left, got %d", len(notes))
	}
	for _, n := range notes {
		if !reflect.DeepEqual(n.Targets, []string{"c1"}) {
			t.Fatalf("leave notifications must go to remaining members only, got %v", n.Targets)
		}
	}
	if notes[1].Event.Kind != EventUserLeft || notes[1].Event.User != "u2" {
		t.Fatalf("unexpected left event: %+v", notes[1].Event)
	}
	if ids := connIDs(notes[0].Event.Members); !reflect.DeepEqual(ids, []string{"c1"}) {
		t.Fatalf("unexpected member list after leave: %v", ids)
	}
}

func TestPresenceLeaveNeverJoinedIsSilent(t *testing.T) {
	p := NewPresence(NewRegistry())

	if notes := p.Leave("c1", "R", "u1"); len(notes) != 0 {
		t.Fatalf("expected no notifications, got %+v", notes)
	}
}

func TestPresenceDisconnectCleansEveryRoom(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(reg)
	p.Join("c1", "A", "u1", time.Now())
	p.Join("c1", "B", "u1", time.Now())
	p.Join("c2", "A", "u2", time.Now())
	p.Join("c3", "B", "u3", time.Now())

	notes := p.Disconnect("c1")
	if len(notes) != 4 {
		t.Fatalf("expected two notifications per room, got %d", len(notes))
	}

	left := map[string][]string{}
	for _, n := range notes {
		if n.Event.Kind == EventUserLeft {
			if n.Event.User != "u1" {
				t.Fatalf("user_left should carry u1, got %q", n.Event.User)
			}
			left[n.Event.Room] = n.Targets
		}
	}
	want := map[string][]string{"A": {"c2"}, "B": {"c3"}}
	if !reflect.DeepEqual(left, want) {
		t.Fatalf("unexpected user_left fan-out: %v", left)
	}

	if rooms := reg.RoomsOf("c1"); len(rooms) != 0 {
		t.Fatalf("c1 still a member of %v", rooms)
	}

	if again := p.Disconnect("c1"); len(again) != 0 {
		t.Fatalf("second disconnect should be a no-op, got %+v", again)
	}
}

func TestPresenceLastMemberLeavesQuietly(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(reg)
	p.Join("c1", "R", "u1", time.Now())

	if notes := p.Disconnect("c1"); len(notes) != 0 {
		t.Fatalf("nobody is left to notify, got %+v", notes)
	}
}
