package app

import (
	"github.com/dkeye/Relay/internal/domain"
)

// MembershipDirectory keeps the per-room member list in the shape clients
// receive: ordered by join time, one entry per session. It mirrors the room
// registry's member sets; the Coordinator keeps the two in sync on every
// mutation.
type MembershipDirectory struct {
	byRoom map[domain.RoomKey][]domain.MembershipEntry
}

func NewMembershipDirectory() *MembershipDirectory {
	return &MembershipDirectory{byRoom: make(map[domain.RoomKey][]domain.MembershipEntry)}
}

// Upsert records the session for the room unless it is already listed.
// De-duplication is by session id; two sessions sharing an address are both
// kept.
func (d *MembershipDirectory) Upsert(key domain.RoomKey, sid domain.SessionID, addr string) {
	for _, e := range d.byRoom[key] {
		if e.SessionID == sid {
			return
		}
	}
	d.byRoom[key] = append(d.byRoom[key], domain.MembershipEntry{SessionID: sid, Addr: addr})
}

func (d *MembershipDirectory) Remove(key domain.RoomKey, sid domain.SessionID) {
	entries := d.byRoom[key]
	for i, e := range entries {
		if e.SessionID == sid {
			d.byRoom[key] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Drop forgets the whole room. Called when the room itself is deleted.
func (d *MembershipDirectory) Drop(key domain.RoomKey) {
	delete(d.byRoom, key)
}

// Snapshot returns a copy of the current list; empty for unknown rooms.
func (d *MembershipDirectory) Snapshot(key domain.RoomKey) []domain.MembershipEntry {
	entries := d.byRoom[key]
	out := make([]domain.MembershipEntry, len(entries))
	copy(out, entries)
	return out
}
