package app

import (
	"github.com/dkeye/Relay/internal/domain"
)

// The REST surface consults the same registries as the socket events, so its
// operations take the same lock.

// CreateRoomWithCredential mints a room owned by the supplied credential. The
// room starts empty; it is deleted the first time membership drains to zero.
func (c *Coordinator) CreateRoomWithCredential(cred domain.Credential) (domain.RoomKey, error) {
	if cred == "" {
		return "", domain.ErrCredentialEmpty
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.creds.Resolve(cred); ok {
		return "", domain.ErrDuplicateCredential
	}
	key, err := c.newKey()
	if err != nil {
		return "", err
	}
	c.rooms.Create(key, cred)
	if err := c.creds.Register(cred, key); err != nil {
		return "", err
	}
	return key, nil
}

// ResolveCredential reports the room a credential owns. A credential whose
// room has since been deleted resolves to nothing; callers cannot tell the
// two cases apart.
func (c *Coordinator) ResolveCredential(cred domain.Credential) (domain.RoomKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.creds.Resolve(cred)
	if !ok || !c.rooms.Has(key) {
		return "", false
	}
	return key, true
}

// RoomCount is the number of currently live rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Count()
}

// RoomMembers returns the membership snapshot, or false for unknown rooms.
func (c *Coordinator) RoomMembers(key domain.RoomKey) ([]domain.MembershipEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.rooms.Has(key) {
		return nil, false
	}
	return c.directory.Snapshot(key), true
}
