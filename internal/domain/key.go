package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RoomKeyLen is the length of a hex-encoded room key.
const RoomKeyLen = 8

// NewRoomKey returns a short random lowercase hex key. Uniqueness against
// live rooms is the caller's job.
func NewRoomKey() (RoomKey, error) {
	b := make([]byte, RoomKeyLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate room key: %w", err)
	}
	return RoomKey(hex.EncodeToString(b)), nil
}

// NewCredential mints a credential for rooms created over the socket, where
// the client never supplied one.
func NewCredential() (Credential, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	return Credential("key_" + hex.EncodeToString(b)), nil
}
