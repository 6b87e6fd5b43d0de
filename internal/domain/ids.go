// Package domain contains entities without logic, just meta-data
package domain

type (
	// RoomKey is the short hex identifier of a room.
	RoomKey string

	// Credential is the opaque token a room owner holds.
	Credential string

	// SessionID identifies one live connection.
	SessionID string
)
