package domain

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrDuplicateCredential = errors.New("credential already registered")
	ErrCredentialEmpty     = errors.New("credential empty")
	ErrKeySpaceExhausted   = errors.New("room key space exhausted")
)
