package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/domain"
)

// CredentialRegistry maps owner credentials to room keys. Entries are never
// removed; a stale entry pointing at a deleted room resolves to nothing.
type CredentialRegistry struct {
	byCred map[domain.Credential]domain.RoomKey
}

func NewCredentialRegistry() *CredentialRegistry {
	return &CredentialRegistry{byCred: make(map[domain.Credential]domain.RoomKey)}
}

func (r *CredentialRegistry) Register(cred domain.Credential, key domain.RoomKey) error {
	if _, ok := r.byCred[cred]; ok {
		return domain.ErrDuplicateCredential
	}
	r.byCred[cred] = key
	log.Info().Str("module", "app.credentials").Str("room", string(key)).Msg("credential registered")
	return nil
}

func (r *CredentialRegistry) Resolve(cred domain.Credential) (domain.RoomKey, bool) {
	key, ok := r.byCred[cred]
	return key, ok
}
