package command

import "github.com/google/uuid"

// IDGenerator produces identifiers for new ledger rows. Injected so tests can
// use deterministic IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator backed by random UUIDs.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
