// Package store persists each actor's published identity: the DID document
// and the fragment naming its signing key.
package store

import (
	"context"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
)

// Store is the persisted identity record per actor role. A record exists iff
// the actor's document has been published; the record is written exactly once
// and read thereafter.
type Store interface {
	// Load returns the persisted identity, not_found when none exists, or
	// storage_error when the persisted artifacts are corrupt.
	Load(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error)

	// Save durably persists the identity. Must complete before identity
	// creation reports success.
	Save(ctx context.Context, role id.ActorRole, identity domain.ActorIdentity) error

	// Exists reports whether a persisted record is present, without parsing it.
	Exists(ctx context.Context, role id.ActorRole) (bool, error)
}
