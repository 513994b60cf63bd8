// Package wallet stores each actor's current credential and presentation
// tokens. The wallet keeps exactly one artifact of each kind per role;
// issuing or presenting again overwrites the previous token.
package wallet

import (
	"context"

	id "haulpass/pkg/domain"
)

// Store persists signed credential and presentation tokens per actor role.
type Store interface {
	SaveCredential(ctx context.Context, role id.ActorRole, token string) error
	LoadCredential(ctx context.Context, role id.ActorRole) (string, error)
	SavePresentation(ctx context.Context, role id.ActorRole, token string) error
	LoadPresentation(ctx context.Context, role id.ActorRole) (string, error)
}
