// Package domain defines the identifier types shared across services.
// Keeping them typed (rather than bare strings) prevents accidental mixing
// of DIDs, fragments, and actor roles at call sites.
package domain

import "strings"

// DID is a decentralized identifier, resolvable to a DID document.
type DID string

func (d DID) String() string { return string(d) }

// IsZero reports whether the DID is unset.
func (d DID) IsZero() bool { return d == "" }

// KeyURL joins the DID with a verification method fragment, producing the
// `did#fragment` form used as a signing key identifier in token headers.
func (d DID) KeyURL(fragment string) string {
	return string(d) + "#" + strings.TrimPrefix(fragment, "#")
}

// SplitKeyURL breaks a `did#fragment` key identifier into its parts.
// The second return is empty when no fragment is present.
func SplitKeyURL(keyURL string) (DID, string) {
	did, fragment, _ := strings.Cut(keyURL, "#")
	return DID(did), fragment
}

// ActorRole names one of the fixed actors in the demonstration workflow.
// Each role owns its own persisted identity and vault file.
type ActorRole string

const (
	RoleDriver ActorRole = "driver"
	RoleIssuer ActorRole = "issuer"
)

func (r ActorRole) String() string { return string(r) }

// IsValid reports whether the role is one of the known actors.
func (r ActorRole) IsValid() bool {
	return r == RoleDriver || r == RoleIssuer
}
