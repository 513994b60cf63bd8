package domain

import (
	"time"

	id "haulpass/pkg/domain"
)

// CredentialType is the type stamped on every credential this issuer signs.
const CredentialType = "DriverIdentityCredential"

// Subject is the party a credential makes claims about.
type Subject struct {
	ID     id.DID
	Claims map[string]any
}

// Credential is the claim set an issuer asserts about a subject. It is
// constructed per issuance request and never mutated after signing.
type Credential struct {
	Issuer  id.DID
	Subject Subject
	Type    string
}

// Presentation bundles credential tokens under a holder with a bounded
// validity window. The signed form is the presentation token.
type Presentation struct {
	Holder           id.DID
	CredentialTokens []string
	ExpiresAt        time.Time
}

// PresentationTTL is the fixed validity window for presentations.
const PresentationTTL = 10 * time.Minute
