package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	id "haulpass/pkg/domain"
)

// VerificationMethodType is the only key type this system publishes.
const VerificationMethodType = "Ed25519VerificationKey2018"

// VerificationMethod is one public key entry within a DID document.
// The ID is the full `did#fragment` key URL.
type VerificationMethod struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyHex string `json:"publicKeyHex"`
}

// PublicKey decodes the hex-encoded Ed25519 public key.
func (m VerificationMethod) PublicKey() (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(m.PublicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode publicKeyHex: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("publicKeyHex is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// Document is a published DID document: the actor's identifier plus its
// public verification methods. Documents are immutable once published within
// this system's scope.
type Document struct {
	Context            []string             `json:"@context"`
	ID                 id.DID               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
}

// DocumentContext is the JSON-LD context every published document carries.
var DocumentContext = []string{"https://www.w3.org/ns/did/v1"}

// NewUnpublishedDocument builds a document holding a single verification
// method for the given key. The ledger assigns the DID on publication, so the
// document ID and controller stay empty here.
func NewUnpublishedDocument(fragment string, pub ed25519.PublicKey) Document {
	return Document{
		Context: DocumentContext,
		VerificationMethod: []VerificationMethod{{
			ID:           "#" + fragment,
			Type:         VerificationMethodType,
			PublicKeyHex: hex.EncodeToString(pub),
		}},
	}
}

// WithID stamps the ledger-assigned DID onto the document and rewrites the
// verification method IDs and controllers to their absolute form.
func (d Document) WithID(did id.DID) Document {
	d.ID = did
	methods := make([]VerificationMethod, len(d.VerificationMethod))
	for i, m := range d.VerificationMethod {
		_, fragment := id.SplitKeyURL(m.ID)
		m.ID = did.KeyURL(fragment)
		m.Controller = did.String()
		methods[i] = m
	}
	d.VerificationMethod = methods
	return d
}

// Method finds the verification method named by the fragment.
func (d Document) Method(fragment string) (VerificationMethod, bool) {
	want := d.ID.KeyURL(fragment)
	for _, m := range d.VerificationMethod {
		if m.ID == want || m.ID == "#"+fragment {
			return m, true
		}
	}
	return VerificationMethod{}, false
}

// ActorIdentity pairs a published DID document with the fragment naming the
// key that signs on the actor's behalf. Immutable once published.
type ActorIdentity struct {
	Document Document
	Fragment string
}

// DID returns the actor's decentralized identifier.
func (a ActorIdentity) DID() id.DID { return a.Document.ID }

// KeyURL returns the actor's signing key identifier in `did#fragment` form.
func (a ActorIdentity) KeyURL() string { return a.Document.ID.KeyURL(a.Fragment) }
