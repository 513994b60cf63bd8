// Package ledger abstracts the distributed ledger that stores published DID
// documents and disburses test funds. The rest of the system only reads and
// writes documents through this interface; ledger internals are out of scope.
package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
)

// GasBudget is the fixed operation budget paid per document publication.
const GasBudget uint64 = 50_000_000

// Ledger is the on-chain collaborator for identity publication and lookup.
type Ledger interface {
	// Publish writes an unpublished document to the ledger, which assigns
	// its DID. The returned document is the published form.
	Publish(ctx context.Context, doc domain.Document, gasBudget uint64) (domain.Document, error)

	// Resolve returns the published document for a DID.
	Resolve(ctx context.Context, did id.DID) (domain.Document, error)

	// Balance reports the funds held by a signing address.
	Balance(ctx context.Context, address string) (uint64, error)

	// RequestFunds asks the faucet to fund a signing address.
	RequestFunds(ctx context.Context, address string) error
}

// AddressFromPublicKey derives the ledger signing address for a key. The
// address funds gas for publications made under that key.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[:20])
}
