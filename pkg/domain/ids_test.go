package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDID(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		assert.True(t, DID("").IsZero())
		assert.False(t, DID("did:example:1").IsZero())
	})

	t.Run("key URL joins DID and fragment", func(t *testing.T) {
		did := DID("did:example:abc")
		assert.Equal(t, "did:example:abc#key-1", did.KeyURL("key-1"))
	})

	t.Run("key URL tolerates a leading hash on the fragment", func(t *testing.T) {
		did := DID("did:example:abc")
		assert.Equal(t, "did:example:abc#key-1", did.KeyURL("#key-1"))
	})
}

func TestSplitKeyURL(t *testing.T) {
	tests := []struct {
		name     string
		keyURL   string
		did      DID
		fragment string
	}{
		{"full key URL", "did:example:abc#key-1", DID("did:example:abc"), "key-1"},
		{"no fragment", "did:example:abc", DID("did:example:abc"), ""},
		{"relative reference", "#key-1", DID(""), "key-1"},
		{"empty", "", DID(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			did, fragment := SplitKeyURL(tt.keyURL)
			assert.Equal(t, tt.did, did)
			assert.Equal(t, tt.fragment, fragment)
		})
	}
}

func TestActorRole(t *testing.T) {
	assert.True(t, RoleDriver.IsValid())
	assert.True(t, RoleIssuer.IsValid())
	assert.False(t, ActorRole("inspector").IsValid())
	assert.False(t, ActorRole("").IsValid())
	assert.Equal(t, "driver", RoleDriver.String())
}
